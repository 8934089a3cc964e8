package main

import (
	"os"

	mmap "github.com/edsrzf/mmap-go"
)

// mappedFile is a design file mapped read only into memory.
type mappedFile struct {
	f    *os.File
	data mmap.MMap // nil for an empty file
}

// openMapped maps the file at path. Close must be called when the data is
// no longer needed.
func openMapped(path string) (*mappedFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	mf := &mappedFile{f: f}
	// an empty file cannot be mapped
	if info.Size() > 0 {
		mf.data, err = mmap.Map(f, mmap.RDONLY, 0)
		if err != nil {
			f.Close()
			return nil, err
		}
	}
	return mf, nil
}

func (mf *mappedFile) Bytes() []byte {
	return mf.data
}

func (mf *mappedFile) Close() error {
	var err error
	if mf.data != nil {
		err = mf.data.Unmap()
	}
	err2 := mf.f.Close()
	if err == nil {
		err = err2
	}
	return err
}

// mapAll maps every file in paths. On error nothing is left mapped.
func mapAll(paths []string) ([]*mappedFile, error) {
	var files []*mappedFile
	for _, p := range paths {
		mf, err := openMapped(p)
		if err != nil {
			closeAll(files)
			return nil, err
		}
		files = append(files, mf)
	}
	return files, nil
}

func closeAll(files []*mappedFile) {
	for _, mf := range files {
		mf.Close()
	}
}
