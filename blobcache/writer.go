package blobcache

import (
	"io"
)

// saver is what a writer reports to as a new item is copied into the cache.
type saver interface {
	save(w *writer)      // new item has been successfully copied
	reserve(int64) error // gets more space on each call to Write
	discard(w *writer)   // new item had an error while being copied
}

// writer copies a new item into the cache.
type writer struct {
	parent saver
	key    string
	w      io.WriteCloser
	size   int64 // space reserved so far
	err    error // first error from Write
}

func (w *writer) Close() error {
	err := w.w.Close()
	if w.err != nil {
		err = w.err
	}
	if err != nil {
		w.parent.discard(w)
		return err
	}
	w.parent.save(w)
	return nil
}

func (w *writer) Write(p []byte) (int, error) {
	if w.err != nil {
		return 0, w.err
	}
	// reserve before writing so we never have more than maxSize in cache
	err := w.parent.reserve(int64(len(p)))
	if err != nil {
		w.err = err
		return 0, err
	}
	w.size += int64(len(p))
	n, err := w.w.Write(p)
	if err != nil {
		w.err = err
	}
	return n, err
}
