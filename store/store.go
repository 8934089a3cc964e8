// Package store provides a simple, goroutine safe key-value interface used to
// hold embroidery designs. Values are streams instead of opaque byte arrays,
// so the same interface serves letter designs and cached merged designs.
//
// Keys are slash separated relative paths, e.g. "letters3/A3.dst". The
// FileSystem store maps them directly onto a directory tree, which is the
// layout letter sets are distributed in. The S3 store prefixes them with its
// bucket prefix. The Memory store is mainly useful for testing.
package store

import (
	"errors"
	"io"
	"path"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ReadAtCloser combines the io.ReaderAt and io.Closer interfaces.
type ReadAtCloser interface {
	io.ReaderAt
	io.Closer
}

// Store defines the basic stream based key-value store.
// Items are immutable once stored, but they may be deleted and then replaced
// with a new value.
type Store interface {
	ROStore
	Create(key string) (io.WriteCloser, error)
	Delete(key string) error
}

// ROStore is the read-only pieces of a Store. It allows one to list contents,
// and to retrieve data. Letter sets only need to be read, so that is all the
// letter fetcher asks for.
type ROStore interface {
	List() <-chan string
	ListPrefix(prefix string) ([]string, error)
	Open(key string) (ReadAtCloser, int64, error)
}

var (
	// ErrNotExist is returned by Open when there is no item with the key.
	ErrNotExist = errors.New("Key does not exist")

	// ErrKeyExists indicates an attempt to create a key which already exists
	ErrKeyExists = errors.New("Key already exists")

	// ErrKeyInvalidPath means the key is absolute, has empty segments, or
	// has "." or ".." segments.
	ErrKeyInvalidPath = errors.New("Key is not a clean relative path")

	// ErrKeyContainsNonUnicode means the key provided contains a Non Unicode Rune
	ErrKeyContainsNonUnicode = errors.New("Key contains Non-Unicode character")

	// ErrKeyContainsWhiteSpace  means the key provided contains WhiteSpace
	ErrKeyContainsWhiteSpace = errors.New("Key contains White Space")

	// ErrKeyContainsControlChar  means the key provided contains Control Characters
	ErrKeyContainsControlChar = errors.New("Key contains Control  Characters")
)

// ValidateKey checks that key is usable by every store.
func ValidateKey(key string) error {
	if !utf8.ValidString(key) {
		return ErrKeyContainsNonUnicode
	}
	if key == "" || strings.HasPrefix(key, "/") || path.Clean(key) != key ||
		key == "." || strings.HasPrefix(key, "../") || key == ".." {
		return ErrKeyInvalidPath
	}
	for _, r := range key {
		if unicode.IsSpace(r) {
			return ErrKeyContainsWhiteSpace
		}
		if unicode.IsControl(r) {
			return ErrKeyContainsControlChar
		}
	}
	return nil
}

// NewReader converts a ReaderAt into a io.Reader. It is here as a utility to
// help work with the ReadAtCloser returned by Open.
func NewReader(r io.ReaderAt) io.Reader {
	return &reader{r: r}
}

type reader struct {
	r   io.ReaderAt
	off int64
}

func (r *reader) Read(p []byte) (n int, err error) {
	n, err = r.r.ReadAt(p, r.off)
	r.off += int64(n)
	if err == io.EOF && n > 0 {
		// reading less than a full buffer is not an error for
		// an io.Reader
		err = nil
	}
	return
}

// ReadAll opens key and returns its entire contents.
func ReadAll(s ROStore, key string) ([]byte, error) {
	rac, size, err := s.Open(key)
	if err != nil {
		return nil, err
	}
	defer rac.Close()
	buf := make([]byte, size)
	n, err := rac.ReadAt(buf, 0)
	if err == io.EOF && int64(n) == size {
		err = nil
	}
	if err != nil {
		return nil, err
	}
	return buf[:n], nil
}

// WriteAll saves data under key.
func WriteAll(s Store, key string, data []byte) error {
	w, err := s.Create(key)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	if err != nil {
		w.Close()
		return err
	}
	return w.Close()
}
