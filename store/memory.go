package store

import (
	"io"
	"sort"
	"strings"
	"sync"
)

// Memory implements a simple in-memory version of a store. It is intended
// mainly for testing, and for running the server without any letter storage.
type Memory struct {
	m     sync.RWMutex
	store map[string]*buf
}

var (
	// ensure Memory satisfies the Store interface
	_ Store = &Memory{}
)

// NewMemory returns a new, empty memory store.
func NewMemory() *Memory {
	return &Memory{store: make(map[string]*buf)}
}

// List returns a channel giving every key in the store, in sorted order.
// The keys are collected up front, so the store may be changed while the
// channel is drained.
func (ms *Memory) List() <-chan string {
	ms.m.RLock()
	keys := make([]string, 0, len(ms.store))
	for k := range ms.store {
		keys = append(keys, k)
	}
	ms.m.RUnlock()
	sort.Strings(keys)

	c := make(chan string)
	go func() {
		for _, k := range keys {
			c <- k
		}
		close(c)
	}()
	return c
}

// ListPrefix returns all the key entries which begin with the given prefix,
// sorted.
func (ms *Memory) ListPrefix(prefix string) ([]string, error) {
	var result []string
	ms.m.RLock()
	for k := range ms.store {
		if strings.HasPrefix(k, prefix) {
			result = append(result, k)
		}
	}
	ms.m.RUnlock()
	sort.Strings(result)
	return result, nil
}

// Open returns a ReadAtCloser and the size of the given item. An item that is
// still being written cannot be opened.
func (ms *Memory) Open(key string) (ReadAtCloser, int64, error) {
	ms.m.RLock()
	v, ok := ms.store[key]
	ms.m.RUnlock()
	if !ok {
		return nil, 0, ErrNotExist
	}
	// wait for any writer to finish
	v.m.RLock()
	b := v.b
	v.m.RUnlock()
	return &memReader{b: b}, int64(len(b)), nil
}

// Set saves data under key, replacing anything already there. The slice is
// copied.
func (ms *Memory) Set(key string, data []byte) {
	b := &buf{b: append([]byte(nil), data...)}
	ms.m.Lock()
	ms.store[key] = b
	ms.m.Unlock()
}

type buf struct {
	m sync.RWMutex // write lock held while the item is being created
	b []byte
}

type memReader struct {
	b []byte
}

func (r *memReader) Close() error { return nil }

func (r *memReader) ReadAt(p []byte, off int64) (int, error) {
	if off >= int64(len(r.b)) {
		return 0, io.EOF
	}
	n := copy(p, r.b[off:])
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

type memWriter struct {
	parent *buf
	once   sync.Once
}

func (w *memWriter) Write(p []byte) (int, error) {
	w.parent.b = append(w.parent.b, p...)
	return len(p), nil
}

func (w *memWriter) Close() error {
	w.once.Do(w.parent.m.Unlock)
	return nil
}

// Create makes a new entry in the store, and returns a writer to save data
// into it. Readers of the key block until the writer is closed.
func (ms *Memory) Create(key string) (io.WriteCloser, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	r := &buf{}
	r.m.Lock()
	ms.m.Lock()
	defer ms.m.Unlock()
	if _, ok := ms.store[key]; ok {
		r.m.Unlock()
		return nil, ErrKeyExists
	}
	ms.store[key] = r
	return &memWriter{parent: r}, nil
}

// Delete the given key from the store. It is not an error if the item does
// not exist in the store.
func (ms *Memory) Delete(key string) error {
	ms.m.Lock()
	delete(ms.store, key)
	ms.m.Unlock()
	return nil
}
