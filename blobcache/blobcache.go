// Package blobcache keeps merged designs so a popular word need not be
// rebuilt on every request. It is backed by a store, so it can be entirely
// in memory or disk-backed.
//
// While the cached contents are kept in the store, the usage list is kept
// only in memory. On startup the items already in the store are enumerated
// by Scan and added to the list in an undetermined order.
package blobcache

import (
	"container/list"
	"io"
	"log"
	"sync"

	raven "github.com/getsentry/raven-go"
	"github.com/pkg/errors"

	"github.com/ndlib/monogram/store"
)

// Cache is the interface the server uses to save merged designs. A miss is
// not an error: Get returns a nil reader.
type Cache interface {
	Contains(key string) bool
	Get(key string) (store.ReadAtCloser, int64, error)
	Put(key string) (io.WriteCloser, error)
}

var (
	// ErrCacheFull is returned by a writer whose item would not fit in the
	// cache even after evicting everything else.
	ErrCacheFull = errors.New("Cache is full and no more items can be removed")

	// ErrPutPending is returned by Put if another writer for the key is open.
	ErrPutPending = errors.New("Put already in progress for key")
)

// T is a cache with a maximum total size, evicting the least recently used
// items to make space for new ones.
type T struct {
	// this is the place where cached items are stored
	s store.Store

	maxSize int64 // The maximum amount of space we may use

	m sync.Mutex // protects everything below

	// total size of the items in the cache and of any writes in progress
	size int64

	// front of list is MRU, tail is LRU.
	lru   *list.List
	index map[string]*list.Element

	// keys with an open writer
	pending map[string]struct{}
}

type entry struct {
	key  string
	size int64
}

// NewLRU creates a cache holding at most maxSize bytes in s. The store may
// already have items in it; call Scan, inline or in a goroutine, to add
// them to the cache.
func NewLRU(s store.Store, maxSize int64) *T {
	return &T{
		s:       s,
		maxSize: maxSize,
		lru:     list.New(),
		index:   make(map[string]*list.Element),
		pending: make(map[string]struct{}),
	}
}

// Scan adds the items in the backing store to the cache. Items that do not
// fit are deleted from the store. It blocks until every item has been seen.
func (t *T) Scan() {
	var n int
	for key := range t.s.List() {
		if t.Contains(key) {
			continue
		}
		rc, size, err := t.s.Open(key)
		if err != nil {
			log.Println("blobcache scan:", key, err)
			continue
		}
		rc.Close()
		err = t.reserve(size)
		if err != nil {
			// this item is too big for the cache.
			t.deleteFromStore(key)
			continue
		}
		if t.link(entry{key: key, size: size}) {
			n++
		}
	}
	log.Printf("blobcache: scan found %d items, %d bytes", n, t.Size())
}

// Contains returns true if the given item is in the cache. It does not
// update the LRU status, and does not guarantee the item will be in the
// cache when Get() is called.
func (t *T) Contains(key string) bool {
	t.m.Lock()
	_, ok := t.index[key]
	t.m.Unlock()
	return ok
}

// Get returns a reader for the given item and moves it to the front of the
// usage list. If the item is not in the cache the reader is nil and there
// is no error.
func (t *T) Get(key string) (store.ReadAtCloser, int64, error) {
	t.m.Lock()
	e, ok := t.index[key]
	if ok {
		t.lru.MoveToFront(e)
	}
	t.m.Unlock()
	if !ok {
		return nil, 0, nil
	}
	rac, size, err := t.s.Open(key)
	if err != nil {
		// the item is unreadable, so forget it
		t.Delete(key)
		return nil, 0, err
	}
	return rac, size, nil
}

// Put returns a WriteCloser which saves what is written to it under key.
// Items are evicted as content is written. The item is not added to the
// cache until the writer is closed without error.
//
// Only one writer for a key may be open at a time; other Puts return
// ErrPutPending. An item already in the cache is replaced.
func (t *T) Put(key string) (io.WriteCloser, error) {
	t.m.Lock()
	if _, ok := t.pending[key]; ok {
		t.m.Unlock()
		return nil, ErrPutPending
	}
	t.pending[key] = struct{}{}
	t.m.Unlock()

	t.Delete(key)
	w, err := t.s.Create(key)
	if err != nil {
		t.m.Lock()
		delete(t.pending, key)
		t.m.Unlock()
		return nil, err
	}
	return &writer{parent: t, key: key, w: w}, nil
}

// Delete removes an item from the cache. It is not an error if the item is
// not present.
func (t *T) Delete(key string) {
	t.m.Lock()
	e, ok := t.index[key]
	if ok {
		t.unlink(e)
	}
	t.m.Unlock()
	if ok {
		t.deleteFromStore(key)
	}
}

// Size returns the number of bytes the cache is using.
func (t *T) Size() int64 {
	t.m.Lock()
	defer t.m.Unlock()
	return t.size
}

// Len returns the number of items in the cache.
func (t *T) Len() int {
	t.m.Lock()
	defer t.m.Unlock()
	return t.lru.Len()
}

func (t *T) deleteFromStore(key string) {
	err := t.s.Delete(key)
	if err != nil {
		log.Println("blobcache delete:", key, err)
		raven.CaptureError(err, map[string]string{"key": key})
	}
}

// link adds the given entry to the front of the usage list. Its space must
// already be reserved. If the key is already present the reservation is
// given back and false is returned.
func (t *T) link(ent entry) bool {
	t.m.Lock()
	defer t.m.Unlock()
	if _, ok := t.index[ent.key]; ok {
		t.size -= ent.size
		return false
	}
	t.index[ent.key] = t.lru.PushFront(ent)
	return true
}

// unlink removes e from the usage list and gives back its space. Must hold
// t.m.
func (t *T) unlink(e *list.Element) {
	ent := t.lru.Remove(e).(entry)
	delete(t.index, ent.key)
	t.size -= ent.size
}

// reserve space for the passed in size, evicting items if necessary to stay
// under maxSize. Size can be negative to cancel a previous reservation.
// Nothing is reserved if there is an error.
func (t *T) reserve(size int64) error {
	var evicted []string
	t.m.Lock()
	t.size += size
	for t.size > t.maxSize {
		e := t.lru.Back()
		if e == nil {
			t.size -= size
			t.m.Unlock()
			return ErrCacheFull
		}
		evicted = append(evicted, e.Value.(entry).key)
		t.unlink(e)
	}
	t.m.Unlock()
	for _, key := range evicted {
		t.deleteFromStore(key)
	}
	return nil
}

func (t *T) save(w *writer) {
	t.m.Lock()
	delete(t.pending, w.key)
	t.m.Unlock()
	t.link(entry{key: w.key, size: w.size})
}

func (t *T) discard(w *writer) {
	t.m.Lock()
	delete(t.pending, w.key)
	t.size -= w.size
	t.m.Unlock()
	t.s.Delete(w.key)
}
