package store

// The S3 store needs to remember which keys exist, and how large they are,
// to avoid a HEAD request for every letter of every word.

import (
	"sync"
	"time"

	"github.com/facebookgo/clock"
)

// head is the structure stored in a sizecache.
type head struct {
	expire time.Time
	size   int64 // size of item. 0 = ?, -1 = doesn't exist. see constant below
}

// A sizecache is used to remember the size or non-size of a remote object.
// The size is either a non-negative int64, or -1 if the item doesn't exist.
// Entries expire after some amount of time. Items not existing expire
// quicker than items with a size, so a letter uploaded after a miss is seen
// again reasonably soon.
type sizecache struct {
	clock clock.Clock

	m         sync.Mutex      // protects everything below
	cache     map[string]head // cache for item sizes
	sweeptime time.Time       // next time to age everything
}

const (
	// constants for head.size. Indicates that the given key is deleted.
	sizeDeleted int64 = -1 // any negative number will work

	defaultMissTTL = 5 * time.Minute
	defaultHitTTL  = 24 * time.Hour
	sweepInterval  = time.Hour
)

func newSizeCache(c clock.Clock) *sizecache {
	if c == nil {
		c = clock.New()
	}
	return &sizecache{
		clock: c,
		cache: make(map[string]head),
	}
}

// Get returns the size associated with key. If key is not in the cache
// it will call the fill function to figure out what the size is.
// If fill returns ErrNotExist the miss is remembered. Any other error from
// fill is returned and nothing is cached.
func (s *sizecache) Get(key string, fill func(key string) (int64, error)) (int64, error) {
	now := s.clock.Now()
	s.m.Lock()
	if now.After(s.sweeptime) {
		s.age(now)
	}
	entry, ok := s.cache[key]
	s.m.Unlock()
	if ok && now.Before(entry.expire) {
		if entry.size < 0 {
			// we have previously determined this key does not exist
			return 0, ErrNotExist
		}
		return entry.size, nil
	}
	if fill == nil {
		return 0, nil
	}
	// fill without holding the lock; a racing Set for the same key may be
	// overwritten, which only costs another HEAD later.
	size, err := fill(key)
	switch {
	case err == ErrNotExist:
		s.Set(key, sizeDeleted)
	case err == nil:
		s.Set(key, size)
	}
	return size, err
}

// Set caches a size to use for the given key.
// Use sizeDeleted to mark the key as missing.
func (s *sizecache) Set(key string, size int64) {
	ttl := defaultHitTTL
	if size < 0 {
		ttl = defaultMissTTL
	}
	s.m.Lock()
	s.cache[key] = head{expire: s.clock.Now().Add(ttl), size: size}
	s.m.Unlock()
}

// Forget removes any information about key.
func (s *sizecache) Forget(key string) {
	s.m.Lock()
	delete(s.cache, key)
	s.m.Unlock()
}

// age removes the expired entries. The caller must hold m.
func (s *sizecache) age(now time.Time) {
	s.sweeptime = now.Add(sweepInterval)
	for k, v := range s.cache {
		if now.After(v.expire) {
			delete(s.cache, k) // remove aged entries
		}
	}
}
