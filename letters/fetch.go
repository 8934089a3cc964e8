package letters

import (
	"context"
	"sync"

	"github.com/golang/groupcache/singleflight"

	"github.com/ndlib/monogram/store"
	"github.com/ndlib/monogram/util"
)

// DefaultMaxConcurrent is the number of letters loaded at once when
// Fetcher.MaxConcurrent is not set.
const DefaultMaxConcurrent = 6

// A Fetcher loads letter designs from a store. Letters are loaded in
// parallel, but the result is always in the order of the word. The same
// Fetcher may be used by many goroutines at once; MaxConcurrent bounds the
// loads running across all of them.
//
// Do not change the fields after the first call to Fetch.
type Fetcher struct {
	Store         store.ROStore
	MaxConcurrent int

	once  sync.Once
	gate  util.Gate
	group singleflight.Group // one load per key at a time
}

// NewFetcher returns a Fetcher reading from s, loading at most n letters at
// a time.
func NewFetcher(s store.ROStore, n int) *Fetcher {
	return &Fetcher{Store: s, MaxConcurrent: n}
}

// Fetch loads the design of every letter in word. The word should come from
// Normalize. The returned slice has one buffer per letter, result[i] being
// the design for word[i]; repeated letters may share a buffer, so the
// buffers must not be modified.
//
// If any letter cannot be loaded the other loads are abandoned and a
// *MissingLetterError is returned for the first letter, in word order, which
// was found missing. A letter whose load was abandoned is not reported, so
// with several missing letters a later one may be named.
// If ctx ends first, its error is returned.
func (f *Fetcher) Fetch(ctx context.Context, word []byte) ([][]byte, error) {
	if len(word) == 0 {
		return nil, ErrEmptyWord
	}
	f.once.Do(func() {
		n := f.MaxConcurrent
		if n <= 0 {
			n = DefaultMaxConcurrent
		}
		f.gate = util.NewGate(n)
	})

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	result := make([][]byte, len(word))
	errs := make([]error, len(word))
	var wg sync.WaitGroup
	for i, letter := range word {
		wg.Add(1)
		go func(i int, letter byte) {
			defer wg.Done()
			data, err := f.fetchOne(ctx, len(word), letter)
			if err != nil {
				errs[i] = err
				cancel()
				return
			}
			result[i] = data
		}(i, letter)
	}
	wg.Wait()

	// a missing letter is the cause of any cancellations we made
	for _, err := range errs {
		if _, ok := err.(*MissingLetterError); ok {
			return nil, err
		}
	}
	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}
	return result, nil
}

func (f *Fetcher) fetchOne(ctx context.Context, wordLen int, letter byte) ([]byte, error) {
	if err := f.gate.Enter(ctx); err != nil {
		return nil, err
	}
	defer f.gate.Leave()
	// the store calls cannot be interrupted, so check before starting one
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	key := Key(wordLen, letter)
	v, err := f.group.Do(key, func() (interface{}, error) {
		return store.ReadAll(f.Store, key)
	})
	if err != nil {
		return nil, &MissingLetterError{Letter: letter, Key: key, Err: err}
	}
	return v.([]byte), nil
}
