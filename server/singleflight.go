package server

import (
	"sync"

	"github.com/pkg/errors"
)

// errFlightFailed is given to waiting callers if F panics.
var errFlightFailed = errors.New("Building the word failed")

// singleflight makes sure only one goroutine builds a given word at a time.
// Requests for a word already being built wait for that result.
type singleflight struct {
	F        func(string) (interface{}, error) // function to fetch data
	mu       sync.Mutex                        // controls everything below
	inflight map[string]*fetchrequest          // requests in progress
}

type fetchrequest struct {
	wg     sync.WaitGroup
	result interface{}
	err    error
	shared bool // true if more than one caller received this result
}

// Get returns the value of F(key). The second return value is true if the
// result was shared with another caller.
func (s *singleflight) Get(key string) (result interface{}, shared bool, err error) {
	// the first goroutine asking for a given key will do the work. Others will wait until
	// the data is ready.
	if s.F == nil {
		return nil, false, nil
	}
	s.mu.Lock()
	if r, ok := s.inflight[key]; ok {
		// item is already being worked on
		r.shared = true
		s.mu.Unlock()
		r.wg.Wait()
		return r.result, true, r.err
	}
	// set up a flight record and then call the function
	r := &fetchrequest{err: errFlightFailed}
	r.wg.Add(1)
	if s.inflight == nil {
		s.inflight = make(map[string]*fetchrequest)
	}
	s.inflight[key] = r
	s.mu.Unlock()
	defer func() {
		// at end we signal and remove the inflight record
		s.mu.Lock()
		delete(s.inflight, key)
		shared = r.shared
		s.mu.Unlock()
		r.wg.Done()
	}()

	r.result, r.err = s.F(key)
	return r.result, false, r.err
}
