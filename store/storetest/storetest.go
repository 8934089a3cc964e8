// Package storetest provides functions for testing anything implementing the
// store.Store interface.
package storetest

import (
	"bytes"
	"fmt"
	"sync"
	"testing"

	"github.com/ndlib/monogram/store"
)

// Conformance checks the behavior every store is expected to share: keys
// are slash separated paths, missing items give store.ErrNotExist, keys
// cannot be created twice, and listings see everything written.
// The store should be empty when passed in.
func Conformance(t *testing.T, s store.Store) {
	t.Helper()
	var keys = []string{
		"letters1/A1.dst",
		"letters1/B1.dst",
		"letters2/A2.dst",
		"letters1112/A.dst",
	}
	for _, key := range keys {
		if err := store.WriteAll(s, key, []byte("design "+key)); err != nil {
			t.Fatalf("WriteAll(%s): received %v", key, err)
		}
	}

	for _, key := range keys {
		data, err := store.ReadAll(s, key)
		if err != nil {
			t.Errorf("ReadAll(%s): received %v", key, err)
			continue
		}
		if string(data) != "design "+key {
			t.Errorf("ReadAll(%s): received %q", key, data)
		}
	}

	if _, _, err := s.Open("letters1/Q1.dst"); err != store.ErrNotExist {
		t.Errorf("Open missing: received %v, expected %v", err, store.ErrNotExist)
	}

	if w, err := s.Create(keys[0]); err != store.ErrKeyExists {
		t.Errorf("Create existing: received %v, expected %v", err, store.ErrKeyExists)
		if w != nil {
			w.Close()
		}
	}

	result, err := s.ListPrefix("letters1/")
	if err != nil {
		t.Fatalf("ListPrefix: received %v", err)
	}
	if fmt.Sprint(result) != "[letters1/A1.dst letters1/B1.dst]" {
		t.Errorf("ListPrefix: received %v", result)
	}

	var n int
	for range s.List() {
		n++
	}
	if n != len(keys) {
		t.Errorf("List: received %d keys, expected %d", n, len(keys))
	}

	if err := s.Delete(keys[1]); err != nil {
		t.Errorf("Delete: received %v", err)
	}
	if _, _, err := s.Open(keys[1]); err != store.ErrNotExist {
		t.Errorf("Open deleted: received %v, expected %v", err, store.ErrNotExist)
	}
	if err := s.Delete(keys[1]); err != nil {
		t.Errorf("Delete twice: received %v", err)
	}
	// can be created again after a delete
	if err := store.WriteAll(s, keys[1], []byte("again")); err != nil {
		t.Errorf("WriteAll after delete: received %v", err)
	}
}

// Concurrent writes n items from several goroutines while reading them back,
// and checks every item reads back what was written. It is a good test to
// run with the -race flag.
func Concurrent(t *testing.T, s store.Store, n int) {
	t.Helper()
	var wg sync.WaitGroup
	errs := make(chan error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			key := fmt.Sprintf("concurrent/%04d.dst", i)
			want := bytes.Repeat([]byte{byte(i)}, 512+3*i)
			if err := store.WriteAll(s, key, want); err != nil {
				errs <- fmt.Errorf("%s: %v", key, err)
				return
			}
			got, err := store.ReadAll(s, key)
			if err != nil {
				errs <- fmt.Errorf("%s: %v", key, err)
				return
			}
			if !bytes.Equal(got, want) {
				errs <- fmt.Errorf("%s: content mismatch", key)
			}
		}(i)
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
}
