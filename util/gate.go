// Package util holds small concurrency helpers.
package util

import (
	"context"
)

// A Gate limits concurrency. Every gate has a maximum number
// number of goroutines to allow through at a time. Goroutines enter the gate
// by calling Enter(), and signal that they are done by calling Leave()
type Gate chan struct{}

// NewGate returns a Gate which accepts at most n entries at a time. A gate
// for n <= 0 accepts one entry at a time.
func NewGate(n int) Gate {
	if n <= 0 {
		n = 1
	}
	return Gate(make(chan struct{}, n))
}

// Enter is called at the beginning of the section to be protected by the
// gate. It blocks the calling goroutine until there are less than n
// goroutines inside, or until ctx is done. If ctx is done first its error is
// returned and the goroutine has not entered; it must not call Leave.
// It is safe to call this from multiple goroutines.
func (g Gate) Enter(ctx context.Context) error {
	select {
	case g <- struct{}{}:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Leave marks a goroutine outside the critical section. It is important to
// balance each successful call to Enter with a call to Leave. Enter and Leave
// do not need to be called from the same goroutine, necessarily.
func (g Gate) Leave() {
	<-g
}

// Inside returns the number of goroutines currently inside the gate.
func (g Gate) Inside() int {
	return len(g)
}
