package util

import (
	"context"
	"sync/atomic"
	"testing"
	"time"
)

func TestGateMaximum(t *testing.T) {
	// create 10 goroutines trying to enter a gate that can only hold 5
	g := NewGate(5)
	ctx, cancel := context.WithCancel(context.Background())
	var nenter, nerr int64
	done := make(chan struct{}, 10)
	for i := 0; i < 10; i++ {
		go func() {
			err := g.Enter(ctx)
			if err == nil {
				atomic.AddInt64(&nenter, 1)
			} else {
				atomic.AddInt64(&nerr, 1)
			}
			done <- struct{}{}
		}()
	}

	waitFor(t, func() bool { return atomic.LoadInt64(&nenter) == 5 })
	if g.Inside() != 5 {
		t.Errorf("Received %d inside, expected %d", g.Inside(), 5)
	}

	// call leave a few times and see what happens
	g.Leave()
	g.Leave()
	waitFor(t, func() bool { return atomic.LoadInt64(&nenter) == 7 })

	// the three still waiting give up
	cancel()
	for i := 0; i < 10; i++ {
		<-done
	}
	if n := atomic.LoadInt64(&nenter); n != 7 {
		t.Errorf("Received %d enters, expected %d", n, 7)
	}
	if n := atomic.LoadInt64(&nerr); n != 3 {
		t.Errorf("Received %d errors, expected %d", n, 3)
	}
	if g.Inside() != 5 {
		t.Errorf("Received %d inside, expected %d", g.Inside(), 5)
	}
}

func TestGateZero(t *testing.T) {
	g := NewGate(0)
	if err := g.Enter(context.Background()); err != nil {
		t.Fatalf("Received %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Millisecond)
	defer cancel()
	if err := g.Enter(ctx); err != context.DeadlineExceeded {
		t.Errorf("Received %v, expected %v", err, context.DeadlineExceeded)
	}
	g.Leave()
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("timed out waiting")
		}
		time.Sleep(time.Millisecond)
	}
}
