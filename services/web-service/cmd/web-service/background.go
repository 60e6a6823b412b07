package main

import (
	"sync"
	"time"
)

// background tracks goroutines main joins before exiting.
type background struct {
	wg sync.WaitGroup
}

func (b *background) Go(fn func()) {
	b.wg.Add(1)
	go func() {
		defer b.wg.Done()
		fn()
	}()
}

// Wait reports false when the goroutines are still running after d.
func (b *background) Wait(d time.Duration) bool {
	done := make(chan struct{})
	go func() {
		b.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return true
	case <-time.After(d):
		return false
	}
}
