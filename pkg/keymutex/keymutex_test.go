package keymutex

import (
	"sync"
	"testing"
)

func TestSameKeySerializes(t *testing.T) {
	km := New()

	const workers = 50
	counter := 0

	var wg sync.WaitGroup
	for range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			km.Lock("driver-1")
			defer km.Unlock("driver-1")
			counter++
		}()
	}
	wg.Wait()

	if counter != workers {
		t.Fatalf("expected %d increments, got %d", workers, counter)
	}
}

func TestDifferentKeysDoNotBlock(t *testing.T) {
	km := New()

	km.Lock("a")
	done := make(chan struct{})
	go func() {
		km.Lock("b")
		km.Unlock("b")
		close(done)
	}()

	<-done // would deadlock if "b" waited on "a"
	km.Unlock("a")
}

func TestEntryFreedAfterLastUnlock(t *testing.T) {
	km := New()

	km.Lock("x")
	km.Unlock("x")

	km.mu.Lock()
	defer km.mu.Unlock()
	if len(km.locks) != 0 {
		t.Fatalf("expected lock table to be empty, got %d entries", len(km.locks))
	}
}
