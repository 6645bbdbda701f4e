package telegram

import (
	"sync"
	"testing"
)

func TestChatLocksSerializeSameChat(t *testing.T) {
	locks := newChatLocks()

	var wg sync.WaitGroup
	counter := 0
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := locks.lock(42)
			defer unlock()
			counter++
		}()
	}
	wg.Wait()

	if counter != 64 {
		t.Fatalf("expected 64 serialized increments, got %d", counter)
	}
}

func TestChatLocksIndependentChats(t *testing.T) {
	locks := newChatLocks()

	unlockA := locks.lock(1)
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlockB := locks.lock(2)
		unlockB()
		close(done)
	}()

	// Holding chat 1 must not block chat 2.
	<-done
}
