package telegram

import "sync"

// chatLocks serializes message rendering per chat. Updates for different
// chats run concurrently; two updates for the same chat must not
// interleave their read-edit-store sequences on the active message.
type chatLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newChatLocks() *chatLocks {
	return &chatLocks{locks: make(map[int64]*sync.Mutex)}
}

// lock acquires the chat's mutex and returns its unlock func.
func (c *chatLocks) lock(chatID int64) func() {
	c.mu.Lock()
	l, ok := c.locks[chatID]
	if !ok {
		l = &sync.Mutex{}
		c.locks[chatID] = l
	}
	c.mu.Unlock()

	l.Lock()
	return l.Unlock
}
