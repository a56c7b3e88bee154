package services

import "sync"

// GroupLocker serializes mutations per group within this process.
// Every write path that recalculates balances takes the group's lock
// first, so two mutations of the same group never interleave while
// unrelated groups proceed in parallel.
type GroupLocker struct {
	locks sync.Map // groupID -> *sync.Mutex
}

func NewGroupLocker() *GroupLocker {
	return &GroupLocker{}
}

// Lock acquires the group's mutex and returns the unlock func.
func (l *GroupLocker) Lock(groupID int64) func() {
	v, _ := l.locks.LoadOrStore(groupID, &sync.Mutex{})
	mu := v.(*sync.Mutex)
	mu.Lock()
	return mu.Unlock
}
