package interview

import "sync"

// keyedMutex serializes mutation per interview id so concurrent answer
// submissions cannot interleave message rows.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[uint64]*entry
}

type entry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[uint64]*entry)}
}

func (k *keyedMutex) lock(id uint64) (unlock func()) {
	k.mu.Lock()
	e, ok := k.locks[id]
	if !ok {
		e = &entry{}
		k.locks[id] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, id)
		}
		k.mu.Unlock()
	}
}
