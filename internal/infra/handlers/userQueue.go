package handlers

import "sync"

// userQueue runs queued work one function at a time per key, in enqueue
// order. Work for distinct keys runs concurrently. Every session mutation for
// a user goes through this queue, so a location save can never race a
// dialogue turn.
type userQueue struct {
	mu   sync.Mutex
	work map[string][]func()
	busy map[string]bool
}

func newUserQueue() *userQueue {
	return &userQueue{
		work: make(map[string][]func()),
		busy: make(map[string]bool),
	}
}

// Enqueue appends fn to the key's queue and starts a drain goroutine unless
// one is already running for that key.
func (q *userQueue) Enqueue(key string, fn func()) {
	q.mu.Lock()
	q.work[key] = append(q.work[key], fn)
	if !q.busy[key] {
		q.busy[key] = true
		go q.drain(key)
	}
	q.mu.Unlock()
}

func (q *userQueue) drain(key string) {
	for {
		q.mu.Lock()
		if len(q.work[key]) == 0 {
			q.busy[key] = false
			delete(q.work, key)
			q.mu.Unlock()
			return
		}
		fn := q.work[key][0]
		q.work[key] = q.work[key][1:]
		q.mu.Unlock()

		fn()
	}
}
