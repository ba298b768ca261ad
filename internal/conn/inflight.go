package conn

import (
	"sync"

	"github.com/onoffswitch/gocassa/internal/frame"
)

// pendingResponse is what the read loop delivers to a waiter: either a
// decoded frame or the error that ended the connection before a
// response for this stream arrived.
type pendingResponse struct {
	frame *frame.Frame
	err   error
}

// inflightTable maps an outstanding stream id to the channel its
// caller is blocked receiving from. Exactly one frame or error is ever
// sent to a given channel: complete (from the read loop) and drainAll
// (from Close or poison) both remove a waiter under the mutex before
// sending to it; this is what gives every request a single-delivery
// guarantee even when the connection is poisoned mid-flight.
type inflightTable struct {
	mu      sync.Mutex
	waiters map[int16]chan pendingResponse
}

func newInflightTable() *inflightTable {
	return &inflightTable{waiters: make(map[int16]chan pendingResponse)}
}

// register records a waiter for streamID. The caller must already own
// that stream id from the pool, so registering a duplicate is a driver
// bug, not a runtime condition to guard against.
func (t *inflightTable) register(streamID int16) chan pendingResponse {
	ch := make(chan pendingResponse, 1)
	t.mu.Lock()
	t.waiters[streamID] = ch
	t.mu.Unlock()
	return ch
}

// complete delivers resp to streamID's waiter, if one is still
// registered, and reports whether it found one. A late response after
// a client-side timeout finds none (the caller has already moved on);
// the caller of complete is responsible for reclaiming the stream id
// in that case, since a response finally did arrive for it.
func (t *inflightTable) complete(streamID int16, resp pendingResponse) (delivered bool) {
	t.mu.Lock()
	ch, ok := t.waiters[streamID]
	if ok {
		delete(t.waiters, streamID)
	}
	t.mu.Unlock()
	if ok {
		ch <- resp
	}
	return ok
}

// forget removes streamID's waiter without delivering anything, used
// when a request times out: the stream id stays checked out of the
// pool (the caller is responsible for that), but nothing should be
// sent to a channel nobody is reading from anymore.
func (t *inflightTable) forget(streamID int16) {
	t.mu.Lock()
	delete(t.waiters, streamID)
	t.mu.Unlock()
}

// drainAll delivers err to every still-registered waiter, used when
// the connection closes or a read error poisons it.
func (t *inflightTable) drainAll(err error) {
	t.mu.Lock()
	waiters := t.waiters
	t.waiters = make(map[int16]chan pendingResponse)
	t.mu.Unlock()
	for _, ch := range waiters {
		ch <- pendingResponse{err: err}
	}
}

// len reports the number of requests currently awaiting a response,
// used by Close to decide whether the grace period has drained.
func (t *inflightTable) len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.waiters)
}
