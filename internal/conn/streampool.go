package conn

import (
	"context"

	"github.com/onoffswitch/gocassa/internal/protocol"
	"github.com/onoffswitch/gocassa/internal/xerrors"
)

// streamPool hands out stream ids in [0, size) for multiplexing
// requests over one connection. protocol.EventStreamID (-1) is never
// issued; it is reserved for server-pushed EVENT frames.
//
// A buffered channel pre-loaded with every id doubles as both the free
// list and its own mutex: Acquire blocks (or respects ctx) when every
// id is checked out, Release hands one back.
type streamPool struct {
	free chan int16
	size int
}

func newStreamPool(size int) *streamPool {
	if size <= 0 || size > protocol.MaxStreams {
		size = protocol.MaxStreams
	}
	p := &streamPool{free: make(chan int16, size), size: size}
	for i := 0; i < size; i++ {
		p.free <- int16(i)
	}
	return p
}

// acquire blocks until a stream id is available or ctx is done.
func (p *streamPool) acquire(ctx context.Context) (int16, error) {
	select {
	case id := <-p.free:
		return id, nil
	case <-ctx.Done():
		return 0, ctx.Err()
	}
}

func (p *streamPool) release(id int16) {
	select {
	case p.free <- id:
	default:
		// Pool is already full: releasing an id twice would be a driver
		// bug, but we don't panic on it since a poisoned connection's
		// shutdown path may release concurrently with acquire failures.
	}
}

// tryAcquire reports a QueueFullError immediately instead of
// waiting, for callers that would rather fail fast than queue.
func (p *streamPool) tryAcquire() (int16, error) {
	select {
	case id := <-p.free:
		return id, nil
	default:
		return 0, &xerrors.QueueFullError{MaxStreams: p.size}
	}
}
