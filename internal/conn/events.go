package conn

import (
	"sync"

	"github.com/onoffswitch/gocassa/internal/message"
)

// eventRegistry fans out EVENT frames to subscribers, keyed by a
// caller-supplied subscription id so Unsubscribe is O(1) and never has
// to compare channel values.
type eventRegistry struct {
	mu        sync.RWMutex
	nextID    int
	observers map[int]chan<- message.Event
}

func newEventRegistry() *eventRegistry {
	return &eventRegistry{observers: make(map[int]chan<- message.Event)}
}

func (r *eventRegistry) subscribe(sink chan<- message.Event) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	id := r.nextID
	r.observers[id] = sink
	return id
}

func (r *eventRegistry) unsubscribe(id int) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.observers, id)
}

// dispatch fans ev out to every current subscriber without blocking on
// a slow or full one: a subscriber that can't keep up misses events
// rather than stalling the read loop for every other caller.
func (r *eventRegistry) dispatch(ev message.Event) {
	r.mu.RLock()
	sinks := make([]chan<- message.Event, 0, len(r.observers))
	for _, sink := range r.observers {
		sinks = append(sinks, sink)
	}
	r.mu.RUnlock()

	for _, sink := range sinks {
		select {
		case sink <- ev:
		default:
		}
	}
}
