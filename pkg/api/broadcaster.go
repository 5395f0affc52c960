package api

import (
	"sync"

	"github.com/zigbee-shepherd/shepherd/pkg/shepherd"
)

// Broadcaster fans a single callback-shaped event stream out to many SSE
// subscribers. pkg/shepherd's Sink.Ind is a single func(Event); this
// turns it into a pub/sub so the discovery handler can serve an
// arbitrary number of concurrent clients off one Shepherd instance.
type Broadcaster struct {
	mu   sync.Mutex
	subs map[chan shepherd.Event]struct{}
}

// NewBroadcaster constructs an empty Broadcaster.
func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[chan shepherd.Event]struct{})}
}

// Publish is the func(Event) value wired into Options.Sink.Ind. It never
// blocks: a subscriber whose channel is full drops the event rather than
// stall the dispatch loop.
func (b *Broadcaster) Publish(e shepherd.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for ch := range b.subs {
		select {
		case ch <- e:
		default:
		}
	}
}

// Subscribe registers a new buffered channel and returns it.
func (b *Broadcaster) Subscribe() chan shepherd.Event {
	ch := make(chan shepherd.Event, 16)
	b.mu.Lock()
	b.subs[ch] = struct{}{}
	b.mu.Unlock()
	return ch
}

// Unsubscribe removes and closes a channel previously returned by Subscribe.
func (b *Broadcaster) Unsubscribe(ch chan shepherd.Event) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if _, ok := b.subs[ch]; ok {
		delete(b.subs, ch)
		close(ch)
	}
}
