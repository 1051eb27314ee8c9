package jobs

import "sync"

// subscriberBuffer bounds each subscriber channel. Generation emits a
// handful of events per scene, so this only saturates for a consumer
// that stopped reading.
const subscriberBuffer = 256

// Broadcaster fans job events out to a dynamic set of subscribers.
// One writer (the job runner) publishes; any number of readers consume.
// Every subscriber channel is closed after exactly one terminal event.
type Broadcaster struct {
	mu     sync.Mutex
	subs   map[int]chan Event
	nextID int
	closed bool
	final  Event
}

func NewBroadcaster() *Broadcaster {
	return &Broadcaster{subs: make(map[int]chan Event)}
}

// Subscribe registers a new subscriber. If the broadcaster is already
// closed the returned channel carries the terminal event and is closed,
// so a late joiner still observes exactly one terminal event.
func (b *Broadcaster) Subscribe() (int, <-chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		ch := make(chan Event, 1)
		ch <- b.final
		close(ch)
		return -1, ch
	}

	b.nextID++
	ch := make(chan Event, subscriberBuffer)
	b.subs[b.nextID] = ch
	return b.nextID, ch
}

// Unsubscribe removes a subscriber. Safe for unknown ids and after close.
func (b *Broadcaster) Unsubscribe(id int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if ch, ok := b.subs[id]; ok {
		delete(b.subs, id)
		close(ch)
	}
}

// Publish delivers an event to every subscriber. A subscriber whose
// buffer is saturated loses the event rather than blocking the runner;
// ordering for delivered events is preserved per subscriber.
func (b *Broadcaster) Publish(ev Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	for _, ch := range b.subs {
		select {
		case ch <- ev:
		default:
		}
	}
}

// Close delivers the terminal event to every subscriber and closes all
// channels. A saturated subscriber has its oldest pending event dropped
// so the terminal event always lands. Idempotent.
func (b *Broadcaster) Close(final Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	b.final = final

	for id, ch := range b.subs {
	deliver:
		for {
			select {
			case ch <- final:
				break deliver
			default:
				// Buffer full, or a concurrently draining reader emptied
				// it between our send attempts. Evict one pending event
				// without blocking and retry; neither arm may block while
				// b.mu is held.
				select {
				case <-ch:
				default:
				}
			}
		}
		close(ch)
		delete(b.subs, id)
	}
}
