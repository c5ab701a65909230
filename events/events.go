// Package events delivers engine notifications to subscribers.
//
// Every subscriber gets its own unbounded FIFO queue drained by a delivery
// goroutine into the subscription channel, so publishing never blocks and a
// slow subscriber never delays the engine or other subscribers.
package events

import (
	"sync"
	"time"
)

// Type names an event.
type Type string

// Event types.
const (
	PlaybackStarted  Type = "playback-started"
	PlaybackStopped  Type = "playback-stopped"
	PlaybackPaused   Type = "playback-paused"
	TrackCreated     Type = "track-created"
	TrackRemoved     Type = "track-removed"
	EffectAdded      Type = "effect-added"
	EffectRemoved    Type = "effect-removed"
	ClipAdded        Type = "clip-added"
	RecordingStarted Type = "recording-started"
	RecordingStopped Type = "recording-stopped"
	RenderCompleted  Type = "render-completed"
)

// Event is one notification. Fields that do not apply to a type are empty.
type Event struct {
	Type Type
	Time time.Time

	TrackID  string
	EffectID string
	ClipID   string

	// Position is the transport position in seconds, for transport events.
	Position float64
	// Duration is the rendered length in seconds, for render-completed.
	Duration float64
}

// Bus fans events out to subscribers.
type Bus struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
	now    func() time.Time
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: map[*Subscription]struct{}{}, now: time.Now}
}

// Subscribe registers a subscriber. buffer sizes the delivery channel; the
// queue behind it is unbounded. Subscribing to a closed bus returns a
// subscription whose channel is already closed.
func (b *Bus) Subscribe(buffer int) *Subscription {
	s := &Subscription{
		bus:  b,
		ch:   make(chan Event, max(buffer, 0)),
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	s.C = s.ch

	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		s.stop()
		close(s.ch)

		return s
	}

	b.subs[s] = struct{}{}
	go s.deliver()

	return s
}

// Publish enqueues e for every subscriber. It never blocks. A zero Time is
// filled in with the current time.
func (b *Bus) Publish(e Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	if e.Time.IsZero() {
		e.Time = b.now()
	}

	for s := range b.subs {
		s.push(e)
	}
}

// Len returns the number of active subscribers.
func (b *Bus) Len() int {
	b.mu.Lock()
	defer b.mu.Unlock()

	return len(b.subs)
}

// Close unsubscribes everyone. Pending events are dropped.
func (b *Bus) Close() {
	b.mu.Lock()
	subs := b.subs
	b.subs = map[*Subscription]struct{}{}
	b.closed = true
	b.mu.Unlock()

	for s := range subs {
		s.stop()
	}
}

// Subscription is one subscriber's view of the bus. C is closed after
// Unsubscribe or Bus.Close.
type Subscription struct {
	C <-chan Event

	bus  *Bus
	ch   chan Event
	wake chan struct{}
	done chan struct{}
	once sync.Once

	mu    sync.Mutex
	queue []Event
}

// Unsubscribe stops delivery and closes C. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.bus.mu.Lock()
	delete(s.bus.subs, s)
	s.bus.mu.Unlock()

	s.stop()
}

func (s *Subscription) stop() {
	s.once.Do(func() { close(s.done) })
}

func (s *Subscription) push(e Event) {
	s.mu.Lock()
	s.queue = append(s.queue, e)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Subscription) pop() (Event, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if len(s.queue) == 0 {
		return Event{}, false
	}

	e := s.queue[0]
	s.queue[0] = Event{}
	s.queue = s.queue[1:]

	return e, true
}

func (s *Subscription) deliver() {
	defer close(s.ch)

	for {
		e, ok := s.pop()
		if !ok {
			select {
			case <-s.wake:
				continue
			case <-s.done:
				return
			}
		}

		select {
		case s.ch <- e:
		case <-s.done:
			return
		}
	}
}
