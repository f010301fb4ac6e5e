package client

import (
	"sync"

	"github.com/KMDPriyashan/tripzy/internal/client/models"
)

const subscriptionBuffer = 16

// Hub fans session-change events out to subscribers. Publish never blocks.
// Each subscriber holds up to subscriptionBuffer pending events; when full,
// the oldest pending event other than SignedOut is evicted. SignedOut events
// are never evicted.
type Hub struct {
	mu     sync.Mutex
	subs   map[*Subscription]struct{}
	closed bool
}

func NewHub() *Hub {
	return &Hub{subs: make(map[*Subscription]struct{})}
}

// Subscription is a registration on a Hub.
type Subscription struct {
	hub *Hub
	ch  chan models.AuthEvent

	mu    sync.Mutex
	queue []models.AuthEvent
	wake  chan struct{}

	done   chan struct{}
	exited chan struct{}
	once   sync.Once
}

// Subscribe registers a new subscriber. Subscribing to a closed hub returns
// a subscription whose channel is already closed.
func (h *Hub) Subscribe() *Subscription {
	s := &Subscription{
		hub:    h,
		ch:     make(chan models.AuthEvent),
		wake:   make(chan struct{}, 1),
		done:   make(chan struct{}),
		exited: make(chan struct{}),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		close(s.ch)
		close(s.exited)
		s.once.Do(func() {})
		return s
	}
	h.subs[s] = struct{}{}
	go s.run()
	return s
}

func (h *Hub) Publish(ev models.AuthEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for s := range h.subs {
		s.push(ev)
	}
}

// Len returns the number of live subscriptions.
func (h *Hub) Len() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.subs)
}

// Close releases every subscription and rejects new ones.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for s := range h.subs {
		s.stop()
		delete(h.subs, s)
	}
}

// Events is closed once the subscription is released.
func (s *Subscription) Events() <-chan models.AuthEvent {
	return s.ch
}

// Unsubscribe releases the subscription. It is safe to call more than once.
func (s *Subscription) Unsubscribe() {
	s.hub.mu.Lock()
	defer s.hub.mu.Unlock()
	delete(s.hub.subs, s)
	s.stop()
}

func (s *Subscription) stop() {
	s.once.Do(func() { close(s.done) })
	<-s.exited
}

func (s *Subscription) push(ev models.AuthEvent) {
	s.mu.Lock()
	if len(s.queue) >= subscriptionBuffer {
		for i, queued := range s.queue {
			if queued.Type != models.EventSignedOut {
				s.queue = append(s.queue[:i], s.queue[i+1:]...)
				break
			}
		}
	}
	s.queue = append(s.queue, ev)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
}

func (s *Subscription) pop() (models.AuthEvent, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.queue) == 0 {
		return models.AuthEvent{}, false
	}
	ev := s.queue[0]
	s.queue[0] = models.AuthEvent{}
	s.queue = s.queue[1:]
	return ev, true
}

// run hands queued events to the reader in order until the subscription is
// released.
func (s *Subscription) run() {
	defer close(s.exited)
	defer close(s.ch)

	for {
		ev, ok := s.pop()
		if !ok {
			select {
			case <-s.wake:
				continue
			case <-s.done:
				return
			}
		}
		select {
		case s.ch <- ev:
		case <-s.done:
			return
		}
	}
}
