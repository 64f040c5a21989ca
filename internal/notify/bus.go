// Package notify is the in-process broadcast channel views use to learn
// about bookmark changes and transient messages.
package notify

import (
	"sort"
	"sync"

	"github.com/google/uuid"
)

// Topic names a class of events.
type Topic string

const (
	TopicBookmarksChanged Topic = "bookmarks-changed"
	TopicToast            Topic = "toast"
)

// Event is a fire-and-forget message. Text is only set for toasts.
type Event struct {
	Topic Topic
	Text  string
}

// Handler receives events.
type Handler func(Event)

type entry struct {
	seq     uint64
	topic   Topic
	all     bool
	handler Handler
}

// Bus delivers each published event synchronously to the handlers that are
// subscribed when Publish is called, in subscription order. There is no
// buffering and no replay.
type Bus struct {
	mu   sync.Mutex
	seq  uint64
	subs map[string]*entry
}

// NewBus creates an empty bus.
func NewBus() *Bus {
	return &Bus{subs: make(map[string]*entry)}
}

// Subscription is the handle a view keeps while mounted.
type Subscription struct {
	id   string
	bus  *Bus
	once sync.Once
}

// Unsubscribe detaches the handler. It is safe to call more than once and
// from inside a handler.
func (s *Subscription) Unsubscribe() {
	if s == nil {
		return
	}
	s.once.Do(func() {
		s.bus.mu.Lock()
		delete(s.bus.subs, s.id)
		s.bus.mu.Unlock()
	})
}

// Subscribe registers h for events on topic.
func (b *Bus) Subscribe(topic Topic, h Handler) *Subscription {
	return b.add(&entry{topic: topic, handler: h})
}

// SubscribeAll registers h for every topic.
func (b *Bus) SubscribeAll(h Handler) *Subscription {
	return b.add(&entry{all: true, handler: h})
}

func (b *Bus) add(e *entry) *Subscription {
	id := uuid.NewString()

	b.mu.Lock()
	b.seq++
	e.seq = b.seq
	b.subs[id] = e
	b.mu.Unlock()

	return &Subscription{id: id, bus: b}
}

// Publish delivers ev to the current subscribers of its topic.
func (b *Bus) Publish(ev Event) {
	b.mu.Lock()
	targets := make([]*entry, 0, len(b.subs))
	ids := make(map[*entry]string, len(b.subs))
	for id, e := range b.subs {
		if e.all || e.topic == ev.Topic {
			targets = append(targets, e)
			ids[e] = id
		}
	}
	b.mu.Unlock()

	sort.Slice(targets, func(i, j int) bool { return targets[i].seq < targets[j].seq })

	for _, e := range targets {
		// an earlier handler may have torn this subscriber down
		if !b.active(ids[e]) {
			continue
		}
		e.handler(ev)
	}
}

func (b *Bus) active(id string) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	_, ok := b.subs[id]
	return ok
}

// BookmarksChanged publishes a bookmarks-changed event.
func (b *Bus) BookmarksChanged() {
	b.Publish(Event{Topic: TopicBookmarksChanged})
}

// Toast publishes a toast event carrying text.
func (b *Bus) Toast(text string) {
	b.Publish(Event{Topic: TopicToast, Text: text})
}

func (b *Bus) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.subs)
}
