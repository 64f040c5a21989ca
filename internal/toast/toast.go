// Package toast holds the transient message shown after bookmark changes.
package toast

import (
	"sync"
	"time"

	"news-reader/internal/notify"
)

// DefaultDuration is how long a toast stays visible.
const DefaultDuration = 1800 * time.Millisecond

// Model keeps the most recent toast and when it expires.
type Model struct {
	mu       sync.Mutex
	duration time.Duration
	now      func() time.Time
	text     string
	expires  time.Time
	sub      *notify.Subscription
}

// New creates a model. A non-positive d uses DefaultDuration.
func New(d time.Duration) *Model {
	if d <= 0 {
		d = DefaultDuration
	}
	return &Model{duration: d, now: time.Now}
}

// SetClock replaces the time source.
func (m *Model) SetClock(now func() time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.now = now
}

// Attach subscribes to toast events on bus. onShow runs after each accepted
// toast. Calling Attach again replaces the previous subscription.
func (m *Model) Attach(bus *notify.Bus, onShow func(text string)) {
	m.Detach()
	sub := bus.Subscribe(notify.TopicToast, func(ev notify.Event) {
		if m.Show(ev.Text) && onShow != nil {
			onShow(ev.Text)
		}
	})
	m.mu.Lock()
	m.sub = sub
	m.mu.Unlock()
}

// Detach releases the subscription.
func (m *Model) Detach() {
	m.mu.Lock()
	sub := m.sub
	m.sub = nil
	m.mu.Unlock()
	sub.Unsubscribe()
}

// Show displays text, restarting the timer. Empty text is ignored.
func (m *Model) Show(text string) bool {
	if text == "" {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.text = text
	m.expires = m.now().Add(m.duration)
	return true
}

// Current returns the visible toast, if any.
func (m *Model) Current() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.text == "" || !m.now().Before(m.expires) {
		return "", false
	}
	return m.text, true
}

// Duration returns the display duration.
func (m *Model) Duration() time.Duration {
	return m.duration
}
