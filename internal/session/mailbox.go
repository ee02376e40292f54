package session

import "sync"

// Mailbox is a single-slot result handoff. Publish overwrites, Peek does not
// consume, so every poller reads the same outcome.
type Mailbox struct {
	mu sync.RWMutex
	v  Outcome
}

func NewMailbox() *Mailbox {
	return &Mailbox{v: NoResult(0)}
}

func (m *Mailbox) Publish(o Outcome) {
	m.mu.Lock()
	m.v = o
	m.mu.Unlock()
}

func (m *Mailbox) Peek() Outcome {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.v
}

// Reset puts the sentinel back for a new session.
func (m *Mailbox) Reset(session uint64) {
	m.Publish(NoResult(session))
}
