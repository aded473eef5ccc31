package link

import (
	"sync"

	"github.com/pithecene-io/flightreplay/types"
)

// Memory is an in-process link. Written messages are recorded; inbound
// messages are supplied with Inject.
type Memory struct {
	mu       sync.Mutex
	written  []*types.Message
	inbound  chan *types.Message
	done     chan struct{}
	once     sync.Once
	writeErr error
}

// NewMemory creates an open in-memory link.
func NewMemory() *Memory {
	return &Memory{
		inbound: make(chan *types.Message, 16),
		done:    make(chan struct{}),
	}
}

// WriteMessage records m.
func (m *Memory) WriteMessage(msg *types.Message) error {
	select {
	case <-m.done:
		return ErrClosed
	default:
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.written = append(m.written, msg)
	return nil
}

// ReadMessage returns the next injected message.
func (m *Memory) ReadMessage() (*types.Message, error) {
	select {
	case msg := <-m.inbound:
		return msg, nil
	case <-m.done:
		return nil, ErrClosed
	}
}

// Inject queues an inbound message. Returns false if the link is closed.
func (m *Memory) Inject(msg *types.Message) bool {
	select {
	case <-m.done:
		return false
	case m.inbound <- msg:
		return true
	}
}

// FailWrites makes subsequent writes return err (nil restores them).
func (m *Memory) FailWrites(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.writeErr = err
}

// Written returns a copy of everything written so far.
func (m *Memory) Written() []*types.Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*types.Message, len(m.written))
	copy(out, m.written)
	return out
}

// Close closes the link. Safe to call more than once.
func (m *Memory) Close() error {
	m.once.Do(func() { close(m.done) })
	return nil
}

// Closed reports whether Close has been called.
func (m *Memory) Closed() bool {
	select {
	case <-m.done:
		return true
	default:
		return false
	}
}
