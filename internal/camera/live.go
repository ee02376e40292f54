package camera

import (
	"context"
	"errors"
	"sync"
)

var ErrIdle = errors.New("camera idle")

// Live holds the most recent frame read by the current device owner. New
// frames overwrite unread ones; every waiter sees the same frame.
type Live struct {
	mu     sync.Mutex
	frame  *Frame
	active bool
	notify chan struct{}
}

func NewLive() *Live {
	return &Live{notify: make(chan struct{})}
}

func (l *Live) wake() {
	close(l.notify)
	l.notify = make(chan struct{})
}

func (l *Live) publish(f *Frame) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.frame = f
	l.active = true
	l.wake()
}

func (l *Live) setActive(active bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.active = active
	if !active {
		l.frame = nil
	}
	l.wake()
}

func (l *Live) Active() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.active
}

// Next blocks until a frame newer than afterSeq is available. It returns
// ErrIdle once the device has been released.
func (l *Live) Next(ctx context.Context, afterSeq uint64) (*Frame, error) {
	for {
		l.mu.Lock()
		if !l.active {
			l.mu.Unlock()
			return nil, ErrIdle
		}
		if l.frame != nil && l.frame.Seq > afterSeq {
			f := l.frame
			l.mu.Unlock()
			return f, nil
		}
		ch := l.notify
		l.mu.Unlock()

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-ch:
		}
	}
}
