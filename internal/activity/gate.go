// Package activity arbitrates the appliance's exclusive activities. Attendance
// sessions, training runs and enrollment captures compete for the camera and
// the enrollment image set, so at most one of them runs at a time.
package activity

import (
	"errors"
	"sync"
	"sync/atomic"
)

var ErrBusy = errors.New("another activity is in progress")

type Kind int32

const (
	None Kind = iota
	Session
	Training
	Enrollment
)

func (k Kind) String() string {
	switch k {
	case None:
		return "idle"
	case Session:
		return "session"
	case Training:
		return "training"
	case Enrollment:
		return "enrollment"
	default:
		return "unknown"
	}
}

// Gate is a single-owner flag. TryAcquire never blocks.
type Gate struct {
	owner atomic.Int32
}

func NewGate() *Gate {
	return &Gate{}
}

// TryAcquire claims the gate for kind. The returned release func is safe to
// call more than once.
func (g *Gate) TryAcquire(kind Kind) (release func(), err error) {
	if kind == None {
		return nil, errors.New("activity: cannot acquire for None")
	}
	if !g.owner.CompareAndSwap(int32(None), int32(kind)) {
		return nil, ErrBusy
	}
	var once sync.Once
	return func() {
		once.Do(func() {
			g.owner.CompareAndSwap(int32(kind), int32(None))
		})
	}, nil
}

// Current reports which activity holds the gate.
func (g *Gate) Current() Kind {
	return Kind(g.owner.Load())
}

func (g *Gate) Busy() bool {
	return g.Current() != None
}
