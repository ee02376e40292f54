// Package session runs attendance scans: a timed alignment phase, a short
// capture window, recognition and a duplicate-safe ledger write. Each scan
// runs in the background; callers poll the Mailbox for the outcome.
package session

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/mehmetcc/face-attendance-service/internal/activity"
	"github.com/mehmetcc/face-attendance-service/internal/camera"
	"github.com/mehmetcc/face-attendance-service/internal/feedback"
	"github.com/mehmetcc/face-attendance-service/internal/ledger"
	"github.com/mehmetcc/face-attendance-service/internal/person"
	"github.com/mehmetcc/face-attendance-service/internal/recognition"
	"go.uber.org/zap"
)

// staleGrace is how long past the ceiling a session may linger before the
// next interaction resets it.
const staleGrace = 2 * time.Second

var ErrBusy = fmt.Errorf("session: %w", activity.ErrBusy)

// Directory resolves recognised labels to people.
type Directory interface {
	ReadPersonByID(ctx context.Context, id string) (*person.Person, error)
}

// Ledger records attendance.
type Ledger interface {
	Record(ctx context.Context, studentID string, groupID uint) (ledger.Result, error)
}

type countdown interface {
	Countdown(remaining time.Duration)
}

type Options struct {
	Alignment       time.Duration
	CaptureFrames   int
	Ceiling         time.Duration
	PreviewInterval time.Duration
	MinConfidence   float64
	DefaultGroupID  uint
}

// StartResult acknowledges an accepted start.
type StartResult struct {
	Status  string `json:"status"`
	Seconds int    `json:"seconds"`
	Session uint64 `json:"session"`
	GroupID uint   `json:"group_id"`
}

// View is a snapshot of the session for pollers.
type View struct {
	Phase     string    `json:"phase"`
	Session   uint64    `json:"session"`
	GroupID   uint      `json:"group_id,omitempty"`
	StartedAt time.Time `json:"started_at,omitempty"`
	Remaining float64   `json:"seconds_remaining"`
}

type Machine struct {
	gate       *activity.Gate
	device     *camera.Device
	recognizer recognition.Recognizer
	directory  Directory
	ledger     Ledger
	notifier   feedback.Notifier
	mailbox    *Mailbox
	opts       Options
	logger     *zap.Logger
	now        func() time.Time

	phase atomic.Int32
	gen   atomic.Uint64

	// mu guards the fields below and every phase change made by the worker.
	mu          sync.Mutex
	startedAt   time.Time
	groupID     uint
	releaseGate func()
	cancel      context.CancelFunc
	wg          sync.WaitGroup
}

func NewMachine(
	gate *activity.Gate,
	device *camera.Device,
	recognizer recognition.Recognizer,
	directory Directory,
	ledger Ledger,
	notifier feedback.Notifier,
	mailbox *Mailbox,
	opts Options,
	logger *zap.Logger,
) *Machine {
	if opts.CaptureFrames <= 0 {
		opts.CaptureFrames = 1
	}
	if opts.Ceiling <= opts.Alignment {
		opts.Ceiling = 6 * opts.Alignment
	}
	return &Machine{
		gate:       gate,
		device:     device,
		recognizer: recognizer,
		directory:  directory,
		ledger:     ledger,
		notifier:   notifier,
		mailbox:    mailbox,
		opts:       opts,
		logger:     logger,
		now:        time.Now,
	}
}

func (m *Machine) Phase() Phase {
	return Phase(m.phase.Load())
}

func (m *Machine) Mailbox() *Mailbox {
	return m.mailbox
}

// Start accepts a new session for groupID (0 selects the default group). It
// returns ErrBusy, without touching any session state, when a session,
// training run or enrollment capture is in progress.
func (m *Machine) Start(groupID uint) (StartResult, error) {
	m.expireStale()

	release, err := m.gate.TryAcquire(activity.Session)
	if err != nil {
		return StartResult{}, ErrBusy
	}
	if groupID == 0 {
		groupID = m.opts.DefaultGroupID
	}

	m.mu.Lock()
	if !m.phase.CompareAndSwap(int32(Idle), int32(Aligning)) {
		m.mu.Unlock()
		release()
		return StartResult{}, ErrBusy
	}
	gen := m.gen.Add(1)
	ctx, cancel := context.WithTimeout(context.Background(), m.opts.Ceiling)
	m.startedAt = m.now()
	m.groupID = groupID
	m.releaseGate = release
	m.cancel = cancel
	m.mailbox.Reset(gen)
	m.wg.Add(1)
	m.mu.Unlock()

	m.logger.Info("session started", zap.Uint64("session", gen), zap.Uint("group_id", groupID))
	go m.run(ctx, gen, groupID)

	return StartResult{
		Status:  Aligning.String(),
		Seconds: int(m.opts.Alignment.Round(time.Second) / time.Second),
		Session: gen,
		GroupID: groupID,
	}, nil
}

// Result returns the latest outcome, resetting a session stuck past its
// ceiling first.
func (m *Machine) Result() Outcome {
	m.expireStale()
	return m.mailbox.Peek()
}

func (m *Machine) View() View {
	m.expireStale()
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.Phase()
	v := View{Phase: p.String(), Session: m.gen.Load()}
	if p.Active() {
		v.GroupID = m.groupID
		v.StartedAt = m.startedAt
	}
	if p == Aligning {
		left := m.opts.Alignment - m.now().Sub(m.startedAt)
		if left > 0 {
			v.Remaining = left.Seconds()
		}
	}
	return v
}

// Wait blocks until no session worker is running.
func (m *Machine) Wait() {
	m.wg.Wait()
}

// expireStale force-resets a session that outlived its ceiling. The worker,
// if it ever returns, finds its generation superseded and its camera handle
// revoked, and publishes nothing.
func (m *Machine) expireStale() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Phase() == Idle || m.now().Sub(m.startedAt) <= m.opts.Ceiling+staleGrace {
		return
	}
	stale := m.gen.Load()
	m.gen.Add(1)
	m.logger.Warn("session exceeded ceiling, resetting", zap.Uint64("session", stale))
	m.mailbox.Publish(failed(stale, ReasonTimeout, "Session timed out"))
	// the stuck worker may still hold the camera; take it back before the
	// gate lets the next session in
	m.device.Revoke(deviceOwner(stale))
	m.resetLocked()
}

func deviceOwner(gen uint64) string {
	return fmt.Sprintf("session:%d", gen)
}

func (m *Machine) resetLocked() {
	if m.cancel != nil {
		m.cancel()
		m.cancel = nil
	}
	m.phase.Store(int32(Idle))
	if m.releaseGate != nil {
		m.releaseGate()
		m.releaseGate = nil
	}
}

// advance moves the current session to phase p unless it was superseded.
func (m *Machine) advance(gen uint64, p Phase) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen.Load() != gen {
		return false
	}
	m.phase.Store(int32(p))
	return true
}

func (m *Machine) finish(gen uint64, o Outcome) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.gen.Load() != gen {
		m.logger.Warn("dropping outcome of superseded session", zap.Uint64("session", gen), zap.String("status", string(o.Status)))
		return false
	}

	terminal := Done
	if o.Status == StatusError {
		terminal = Failed
	}
	m.phase.Store(int32(terminal))
	m.mailbox.Publish(o)
	m.logger.Info("session finished",
		zap.Uint64("session", gen),
		zap.Stringer("phase", terminal),
		zap.String("status", string(o.Status)),
		zap.String("student_id", o.StudentID),
		zap.String("reason", string(o.Reason)))
	m.resetLocked()
	return true
}

func (m *Machine) run(ctx context.Context, gen uint64, groupID uint) {
	defer m.wg.Done()
	o := m.scan(ctx, gen, groupID)
	if m.finish(gen, o) {
		m.announce(o)
	}
}

func (m *Machine) announce(o Outcome) {
	if m.notifier == nil {
		return
	}
	switch o.Status {
	case StatusSuccess:
		m.notifier.Success(o.Name, o.Confidence)
	case StatusDuplicate:
		m.notifier.Duplicate(o.Name)
	case StatusFailure:
		m.notifier.Unknown()
	case StatusError:
		m.notifier.Message("Scan failed", o.Message)
	}
}

// scan owns the camera for the whole session and always releases it before
// returning. Only expireStale frees the gate earlier, and it revokes the
// camera first.
func (m *Machine) scan(ctx context.Context, gen uint64, groupID uint) (o Outcome) {
	defer func() {
		if r := recover(); r != nil {
			m.logger.Error("session panicked", zap.Uint64("session", gen), zap.Any("panic", r))
			o = failed(gen, ReasonInternal, "Internal error")
		}
	}()

	handle, err := m.device.Acquire(ctx, deviceOwner(gen))
	if err != nil {
		m.logger.Error("camera unavailable", zap.Uint64("session", gen), zap.Error(err))
		return failed(gen, ReasonDeviceUnavailable, "Camera unavailable")
	}
	defer handle.Release()

	if err := m.align(ctx, handle); err != nil {
		return m.frameError(gen, err)
	}

	if !m.advance(gen, Capturing) {
		return failed(gen, ReasonTimeout, "Session timed out")
	}
	best, err := m.capture(ctx, handle)
	if err != nil {
		return m.frameError(gen, err)
	}
	if best.Label == "" || best.Confidence < m.opts.MinConfidence {
		m.logger.Info("no confident match", zap.Uint64("session", gen), zap.String("label", best.Label), zap.Float64("confidence", best.Confidence))
		return noMatch(gen, "Face not recognized")
	}
	handle.Release()

	if !m.advance(gen, Resolving) {
		return failed(gen, ReasonTimeout, "Session timed out")
	}
	return m.resolve(ctx, gen, groupID, best)
}

func (m *Machine) frameError(gen uint64, err error) Outcome {
	switch {
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return failed(gen, ReasonTimeout, "Session timed out")
	case errors.Is(err, recognition.ErrNotTrained):
		return failed(gen, ReasonRecognizer, "Model not trained")
	case errors.Is(err, camera.ErrDeviceUnavailable):
		m.logger.Error("camera read failed", zap.Uint64("session", gen), zap.Error(err))
		return failed(gen, ReasonDeviceUnavailable, "Camera unavailable")
	default:
		m.logger.Error("recognition failed", zap.Uint64("session", gen), zap.Error(err))
		return failed(gen, ReasonRecognizer, "Recognition failed")
	}
}

// align holds the Aligning phase for the configured duration, feeding the
// live view meanwhile.
func (m *Machine) align(ctx context.Context, handle *camera.Handle) error {
	timer := time.NewTimer(m.opts.Alignment)
	defer timer.Stop()

	var tick <-chan time.Time
	if m.opts.PreviewInterval > 0 {
		ticker := time.NewTicker(m.opts.PreviewInterval)
		defer ticker.Stop()
		tick = ticker.C
	}
	deadline := m.now().Add(m.opts.Alignment)
	cd, _ := m.notifier.(countdown)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
			return nil
		case <-tick:
			if _, err := handle.Next(ctx); err != nil {
				return err
			}
			if cd != nil {
				cd.Countdown(deadline.Sub(m.now()))
			}
		}
	}
}

// capture picks the most confident candidate across the capture window.
func (m *Machine) capture(ctx context.Context, handle *camera.Handle) (recognition.Candidate, error) {
	var best recognition.Candidate
	for i := 0; i < m.opts.CaptureFrames; i++ {
		frame, err := handle.Next(ctx)
		if err != nil {
			return best, err
		}
		cands, err := m.recognizer.Recognize(ctx, frame.Image)
		if err != nil {
			return best, err
		}
		for _, c := range cands {
			if c.Confidence > best.Confidence {
				best = c
			}
		}
	}
	return best, nil
}

func (m *Machine) resolve(ctx context.Context, gen uint64, groupID uint, best recognition.Candidate) Outcome {
	p, err := m.directory.ReadPersonByID(ctx, best.Label)
	if errors.Is(err, person.ErrPersonNotFound) {
		m.logger.Warn("recognised label has no person", zap.String("label", best.Label))
		return noMatch(gen, "Face not recognized")
	}
	if err != nil {
		return failed(gen, ReasonStorage, "Could not look up person")
	}

	res, err := m.ledger.Record(ctx, p.UserID, groupID)
	if err != nil {
		if ctx.Err() != nil {
			return failed(gen, ReasonTimeout, "Session timed out")
		}
		return failed(gen, ReasonStorage, "Could not save attendance")
	}
	if res == ledger.AlreadyPresent {
		return duplicate(gen, p.Name, p.UserID)
	}
	return success(gen, p.Name, p.UserID, best.Confidence)
}
