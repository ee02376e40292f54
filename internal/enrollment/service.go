package enrollment

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/mehmetcc/face-attendance-service/internal/activity"
	"github.com/mehmetcc/face-attendance-service/internal/camera"
	"github.com/mehmetcc/face-attendance-service/internal/person"
	"go.uber.org/zap"
)

var ErrNoImages = errors.New("no images provided")

// Trainer starts a model rebuild. It returns activity.ErrBusy when one cannot
// start right now.
type Trainer interface {
	Start() error
}

// CaptureStatus describes the latest burst capture.
type CaptureStatus struct {
	Running   bool   `json:"running"`
	StudentID string `json:"student_id,omitempty"`
	Saved     int    `json:"saved"`
	Target    int    `json:"target"`
	Error     string `json:"error,omitempty"`
}

type Options struct {
	BurstFrames   int
	BurstInterval time.Duration
	AutoTrain     bool
}

type EnrollmentService interface {
	StartCapture(ctx context.Context, id string) error
	CaptureStatus() CaptureStatus
	Upload(ctx context.Context, id string, images []io.Reader) (int, error)
	Faces(ctx context.Context, id string) ([]string, error)
	FacePath(id, name string) (string, error)
	RemoveFace(ctx context.Context, id, name string) error
	RemovePerson(ctx context.Context, id string) error
	Wait()
}

type enrollmentService struct {
	store   *Store
	persons person.PersonService
	device  *camera.Device
	gate    *activity.Gate
	trainer Trainer
	opts    Options
	logger  *zap.Logger

	mu     sync.Mutex
	status CaptureStatus
	wg     sync.WaitGroup
}

func NewEnrollmentService(
	store *Store,
	persons person.PersonService,
	device *camera.Device,
	gate *activity.Gate,
	trainer Trainer,
	opts Options,
	logger *zap.Logger,
) EnrollmentService {
	if opts.BurstFrames <= 0 {
		opts.BurstFrames = 20
	}
	return &enrollmentService{
		store:   store,
		persons: persons,
		device:  device,
		gate:    gate,
		trainer: trainer,
		opts:    opts,
		logger:  logger,
	}
}

// StartCapture reserves the appliance for id and records a burst of frames in
// the background. Camera failures surface through CaptureStatus.
func (s *enrollmentService) StartCapture(ctx context.Context, id string) error {
	if _, err := s.persons.ReadPersonByID(ctx, id); err != nil {
		return err
	}
	release, err := s.gate.TryAcquire(activity.Enrollment)
	if err != nil {
		return err
	}

	s.setStatus(CaptureStatus{Running: true, StudentID: id, Target: s.opts.BurstFrames})
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		saved, err := s.capture(id, release)

		st := CaptureStatus{StudentID: id, Saved: saved, Target: s.opts.BurstFrames}
		if err != nil {
			st.Error = err.Error()
			s.logger.Error("enrollment capture failed", zap.String("user_id", id), zap.Int("saved", saved), zap.Error(err))
		} else {
			s.logger.Info("enrollment capture complete", zap.String("user_id", id), zap.Int("saved", saved))
		}
		s.setStatus(st)

		if err == nil && s.opts.AutoTrain {
			s.retrain()
		}
	}()
	return nil
}

// capture owns the camera for one burst. The camera is released before the
// gate, including when the burst panics.
func (s *enrollmentService) capture(id string, releaseGate func()) (saved int, err error) {
	defer releaseGate()
	defer func() {
		if r := recover(); r != nil {
			s.logger.Error("enrollment capture panicked", zap.String("user_id", id), zap.Any("panic", r))
			saved = s.CaptureStatus().Saved
			err = errors.New("capture failed: internal error")
		}
	}()

	timeout := time.Duration(s.opts.BurstFrames)*(s.opts.BurstInterval+5*time.Second) + time.Second
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	handle, err := s.device.Acquire(ctx, "enrollment:"+id)
	if err != nil {
		return 0, err
	}
	defer handle.Release()
	return s.burst(ctx, handle, id)
}

func (s *enrollmentService) burst(ctx context.Context, handle *camera.Handle, id string) (int, error) {
	saved := 0
	for i := 0; i < s.opts.BurstFrames; i++ {
		if i > 0 && s.opts.BurstInterval > 0 {
			select {
			case <-ctx.Done():
				return saved, ctx.Err()
			case <-time.After(s.opts.BurstInterval):
			}
		}
		frame, err := handle.Next(ctx)
		if err != nil {
			return saved, err
		}
		if _, err := s.store.Save(id, frame.Image); err != nil {
			return saved, fmt.Errorf("save frame: %w", err)
		}
		saved++
		s.mu.Lock()
		s.status.Saved = saved
		s.mu.Unlock()
	}
	return saved, nil
}

func (s *enrollmentService) retrain() {
	if s.trainer == nil {
		return
	}
	if err := s.trainer.Start(); err != nil {
		s.logger.Warn("automatic training not started", zap.Error(err))
	}
}

func (s *enrollmentService) setStatus(st CaptureStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.status = st
}

func (s *enrollmentService) CaptureStatus() CaptureStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Upload stores operator-supplied images for id.
func (s *enrollmentService) Upload(ctx context.Context, id string, images []io.Reader) (int, error) {
	if len(images) == 0 {
		return 0, ErrNoImages
	}
	if _, err := s.persons.ReadPersonByID(ctx, id); err != nil {
		return 0, err
	}
	release, err := s.gate.TryAcquire(activity.Enrollment)
	if err != nil {
		return 0, err
	}
	defer release()

	saved := 0
	for _, r := range images {
		if _, err := s.store.SaveUpload(id, r); err != nil {
			s.logger.Warn("skipping unreadable upload", zap.String("user_id", id), zap.Error(err))
			continue
		}
		saved++
	}
	s.logger.Info("enrollment images uploaded", zap.String("user_id", id), zap.Int("saved", saved))
	if saved > 0 && s.opts.AutoTrain {
		release()
		s.retrain()
	}
	return saved, nil
}

func (s *enrollmentService) Faces(ctx context.Context, id string) ([]string, error) {
	if _, err := s.persons.ReadPersonByID(ctx, id); err != nil {
		return nil, err
	}
	return s.store.Faces(id)
}

func (s *enrollmentService) FacePath(id, name string) (string, error) {
	if err := person.ValidateID(id); err != nil {
		return "", err
	}
	return s.store.FacePath(id, name)
}

func (s *enrollmentService) RemoveFace(ctx context.Context, id, name string) error {
	if err := person.ValidateID(id); err != nil {
		return err
	}
	release, err := s.gate.TryAcquire(activity.Enrollment)
	if err != nil {
		return err
	}
	defer release()
	return s.store.RemoveFace(id, name)
}

// RemovePerson deletes the person row, which cascades to groups and
// attendance, then the enrollment images.
func (s *enrollmentService) RemovePerson(ctx context.Context, id string) error {
	release, err := s.gate.TryAcquire(activity.Enrollment)
	if err != nil {
		return err
	}
	defer release()

	if err := s.persons.DeletePerson(ctx, id); err != nil {
		return err
	}
	if err := s.store.Remove(id); err != nil {
		s.logger.Error("failed to remove enrollment images", zap.String("user_id", id), zap.Error(err))
		return err
	}
	s.logger.Info("person removed", zap.String("user_id", id))
	return nil
}

// Wait blocks until background captures finish. Used on shutdown.
func (s *enrollmentService) Wait() {
	s.wg.Wait()
}
