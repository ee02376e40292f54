// Package training rebuilds the recognition model from the enrollment images.
package training

import (
	"context"
	"errors"
	"fmt"
	"image"
	"sync"

	"github.com/mehmetcc/face-attendance-service/internal/activity"
	"github.com/mehmetcc/face-attendance-service/internal/enrollment"
	"github.com/mehmetcc/face-attendance-service/internal/recognition"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	extractShare = 80
	fitProgress  = 85
)

var ErrNoTrainingData = errors.New("no training data found")

// State is what pollers see. Progress never goes down within a run.
// @Description training progress
type State struct {
	Running   bool   `json:"running"`
	Progress  int    `json:"progress"`
	Message   string `json:"message"`
	Completed bool   `json:"completed"`
}

// Embedder extracts a face embedding from an image.
type Embedder interface {
	EmbedFace(img image.Image) ([]float32, bool)
}

// Installer makes a trained classifier live.
type Installer interface {
	Install(c *recognition.Classifier) error
}

type Job struct {
	gate      *activity.Gate
	store     *enrollment.Store
	embedder  Embedder
	installer Installer
	workers   int
	logger    *zap.Logger

	mu    sync.Mutex
	state State
	wg    sync.WaitGroup
}

func NewJob(gate *activity.Gate, store *enrollment.Store, embedder Embedder, installer Installer, workers int, logger *zap.Logger) *Job {
	if workers <= 0 {
		workers = 1
	}
	return &Job{
		gate:      gate,
		store:     store,
		embedder:  embedder,
		installer: installer,
		workers:   workers,
		logger:    logger,
		state:     State{Message: "Idle"},
	}
}

// Start launches a run in the background. It returns activity.ErrBusy while a
// session, an enrollment or another run holds the gate.
func (j *Job) Start() error {
	release, err := j.gate.TryAcquire(activity.Training)
	if err != nil {
		return err
	}

	j.mu.Lock()
	j.state = State{Running: true, Message: "Starting training"}
	j.mu.Unlock()

	j.wg.Add(1)
	go func() {
		defer j.wg.Done()
		defer release()
		j.run()
	}()
	return nil
}

func (j *Job) Status() State {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.state
}

// Wait blocks until the current run, if any, has finished.
func (j *Job) Wait() {
	j.wg.Wait()
}

func (j *Job) progress(pct int, msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if pct > j.state.Progress {
		j.state.Progress = pct
	}
	j.state.Message = msg
}

func (j *Job) finish(completed bool, msg string) {
	j.mu.Lock()
	defer j.mu.Unlock()
	j.state.Running = false
	j.state.Completed = completed
	j.state.Message = msg
	if completed {
		j.state.Progress = 100
	}
}

func (j *Job) run() {
	defer func() {
		if r := recover(); r != nil {
			j.logger.Error("training panicked", zap.Any("panic", r))
			j.finish(false, "Training failed: internal error")
		}
	}()

	samples, err := j.extract()
	if err != nil {
		j.logger.Error("training failed", zap.Error(err))
		j.finish(false, "Training failed: "+err.Error())
		return
	}

	j.progress(fitProgress, "Training classifier...")
	clf, err := recognition.Train(samples)
	if errors.Is(err, recognition.ErrNoSamples) {
		j.logger.Warn("training skipped", zap.Error(ErrNoTrainingData))
		j.finish(false, "No training data found")
		return
	}
	if err == nil {
		err = j.installer.Install(clf)
	}
	if err != nil {
		j.logger.Error("training failed", zap.Error(err))
		j.finish(false, "Training failed: "+err.Error())
		return
	}

	j.logger.Info("training complete", zap.Int("labels", len(clf.Labels)), zap.Float64("sigma", clf.Sigma))
	j.finish(true, "Training complete")
}

// extract embeds every enrollment image, one person per worker.
func (j *Job) extract() (map[string][][]float32, error) {
	labels, err := j.store.Labels()
	if err != nil {
		return nil, fmt.Errorf("list dataset: %w", err)
	}
	total := max(1, len(labels))

	var (
		mu        sync.Mutex
		samples   = make(map[string][][]float32, len(labels))
		processed int
	)
	g, ctx := errgroup.WithContext(context.Background())
	g.SetLimit(j.workers)
	for _, label := range labels {
		g.Go(func() (err error) {
			// a panicking embedder fails the run instead of the process
			defer func() {
				if r := recover(); r != nil {
					j.logger.Error("embedding worker panicked", zap.String("user_id", label), zap.Any("panic", r))
					err = fmt.Errorf("embed faces of %s: %v", label, r)
				}
			}()
			if err := ctx.Err(); err != nil {
				return err
			}
			names, err := j.store.Faces(label)
			if err != nil {
				return fmt.Errorf("list faces of %s: %w", label, err)
			}
			var embs [][]float32
			for _, name := range names {
				img, err := j.store.Load(label, name)
				if err != nil {
					j.logger.Warn("skipping unreadable image", zap.String("user_id", label), zap.String("file", name), zap.Error(err))
					continue
				}
				if emb, ok := j.embedder.EmbedFace(img); ok {
					embs = append(embs, emb)
				}
			}

			mu.Lock()
			samples[label] = embs
			processed++
			done := processed
			mu.Unlock()
			j.progress(done*extractShare/total, fmt.Sprintf("Processed %d/%d students", done, total))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return samples, nil
}
