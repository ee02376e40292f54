package recognition

import (
	"context"
	"errors"
	"image"
	"io/fs"
	"sync/atomic"

	"go.uber.org/zap"
)

var ErrNotTrained = errors.New("no trained model")

// Recognizer turns a frame into identity candidates.
type Recognizer interface {
	Recognize(ctx context.Context, img image.Image) ([]Candidate, error)
}

// Engine serves predictions from the currently installed classifier. Install
// swaps the whole model, so a Recognize call sees either the old or the new one.
type Engine struct {
	detector  Detector
	modelPath string
	model     atomic.Pointer[Classifier]
	logger    *zap.Logger
}

func NewEngine(detector Detector, modelPath string, logger *zap.Logger) *Engine {
	return &Engine{detector: detector, modelPath: modelPath, logger: logger}
}

// Load installs the artifact on disk, if any. A missing file is not an error.
func (e *Engine) Load() error {
	c, err := LoadArtifact(e.modelPath)
	if errors.Is(err, fs.ErrNotExist) {
		e.logger.Warn("no model artifact, training required", zap.String("path", e.modelPath))
		return nil
	}
	if err != nil {
		return err
	}
	e.model.Store(c)
	e.logger.Info("model loaded", zap.Int("labels", len(c.Labels)), zap.Time("trained_at", c.TrainedAt))
	return nil
}

// Install persists c and makes it live.
func (e *Engine) Install(c *Classifier) error {
	if err := SaveArtifact(e.modelPath, c); err != nil {
		return err
	}
	e.model.Store(c)
	return nil
}

func (e *Engine) Trained() bool {
	return e.model.Load() != nil
}

// EmbedFace embeds the first face found in img.
func (e *Engine) EmbedFace(img image.Image) ([]float32, bool) {
	rects := e.detector.Detect(img)
	if len(rects) == 0 {
		return nil, false
	}
	emb := Embed(img, rects[0])
	return emb, emb != nil
}

func (e *Engine) Recognize(ctx context.Context, img image.Image) ([]Candidate, error) {
	c := e.model.Load()
	if c == nil {
		return nil, ErrNotTrained
	}
	var out []Candidate
	for _, r := range e.detector.Detect(img) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		emb := Embed(img, r)
		if emb == nil {
			continue
		}
		out = append(out, c.Predict(emb))
	}
	return out, nil
}
