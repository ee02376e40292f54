package training

import (
	"errors"
	"image"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mehmetcc/face-attendance-service/internal/activity"
	"github.com/mehmetcc/face-attendance-service/internal/enrollment"
	"github.com/mehmetcc/face-attendance-service/internal/recognition"
	"go.uber.org/zap"
)

func solid(v uint8) image.Image {
	img := image.NewGray(image.Rect(0, 0, 40, 40))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

// blockingEmbedder holds the first EmbedFace call until unblock is closed.
type blockingEmbedder struct {
	entered chan struct{}
	unblock chan struct{}
}

func (b *blockingEmbedder) EmbedFace(img image.Image) ([]float32, bool) {
	select {
	case b.entered <- struct{}{}:
	default:
	}
	<-b.unblock
	return []float32{1}, true
}

type panickingEmbedder struct{}

func (panickingEmbedder) EmbedFace(img image.Image) ([]float32, bool) {
	panic("embedder exploded")
}

type countingInstaller struct {
	installs int
}

func (c *countingInstaller) Install(*recognition.Classifier) error {
	c.installs++
	return nil
}

type nopInstaller struct{}

func (nopInstaller) Install(*recognition.Classifier) error { return nil }

func newEngine(t *testing.T) *recognition.Engine {
	t.Helper()
	return recognition.NewEngine(recognition.CenterDetector{Fraction: 0.6}, filepath.Join(t.TempDir(), "model.msgpack"), zap.NewNop())
}

func TestJobTrainsAndInstalls(t *testing.T) {
	store := enrollment.NewStore(t.TempDir())
	for _, s := range []struct {
		id string
		v  uint8
	}{{"S001", 20}, {"S001", 30}, {"S002", 230}} {
		if _, err := store.Save(s.id, solid(s.v)); err != nil {
			t.Fatalf("Save() error = %v", err)
		}
	}
	engine := newEngine(t)
	job := NewJob(activity.NewGate(), store, engine, engine, 2, zap.NewNop())

	if err := job.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	job.Wait()

	st := job.Status()
	if st.Running || !st.Completed || st.Progress != 100 || st.Message != "Training complete" {
		t.Errorf("status = %+v", st)
	}
	if !engine.Trained() {
		t.Error("engine has no model after training")
	}
}

func TestJobNoTrainingData(t *testing.T) {
	engine := newEngine(t)
	job := NewJob(activity.NewGate(), enrollment.NewStore(t.TempDir()), engine, engine, 1, zap.NewNop())
	if err := job.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	job.Wait()

	st := job.Status()
	if st.Running || st.Completed || st.Message != "No training data found" {
		t.Errorf("status = %+v", st)
	}
	if engine.Trained() {
		t.Error("engine installed a model without data")
	}
}

func TestJobBusy(t *testing.T) {
	gate := activity.NewGate()
	store := enrollment.NewStore(t.TempDir())
	if _, err := store.Save("S001", solid(10)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	emb := &blockingEmbedder{entered: make(chan struct{}, 1), unblock: make(chan struct{})}
	job := NewJob(gate, store, emb, nopInstaller{}, 1, zap.NewNop())

	if err := job.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	<-emb.entered

	if err := job.Start(); !errors.Is(err, activity.ErrBusy) {
		t.Errorf("second Start() error = %v, want ErrBusy", err)
	}
	if _, err := gate.TryAcquire(activity.Session); !errors.Is(err, activity.ErrBusy) {
		t.Errorf("session acquire during training error = %v, want ErrBusy", err)
	}
	if st := job.Status(); !st.Running {
		t.Errorf("status = %+v, want running", st)
	}

	close(emb.unblock)
	job.Wait()
	if gate.Busy() {
		t.Error("gate held after training finished")
	}
}

func TestJobRejectedDuringSession(t *testing.T) {
	gate := activity.NewGate()
	release, _ := gate.TryAcquire(activity.Session)
	defer release()

	engine := newEngine(t)
	job := NewJob(gate, enrollment.NewStore(t.TempDir()), engine, engine, 1, zap.NewNop())
	if err := job.Start(); !errors.Is(err, activity.ErrBusy) {
		t.Errorf("Start() error = %v, want ErrBusy", err)
	}
	if st := job.Status(); st.Running {
		t.Errorf("status = %+v after rejected start", st)
	}
}

func TestProgressNeverDecreases(t *testing.T) {
	job := NewJob(activity.NewGate(), nil, nil, nil, 1, zap.NewNop())
	job.progress(40, "a")
	job.progress(20, "b")
	if st := job.Status(); st.Progress != 40 || st.Message != "b" {
		t.Errorf("status = %+v, want progress 40", st)
	}
}

func TestJobEmbedderPanicFailsRun(t *testing.T) {
	store := enrollment.NewStore(t.TempDir())
	if _, err := store.Save("S001", solid(40)); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	gate := activity.NewGate()
	installer := &countingInstaller{}
	job := NewJob(gate, store, panickingEmbedder{}, installer, 2, zap.NewNop())

	if err := job.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	job.Wait()

	st := job.Status()
	if st.Running || st.Completed || !strings.HasPrefix(st.Message, "Training failed") {
		t.Errorf("status = %+v, want failed run", st)
	}
	if installer.installs != 0 {
		t.Errorf("installs = %d after failed run", installer.installs)
	}
	if gate.Busy() {
		t.Error("gate held after failed run")
	}
	if err := job.Start(); err != nil {
		t.Errorf("Start() after failed run error = %v", err)
	}
	job.Wait()
}
