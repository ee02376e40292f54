package recognition

import (
	"context"
	"errors"
	"image"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func solid(v uint8) image.Image {
	img := image.NewGray(image.Rect(0, 0, 64, 48))
	for i := range img.Pix {
		img.Pix[i] = v
	}
	return img
}

func embedAll(t *testing.T, imgs ...image.Image) [][]float32 {
	t.Helper()
	d := CenterDetector{Fraction: 0.6}
	var out [][]float32
	for _, img := range imgs {
		out = append(out, Embed(img, d.Detect(img)[0]))
	}
	return out
}

func TestCenterDetector(t *testing.T) {
	rects := CenterDetector{Fraction: 0.5}.Detect(image.NewGray(image.Rect(0, 0, 100, 60)))
	if len(rects) != 1 {
		t.Fatalf("len = %d, want 1", len(rects))
	}
	if want := image.Rect(35, 15, 65, 45); rects[0] != want {
		t.Errorf("rect = %v, want %v", rects[0], want)
	}
}

func TestEmbedRange(t *testing.T) {
	emb := embedAll(t, solid(255))[0]
	if len(emb) != EmbeddingSide*EmbeddingSide {
		t.Fatalf("len = %d", len(emb))
	}
	for i, v := range emb {
		if v < 0.99 || v > 1 {
			t.Fatalf("emb[%d] = %v, want ~1", i, v)
		}
	}
}

func TestClassifierPredict(t *testing.T) {
	c, err := Train(map[string][][]float32{
		"S001": embedAll(t, solid(10), solid(20)),
		"S002": embedAll(t, solid(240), solid(250)),
		"S003": nil,
	})
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	if len(c.Labels) != 2 {
		t.Fatalf("labels = %v, want 2 entries", c.Labels)
	}

	tests := []struct {
		name    string
		img     image.Image
		label   string
		atLeast float64
		below   float64
	}{
		{"dark face", solid(15), "S001", 0.9, 1.01},
		{"bright face", solid(245), "S002", 0.9, 1.01},
		{"unfamiliar face", solid(128), "", 0, 0.5},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := c.Predict(embedAll(t, tt.img)[0])
			if tt.label != "" && got.Label != tt.label {
				t.Errorf("label = %q, want %q", got.Label, tt.label)
			}
			if got.Confidence < tt.atLeast || got.Confidence >= tt.below {
				t.Errorf("confidence = %v, want in [%v, %v)", got.Confidence, tt.atLeast, tt.below)
			}
		})
	}
}

func TestTrainNoSamples(t *testing.T) {
	if _, err := Train(map[string][][]float32{"S001": nil}); !errors.Is(err, ErrNoSamples) {
		t.Errorf("Train() error = %v, want ErrNoSamples", err)
	}
}

func TestEngineInstallAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.msgpack")
	e := NewEngine(CenterDetector{Fraction: 0.6}, path, zap.NewNop())

	if err := e.Load(); err != nil {
		t.Fatalf("Load() on missing artifact error = %v", err)
	}
	if _, err := e.Recognize(context.Background(), solid(10)); !errors.Is(err, ErrNotTrained) {
		t.Fatalf("Recognize() error = %v, want ErrNotTrained", err)
	}

	c, err := Train(map[string][][]float32{"S001": embedAll(t, solid(10))})
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}
	if err := e.Install(c); err != nil {
		t.Fatalf("Install() error = %v", err)
	}

	reloaded := NewEngine(CenterDetector{Fraction: 0.6}, path, zap.NewNop())
	if err := reloaded.Load(); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	cands, err := reloaded.Recognize(context.Background(), solid(10))
	if err != nil {
		t.Fatalf("Recognize() error = %v", err)
	}
	if len(cands) != 1 || cands[0].Label != "S001" || cands[0].Confidence < 0.9 {
		t.Errorf("candidates = %+v", cands)
	}
}

func TestEmbedFaceNoDetection(t *testing.T) {
	e := NewEngine(CenterDetector{Fraction: 0.6}, "", zap.NewNop())
	if _, ok := e.EmbedFace(image.NewGray(image.Rect(0, 0, 0, 0))); ok {
		t.Error("EmbedFace() found a face in an empty image")
	}
}
