package camera

import (
	"context"
	"errors"
	"image"
	"sync"
	"testing"
	"time"

	"go.uber.org/zap"
)

// fakeSource fails the first openFails opens unless CleanStale ran.
type fakeSource struct {
	mu        sync.Mutex
	openFails int
	cleaned   int
	opens     int
	closes    int
	readErr   error
}

func (f *fakeSource) Open(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opens++
	if f.openFails > 0 {
		f.openFails--
		return errors.New("device locked")
	}
	return nil
}

func (f *fakeSource) Next(ctx context.Context) (image.Image, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.readErr != nil {
		return nil, f.readErr
	}
	return image.NewGray(image.Rect(0, 0, 4, 4)), nil
}

func (f *fakeSource) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closes++
	return nil
}

func (f *fakeSource) CleanStale(ctx context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleaned++
	return nil
}

func TestAcquireSelfHealsAfterStaleLock(t *testing.T) {
	src := &fakeSource{openFails: 1}
	d := NewDevice(src, NewLive(), zap.NewNop())

	h, err := d.Acquire(context.Background(), "session")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer h.Release()

	if src.cleaned != 1 {
		t.Errorf("CleanStale calls = %d, want 1", src.cleaned)
	}
	if src.opens != 2 {
		t.Errorf("Open calls = %d, want 2", src.opens)
	}
	if d.Owner() != "session" {
		t.Errorf("Owner() = %q, want session", d.Owner())
	}
}

func TestAcquireUnavailable(t *testing.T) {
	d := NewDevice(&fakeSource{openFails: 2}, NewLive(), zap.NewNop())
	_, err := d.Acquire(context.Background(), "session")
	if !errors.Is(err, ErrDeviceUnavailable) {
		t.Fatalf("Acquire() error = %v, want ErrDeviceUnavailable", err)
	}
	if d.Owner() != "" {
		t.Errorf("Owner() = %q after failed acquire", d.Owner())
	}
}

func TestAcquireSingleOwner(t *testing.T) {
	src := &fakeSource{}
	d := NewDevice(src, NewLive(), zap.NewNop())
	h, err := d.Acquire(context.Background(), "enrollment")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	if _, err := d.Acquire(context.Background(), "session"); !errors.Is(err, ErrDeviceBusy) {
		t.Errorf("second Acquire() error = %v, want ErrDeviceBusy", err)
	}

	h.Release()
	h.Release()
	if src.closes != 1 {
		t.Errorf("Close calls = %d, want 1", src.closes)
	}
	h2, err := d.Acquire(context.Background(), "session")
	if err != nil {
		t.Fatalf("Acquire() after release error = %v", err)
	}
	h2.Release()
}

func TestRevokeStuckOwner(t *testing.T) {
	src := &fakeSource{}
	d := NewDevice(src, NewLive(), zap.NewNop())
	stuck, err := d.Acquire(context.Background(), "session:1")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	if d.Revoke("session:2") {
		t.Error("Revoke() of a non-owner reported success")
	}
	if !d.Revoke("session:1") {
		t.Fatal("Revoke() of the owner reported failure")
	}
	if d.Owner() != "" || d.Live().Active() {
		t.Errorf("owner = %q, live active = %v after revoke", d.Owner(), d.Live().Active())
	}

	next, err := d.Acquire(context.Background(), "session:2")
	if err != nil {
		t.Fatalf("Acquire() after revoke error = %v", err)
	}
	if _, err := stuck.Next(context.Background()); !errors.Is(err, ErrDeviceUnavailable) {
		t.Errorf("revoked Next() error = %v, want ErrDeviceUnavailable", err)
	}
	stuck.Release()
	if d.Owner() != "session:2" {
		t.Errorf("revoked Release() freed the new owner: owner = %q", d.Owner())
	}
	if _, err := next.Next(context.Background()); err != nil {
		t.Errorf("new owner Next() error = %v", err)
	}
	next.Release()
}

func TestHandleNextPublishesToLive(t *testing.T) {
	live := NewLive()
	d := NewDevice(&fakeSource{}, live, zap.NewNop())
	h, err := d.Acquire(context.Background(), "session")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	got := make(chan *Frame, 1)
	go func() {
		f, err := live.Next(ctx, 0)
		if err != nil {
			t.Errorf("live.Next() error = %v", err)
		}
		got <- f
	}()

	f, err := h.Next(ctx)
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	if seen := <-got; seen == nil || seen.Seq != f.Seq {
		t.Errorf("live frame = %+v, want seq %d", seen, f.Seq)
	}

	h.Release()
	if _, err := live.Next(ctx, f.Seq); !errors.Is(err, ErrIdle) {
		t.Errorf("live.Next() after release error = %v, want ErrIdle", err)
	}
}

func TestHandleNextReadFailure(t *testing.T) {
	src := &fakeSource{readErr: errors.New("timeout")}
	d := NewDevice(src, NewLive(), zap.NewNop())
	h, err := d.Acquire(context.Background(), "session")
	if err != nil {
		t.Fatalf("Acquire() error = %v", err)
	}
	defer h.Release()

	if _, err := h.Next(context.Background()); !errors.Is(err, ErrDeviceUnavailable) {
		t.Errorf("Next() error = %v, want ErrDeviceUnavailable", err)
	}
	if src.cleaned != 1 {
		t.Errorf("CleanStale calls = %d, want 1", src.cleaned)
	}
}

func TestRpicamSourceDecodesFrame(t *testing.T) {
	const w, h = 4, 2
	raw := make([]byte, w*h*3/2)
	for i := range raw {
		raw[i] = byte(i)
	}
	var args []string
	src := NewRpicamSource("rpicam-vid", 0, w, h, time.Second, zap.NewNop())
	src.run = func(ctx context.Context, name string, a ...string) ([]byte, error) {
		args = a
		return raw, nil
	}

	img, err := src.Next(context.Background())
	if err != nil {
		t.Fatalf("Next() error = %v", err)
	}
	ycc, ok := img.(*image.YCbCr)
	if !ok {
		t.Fatalf("image type = %T, want *image.YCbCr", img)
	}
	if ycc.Bounds().Dx() != w || ycc.Bounds().Dy() != h {
		t.Errorf("bounds = %v", ycc.Bounds())
	}
	if ycc.Y[w*h-1] != byte(w*h-1) || ycc.Cb[0] != byte(w*h) || ycc.Cr[1] != byte(w*h+3) {
		t.Errorf("planes not copied in I420 order")
	}
	if len(args) == 0 || args[len(args)-1] != "-" {
		t.Errorf("args = %v, want stdout output", args)
	}
}

func TestRpicamSourceShortFrame(t *testing.T) {
	src := NewRpicamSource("rpicam-vid", 0, 640, 480, time.Second, zap.NewNop())
	src.run = func(ctx context.Context, name string, a ...string) ([]byte, error) {
		return make([]byte, 100), nil
	}
	if _, err := src.Next(context.Background()); err == nil {
		t.Error("Next() accepted a truncated frame")
	}
}

func TestRpicamCleanStaleKillsBothTools(t *testing.T) {
	var killed []string
	src := NewRpicamSource("rpicam-vid", 0, 640, 480, time.Second, zap.NewNop())
	src.run = func(ctx context.Context, name string, a ...string) ([]byte, error) {
		if name != "pkill" {
			t.Fatalf("unexpected command %q", name)
		}
		killed = append(killed, a[len(a)-1])
		return nil, nil
	}
	if err := src.CleanStale(context.Background()); err != nil {
		t.Fatalf("CleanStale() error = %v", err)
	}
	if len(killed) != 2 || killed[0] != "rpicam-vid" || killed[1] != "rpicam-still" {
		t.Errorf("killed = %v", killed)
	}
}
