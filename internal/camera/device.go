package camera

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

// Device is the single owner-tracking wrapper around a Source. Only one
// Handle exists at a time.
type Device struct {
	source Source
	live   *Live
	logger *zap.Logger

	mu    sync.Mutex
	owner string
	seq   atomic.Uint64
}

func NewDevice(source Source, live *Live, logger *zap.Logger) *Device {
	return &Device{source: source, live: live, logger: logger}
}

func (d *Device) Live() *Live {
	return d.live
}

// Owner reports who holds the device, or "" when free.
func (d *Device) Owner() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.owner
}

// Reset clears locks left by a previous crash. It is safe to call while the
// device is free.
func (d *Device) Reset(ctx context.Context) error {
	cleaner, ok := d.source.(StaleCleaner)
	if !ok {
		return nil
	}
	return cleaner.CleanStale(ctx)
}

// Acquire opens the source for owner. A failed open is retried once after
// clearing stale processes.
func (d *Device) Acquire(ctx context.Context, owner string) (*Handle, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.owner != "" {
		return nil, fmt.Errorf("%w by %s", ErrDeviceBusy, d.owner)
	}

	if err := d.source.Open(ctx); err != nil {
		d.logger.Warn("camera open failed, clearing stale handles", zap.String("owner", owner), zap.Error(err))
		if rerr := d.Reset(ctx); rerr != nil {
			d.logger.Error("camera reset failed", zap.Error(rerr))
		}
		if err := d.source.Open(ctx); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
		}
	}

	d.owner = owner
	d.live.setActive(true)
	d.logger.Debug("camera acquired", zap.String("owner", owner))
	return &Handle{device: d, owner: owner}, nil
}

func (d *Device) release(owner string) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.owner != owner {
		return
	}
	d.releaseLocked()
	d.logger.Debug("camera released", zap.String("owner", owner))
}

// Revoke takes the device away from owner, for a holder that is stuck and
// will not release in time. The revoked Handle fails further reads and its
// Release becomes a no-op. It reports whether owner held the device.
func (d *Device) Revoke(owner string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.owner == "" || d.owner != owner {
		return false
	}
	d.releaseLocked()
	d.logger.Warn("camera revoked", zap.String("owner", owner))
	return true
}

func (d *Device) releaseLocked() {
	if err := d.source.Close(); err != nil {
		d.logger.Warn("camera close failed", zap.String("owner", d.owner), zap.Error(err))
	}
	d.owner = ""
	d.live.setActive(false)
}

// Handle is scoped ownership of the Device. Release must be called on every
// exit path; extra calls are no-ops.
type Handle struct {
	device *Device
	owner  string
	once   sync.Once
}

// Next reads a frame and publishes it to the live view. A read failure is
// retried once after clearing stale processes.
func (h *Handle) Next(ctx context.Context) (*Frame, error) {
	d := h.device
	if d.Owner() != h.owner {
		return nil, fmt.Errorf("%w: %s no longer owns the camera", ErrDeviceUnavailable, h.owner)
	}
	img, err := d.source.Next(ctx)
	if err != nil && ctx.Err() == nil {
		d.logger.Warn("camera read failed, retrying", zap.String("owner", h.owner), zap.Error(err))
		if rerr := d.Reset(ctx); rerr != nil {
			d.logger.Error("camera reset failed", zap.Error(rerr))
		}
		img, err = d.source.Next(ctx)
	}
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrDeviceUnavailable, err)
	}

	b := img.Bounds()
	f := &Frame{
		Seq:       d.seq.Add(1),
		Timestamp: time.Now(),
		Width:     b.Dx(),
		Height:    b.Dy(),
		Image:     img,
	}
	d.live.publish(f)
	return f, nil
}

func (h *Handle) Release() {
	h.once.Do(func() {
		h.device.release(h.owner)
	})
}
