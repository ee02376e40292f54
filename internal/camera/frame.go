package camera

import (
	"context"
	"errors"
	"image"
	"time"
)

var (
	// ErrDeviceUnavailable means the camera could not be opened or read, even
	// after clearing stale processes.
	ErrDeviceUnavailable = errors.New("camera device unavailable")
	ErrDeviceBusy        = errors.New("camera device already owned")
)

// Frame is one decoded camera image.
type Frame struct {
	Seq       uint64
	Timestamp time.Time
	Width     int
	Height    int
	Image     image.Image
}

// Source is a pull-based camera.
type Source interface {
	Open(ctx context.Context) error
	Next(ctx context.Context) (image.Image, error)
	Close() error
}

// StaleCleaner is implemented by sources that can leave a locked device
// behind after an ungraceful shutdown.
type StaleCleaner interface {
	CleanStale(ctx context.Context) error
}
