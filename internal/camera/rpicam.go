package camera

import (
	"context"
	"errors"
	"fmt"
	"image"
	"os/exec"
	"strconv"
	"time"

	"go.uber.org/zap"
)

// runner executes a command and returns its stdout.
type runner func(ctx context.Context, name string, args ...string) ([]byte, error)

func execRunner(ctx context.Context, name string, args ...string) ([]byte, error) {
	return exec.CommandContext(ctx, name, args...).Output()
}

// RpicamSource grabs single YUV420 frames by running rpicam-vid once per
// frame. Keeping no long-lived process avoids the libcamera hangs a streaming
// pipeline runs into on the Pi.
type RpicamSource struct {
	command string
	index   int
	width   int
	height  int
	timeout time.Duration
	run     runner
	logger  *zap.Logger
}

func NewRpicamSource(command string, index, width, height int, timeout time.Duration, logger *zap.Logger) *RpicamSource {
	return &RpicamSource{
		command: command,
		index:   index,
		width:   width,
		height:  height,
		timeout: timeout,
		run:     execRunner,
		logger:  logger,
	}
}

func (s *RpicamSource) Open(ctx context.Context) error {
	if s.width%2 != 0 || s.height%2 != 0 {
		return fmt.Errorf("yuv420 needs even dimensions, got %dx%d", s.width, s.height)
	}
	if _, err := exec.LookPath(s.command); err != nil {
		return err
	}
	// read one real frame so a locked device fails here, not mid-session
	_, err := s.Next(ctx)
	return err
}

func (s *RpicamSource) Next(ctx context.Context) (image.Image, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	out, err := s.run(ctx, s.command,
		"--nopreview",
		"--camera", strconv.Itoa(s.index),
		"--width", strconv.Itoa(s.width),
		"--height", strconv.Itoa(s.height),
		"--frames", "1",
		"--timeout", "250",
		"--codec", "yuv420",
		"-o", "-",
	)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.command, err)
	}
	return decodeYUV420(out, s.width, s.height)
}

func (s *RpicamSource) Close() error {
	return nil
}

// stillCommand shares the camera lock with the video tool and is killed too.
const stillCommand = "rpicam-still"

// CleanStale kills leftover capture processes holding the camera.
func (s *RpicamSource) CleanStale(ctx context.Context) error {
	targets := []string{s.command}
	if s.command != stillCommand {
		targets = append(targets, stillCommand)
	}
	for _, name := range targets {
		_, err := s.run(ctx, "pkill", "-9", name)
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == 1 {
			// nothing matched
			continue
		}
		if err != nil {
			return fmt.Errorf("pkill %s: %w", name, err)
		}
		s.logger.Warn("killed stale camera processes", zap.String("command", name))
	}
	return nil
}

// decodeYUV420 wraps planar I420 bytes as an image without converting.
func decodeYUV420(raw []byte, width, height int) (*image.YCbCr, error) {
	ySize := width * height
	cSize := (width / 2) * (height / 2)
	if len(raw) < ySize+2*cSize {
		return nil, fmt.Errorf("short yuv420 frame: got %d bytes, want %d", len(raw), ySize+2*cSize)
	}
	img := image.NewYCbCr(image.Rect(0, 0, width, height), image.YCbCrSubsampleRatio420)
	copy(img.Y, raw[:ySize])
	copy(img.Cb, raw[ySize:ySize+cSize])
	copy(img.Cr, raw[ySize+cSize:ySize+2*cSize])
	return img, nil
}
