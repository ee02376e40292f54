package camera

import (
	"context"
	"image"
	"image/color"
	"sync"
)

// SyntheticSource replays a fixed set of images in a loop, or a moving
// gradient when none are given. It stands in for the camera module on
// development machines.
type SyntheticSource struct {
	width  int
	height int
	images []image.Image

	mu   sync.Mutex
	seq  int
	open bool
}

func NewSyntheticSource(width, height int, images ...image.Image) *SyntheticSource {
	return &SyntheticSource{width: width, height: height, images: images}
}

func (s *SyntheticSource) Open(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = true
	return nil
}

func (s *SyntheticSource) Next(ctx context.Context) (image.Image, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s.mu.Lock()
	seq := s.seq
	s.seq++
	s.mu.Unlock()

	if len(s.images) > 0 {
		return s.images[seq%len(s.images)], nil
	}
	img := image.NewGray(image.Rect(0, 0, s.width, s.height))
	for y := 0; y < s.height; y++ {
		for x := 0; x < s.width; x++ {
			img.SetGray(x, y, color.Gray{Y: uint8(x + y + seq)})
		}
	}
	return img, nil
}

func (s *SyntheticSource) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.open = false
	return nil
}
