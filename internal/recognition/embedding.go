package recognition

import (
	"image"

	"github.com/disintegration/imaging"
)

// EmbeddingSide is the edge length of the grayscale patch a face is reduced to.
const EmbeddingSide = 32

// Detector finds face regions in an image.
type Detector interface {
	Detect(img image.Image) []image.Rectangle
}

// CenterDetector assumes the subject is framed in the middle of the image,
// which is how the appliance's alignment phase positions them. It reports a
// square covering Fraction of the shorter side.
type CenterDetector struct {
	Fraction float64
}

func (d CenterDetector) Detect(img image.Image) []image.Rectangle {
	b := img.Bounds()
	frac := d.Fraction
	if frac <= 0 || frac > 1 {
		frac = 1
	}
	side := int(float64(min(b.Dx(), b.Dy())) * frac)
	if side <= 0 {
		return nil
	}
	x0 := b.Min.X + (b.Dx()-side)/2
	y0 := b.Min.Y + (b.Dy()-side)/2
	return []image.Rectangle{image.Rect(x0, y0, x0+side, y0+side)}
}

// Embed reduces the face inside rect to a normalised grayscale vector of
// EmbeddingSide*EmbeddingSide values in [0,1].
func Embed(img image.Image, rect image.Rectangle) []float32 {
	rect = rect.Intersect(img.Bounds())
	if rect.Empty() {
		return nil
	}
	face := imaging.Crop(img, rect)
	face = imaging.Grayscale(face)
	face = imaging.Resize(face, EmbeddingSide, EmbeddingSide, imaging.Box)

	out := make([]float32, 0, EmbeddingSide*EmbeddingSide)
	for y := 0; y < EmbeddingSide; y++ {
		row := face.Pix[y*face.Stride:]
		for x := 0; x < EmbeddingSide; x++ {
			out = append(out, float32(row[x*4])/255)
		}
	}
	return out
}
