package recognition

import (
	"errors"
	"math"
	"sort"
	"time"
)

const minSigma = 0.05

var ErrNoSamples = errors.New("no training samples")

// Candidate is one identity guess for a face.
type Candidate struct {
	Label      string
	Confidence float64
}

// Classifier is a nearest-centroid model over face embeddings. Confidence is a
// Gaussian kernel on the distance to the nearest centroid, discounted by how
// close the other centroids are.
type Classifier struct {
	Version   int         `msgpack:"version"`
	Side      int         `msgpack:"side"`
	Sigma     float64     `msgpack:"sigma"`
	Labels    []string    `msgpack:"labels"`
	Centroids [][]float32 `msgpack:"centroids"`
	Samples   []int       `msgpack:"samples"`
	TrainedAt time.Time   `msgpack:"trained_at"`
}

// Train fits a classifier. Labels with no samples are skipped.
func Train(samples map[string][][]float32) (*Classifier, error) {
	labels := make([]string, 0, len(samples))
	for label, embs := range samples {
		if len(embs) > 0 {
			labels = append(labels, label)
		}
	}
	if len(labels) == 0 {
		return nil, ErrNoSamples
	}
	sort.Strings(labels)

	c := &Classifier{
		Version:   1,
		Side:      EmbeddingSide,
		Labels:    labels,
		Centroids: make([][]float32, len(labels)),
		Samples:   make([]int, len(labels)),
		TrainedAt: time.Now().UTC(),
	}

	var spread float64
	var n int
	for i, label := range labels {
		embs := samples[label]
		centroid := make([]float32, len(embs[0]))
		for _, e := range embs {
			for j := range centroid {
				centroid[j] += e[j]
			}
		}
		for j := range centroid {
			centroid[j] /= float32(len(embs))
		}
		c.Centroids[i] = centroid
		c.Samples[i] = len(embs)

		for _, e := range embs {
			spread += rmsDistance(e, centroid)
			n++
		}
	}
	c.Sigma = math.Max(spread/float64(n), minSigma)
	return c, nil
}

// Predict returns the best label for emb.
func (c *Classifier) Predict(emb []float32) Candidate {
	best := -1
	var bestK, sumK float64
	for i, centroid := range c.Centroids {
		d := rmsDistance(emb, centroid)
		k := math.Exp(-(d * d) / (2 * c.Sigma * c.Sigma))
		sumK += k
		if best < 0 || k > bestK {
			best, bestK = i, k
		}
	}
	if best < 0 || sumK == 0 {
		return Candidate{}
	}
	return Candidate{Label: c.Labels[best], Confidence: bestK * bestK / sumK}
}

func rmsDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return math.Inf(1)
	}
	var sum float64
	for i := range a {
		d := float64(a[i] - b[i])
		sum += d * d
	}
	return math.Sqrt(sum / float64(len(a)))
}
