package recognition

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// SaveArtifact writes c to path through a temporary file and a rename, so a
// reader never observes a partially written model.
func SaveArtifact(path string, c *Classifier) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	tmp, err := os.CreateTemp(dir, ".model-*.tmp")
	if err != nil {
		return err
	}
	defer os.Remove(tmp.Name())

	if err := msgpack.NewEncoder(tmp).Encode(c); err != nil {
		tmp.Close()
		return fmt.Errorf("encode model: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmp.Name(), path)
}

func LoadArtifact(path string) (*Classifier, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var c Classifier
	if err := msgpack.NewDecoder(f).Decode(&c); err != nil {
		return nil, fmt.Errorf("decode model: %w", err)
	}
	if c.Side != EmbeddingSide || len(c.Labels) != len(c.Centroids) {
		return nil, fmt.Errorf("incompatible model artifact %s", path)
	}
	return &c, nil
}
