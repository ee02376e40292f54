package enrollment

import (
	"errors"
	"fmt"
	"image"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/disintegration/imaging"
	"github.com/google/uuid"
)

var (
	ErrFaceNotFound = errors.New("face image not found")
	ErrInvalidName  = errors.New("invalid file name")
)

var imageExts = map[string]bool{".jpg": true, ".jpeg": true, ".png": true}

// Store keeps each person's enrollment images under <root>/<user_id>/.
type Store struct {
	root string
}

func NewStore(root string) *Store {
	return &Store{root: root}
}

func (s *Store) Root() string {
	return s.root
}

func (s *Store) dir(id string) string {
	return filepath.Join(s.root, id)
}

// Save writes img as a JPEG and returns the file name.
func (s *Store) Save(id string, img image.Image) (string, error) {
	dir := s.dir(id)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	name := fmt.Sprintf("%d_%s.jpg", time.Now().UnixMilli(), uuid.NewString()[:8])
	if err := imaging.Save(img, filepath.Join(dir, name), imaging.JPEGQuality(90)); err != nil {
		return "", err
	}
	return name, nil
}

// SaveUpload decodes an uploaded image and stores it re-encoded as JPEG.
func (s *Store) SaveUpload(id string, r io.Reader) (string, error) {
	img, err := imaging.Decode(r, imaging.AutoOrientation(true))
	if err != nil {
		return "", fmt.Errorf("decode upload: %w", err)
	}
	return s.Save(id, img)
}

// Labels lists every person with an image directory.
func (s *Store) Labels() ([]string, error) {
	entries, err := os.ReadDir(s.root)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var labels []string
	for _, e := range entries {
		if e.IsDir() {
			labels = append(labels, e.Name())
		}
	}
	return labels, nil
}

// Faces lists the image file names stored for id, sorted.
func (s *Store) Faces(id string) ([]string, error) {
	entries, err := os.ReadDir(s.dir(id))
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, err
	}
	names := []string{}
	for _, e := range entries {
		if !e.IsDir() && imageExts[strings.ToLower(filepath.Ext(e.Name()))] {
			names = append(names, e.Name())
		}
	}
	sort.Strings(names)
	return names, nil
}

// FacePath resolves a stored image, rejecting names that escape the person's
// directory.
func (s *Store) FacePath(id, name string) (string, error) {
	if name == "" || filepath.Base(name) != name || strings.HasPrefix(name, ".") {
		return "", ErrInvalidName
	}
	p := filepath.Join(s.dir(id), name)
	if _, err := os.Stat(p); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", ErrFaceNotFound
		}
		return "", err
	}
	return p, nil
}

func (s *Store) Load(id, name string) (image.Image, error) {
	p, err := s.FacePath(id, name)
	if err != nil {
		return nil, err
	}
	return imaging.Open(p)
}

func (s *Store) RemoveFace(id, name string) error {
	p, err := s.FacePath(id, name)
	if err != nil {
		return err
	}
	return os.Remove(p)
}

// Remove deletes all images of id.
func (s *Store) Remove(id string) error {
	return os.RemoveAll(s.dir(id))
}
