// Package upload stores product images on local disk under unique names.
package upload

import (
	"errors"
	"io"
	"log"
	"mime/multipart"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var (
	ErrUnsupportedType = errors.New("unsupported image type")
	ErrTooLarge        = errors.New("file too large")
)

var allowedTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
}

var extPattern = regexp.MustCompile(`(?i)\.(jpg|jpeg|png|gif)$`)

var unsafeChars = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

type Store struct {
	dir      string
	maxBytes int64
}

func NewStore(dir string, maxBytes int64) *Store {
	return &Store{dir: dir, maxBytes: maxBytes}
}

// Save validates the upload and writes it under a collision-free name.
// The returned name is what gets persisted on the product row.
func (s *Store) Save(file *multipart.FileHeader) (string, error) {
	if s.maxBytes > 0 && file.Size > s.maxBytes {
		return "", ErrTooLarge
	}
	contentType := file.Header.Get("Content-Type")
	if _, ok := allowedTypes[contentType]; !ok {
		return "", ErrUnsupportedType
	}
	if !extPattern.MatchString(file.Filename) {
		return "", ErrUnsupportedType
	}

	if err := os.MkdirAll(s.dir, 0755); err != nil {
		return "", err
	}

	name := uuid.NewString() + "-" + sanitize(file.Filename)
	src, err := file.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	dst, err := os.Create(filepath.Join(s.dir, name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}

	return name, nil
}

// Remove deletes a stored image. Failures are logged, not returned; a
// stale file on disk must never fail the request that replaced it.
func (s *Store) Remove(name string) {
	if name == "" {
		return
	}
	// names are generated by Save; anything with a path separator is not ours
	if strings.ContainsAny(name, "/\\") {
		log.Printf("upload: refusing to remove suspicious name %q", name)
		return
	}
	if err := os.Remove(filepath.Join(s.dir, name)); err != nil && !os.IsNotExist(err) {
		log.Printf("upload: could not remove %s: %v", name, err)
	}
}

// Dir returns the directory images are written to, for static serving.
func (s *Store) Dir() string {
	return s.dir
}

func sanitize(filename string) string {
	base := filepath.Base(filename)
	return unsafeChars.ReplaceAllString(base, "_")
}
