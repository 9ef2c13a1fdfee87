// Package receipts stores uploaded receipt files and renders their previews.
package receipts

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// ErrInvalidKey is returned for keys that were not produced by Save.
var ErrInvalidKey = errors.New("invalid receipt key")

// ErrNotFound is returned when no receipt is stored under a key.
var ErrNotFound = errors.New("receipt not found")

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".png":  "image/png",
}

// Storage keeps receipts as files in a single directory.
type Storage struct {
	dir string
}

// NewStorage creates the directory if needed and returns a Storage rooted there.
func NewStorage(dir string) (*Storage, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create receipts dir: %w", err)
	}
	return &Storage{dir: dir}, nil
}

// Save writes data under a fresh key derived from the original file name.
func (s *Storage) Save(ctx context.Context, name string, data []byte) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	ext := Ext(name)
	if _, ok := contentTypes[ext]; !ok {
		return "", fmt.Errorf("%w: unsupported extension %q", ErrInvalidKey, ext)
	}

	key := uuid.NewString() + ext
	if err := os.WriteFile(filepath.Join(s.dir, key), data, 0o640); err != nil {
		return "", fmt.Errorf("failed to write receipt: %w", err)
	}
	return key, nil
}

// Read returns the content stored under key.
func (s *Storage) Read(key string) ([]byte, error) {
	if err := ValidateKey(key); err != nil {
		return nil, err
	}
	data, err := os.ReadFile(filepath.Join(s.dir, key))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read receipt: %w", err)
	}
	return data, nil
}

// Delete removes the receipt stored under key. A missing receipt is not an error.
func (s *Storage) Delete(key string) error {
	if err := ValidateKey(key); err != nil {
		return err
	}
	err := os.Remove(filepath.Join(s.dir, key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed to delete receipt: %w", err)
	}
	return nil
}

// Ext returns the lower-case extension of a file name, ignoring surrounding spaces.
func Ext(name string) string {
	return strings.ToLower(filepath.Ext(strings.TrimSpace(name)))
}

// ValidateKey checks that key has the "<uuid><ext>" shape produced by Save.
func ValidateKey(key string) error {
	ext := filepath.Ext(key)
	if _, ok := contentTypes[ext]; !ok {
		return ErrInvalidKey
	}
	if _, err := uuid.Parse(strings.TrimSuffix(key, ext)); err != nil {
		return ErrInvalidKey
	}
	return nil
}

// ContentType returns the MIME type matching the key's extension.
func ContentType(key string) string {
	if ct, ok := contentTypes[Ext(key)]; ok {
		return ct
	}
	return "application/octet-stream"
}
