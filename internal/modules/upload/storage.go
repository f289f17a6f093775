// Package upload stores product images on the local disk.
package upload

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/georgemunganga/orderdesk/internal/apperr"
)

// MaxImageSize is the largest accepted upload.
const MaxImageSize = 5 << 20

var imageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/jpg":  ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// Storage saves and removes uploaded images.
type Storage interface {
	// Save writes an image and returns the generated file name.
	Save(originalName, contentType string, r io.Reader) (string, error)
	Delete(filename string) error
}

type diskStorage struct {
	dir string
}

// NewDiskStorage creates dir if needed and stores files in it.
func NewDiskStorage(dir string) (Storage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrapf(err, "create upload directory %s", dir)
	}
	return &diskStorage{dir: dir}, nil
}

func (s *diskStorage) Save(originalName, contentType string, r io.Reader) (string, error) {
	defaultExt, ok := imageTypes[strings.ToLower(contentType)]
	if !ok {
		return "", apperr.InvalidInput("Only image files are allowed (JPEG, PNG, GIF, WebP)")
	}
	ext := strings.ToLower(filepath.Ext(originalName))
	// The extension follows the content type; ".jpeg" is kept as the one alias.
	if ext != ".jpeg" || defaultExt != ".jpg" {
		ext = defaultExt
	}
	name := uuid.NewString() + ext

	f, err := os.OpenFile(filepath.Join(s.dir, name), os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", errors.Wrap(err, "create image file")
	}
	n, err := io.Copy(f, io.LimitReader(r, MaxImageSize+1))
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err == nil && n > MaxImageSize {
		err = apperr.InvalidInput("Image must be at most 5 MB")
	}
	if err != nil {
		os.Remove(filepath.Join(s.dir, name))
		if apperr.KindOf(err) == apperr.KindInternal {
			err = errors.Wrap(err, "write image file")
		}
		return "", err
	}

	log.WithFields(log.Fields{"filename": name, "bytes": n}).Info("Image uploaded")
	return name, nil
}

func (s *diskStorage) Delete(filename string) error {
	// Only the base name is honoured so callers cannot leave the upload directory.
	base := filepath.Base(filename)
	if base == "." || base == string(filepath.Separator) || base == ".." {
		return apperr.InvalidInput("No filename provided")
	}
	err := os.Remove(filepath.Join(s.dir, base))
	if os.IsNotExist(err) {
		return apperr.NotFound("Image not found")
	}
	if err != nil {
		return errors.Wrap(err, "delete image file")
	}
	log.WithField("filename", base).Info("Image deleted")
	return nil
}
