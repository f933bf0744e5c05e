// Package storage uploads product images to an object store.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"strings"

	"github.com/gabriel-vasile/mimetype"
	"github.com/google/uuid"

	"github.com/princinho/storefront/config"
)

var ErrUnsupportedImage = errors.New("file type not allowed (allowed: jpeg, png, webp, gif)")

var allowedImageTypes = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/webp": ".webp",
	"image/gif":  ".gif",
}

// Object is a stored file. Name is the key used to delete it later.
type Object struct {
	URL  string
	Name string
}

type ImageStore interface {
	Upload(ctx context.Context, folder string, fh *multipart.FileHeader) (Object, error)
	Delete(ctx context.Context, name string) error
}

// New builds the store selected by cfg.Backend. It returns nil for "none".
func New(ctx context.Context, cfg config.Storage) (ImageStore, error) {
	maxBytes := int64(cfg.MaxUploadMB) << 20
	switch cfg.Backend {
	case "", "none":
		return nil, nil
	case "r2":
		s, err := NewR2(ctx, cfg.R2, maxBytes)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "gcs":
		s, err := NewGCS(ctx, cfg.GCS, maxBytes)
		if err != nil {
			return nil, err
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown image storage backend %q", cfg.Backend)
	}
}

// Image is an upload that passed validation. Its content type comes from
// the file's bytes, not from the client's header.
type Image struct {
	File        multipart.File
	ContentType string
	Ext         string
	Size        int64
}

// OpenImage opens fh and checks its size and sniffed content type. The
// caller closes Image.File.
func OpenImage(fh *multipart.FileHeader, maxBytes int64) (*Image, error) {
	if fh == nil {
		return nil, errors.New("missing file")
	}
	if maxBytes > 0 && fh.Size > maxBytes {
		return nil, fmt.Errorf("file %s exceeds %d bytes", fh.Filename, maxBytes)
	}

	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	mt, err := mimetype.DetectReader(f)
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("detect content type: %w", err)
	}
	ct := strings.Split(mt.String(), ";")[0]
	ext, ok := allowedImageTypes[ct]
	if !ok {
		_ = f.Close()
		return nil, ErrUnsupportedImage
	}
	if _, err := f.Seek(0, io.SeekStart); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("rewind file: %w", err)
	}

	return &Image{File: f, ContentType: ct, Ext: ext, Size: fh.Size}, nil
}

func objectName(folder, ext string) string {
	folder = strings.Trim(folder, "/")
	if folder == "" {
		folder = "products"
	}
	return fmt.Sprintf("%s/%s%s", folder, uuid.NewString(), ext)
}
