package storage

import (
	"context"
	"fmt"
	"io"
	"mime/multipart"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"github.com/princinho/storefront/config"
)

// GCSStore stores objects in a Google Cloud Storage bucket.
type GCSStore struct {
	client   *storage.Client
	bucket   string
	maxBytes int64
}

func NewGCS(ctx context.Context, cfg config.GCS, maxBytes int64) (*GCSStore, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("missing GCS_BUCKET")
	}

	var opts []option.ClientOption
	if cfg.CredentialsFile != "" {
		opts = append(opts, option.WithAuthCredentialsFile(option.ServiceAccount, cfg.CredentialsFile))
	}
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("gcs client: %w", err)
	}

	return &GCSStore{client: client, bucket: cfg.Bucket, maxBytes: maxBytes}, nil
}

func (s *GCSStore) Upload(ctx context.Context, folder string, fh *multipart.FileHeader) (Object, error) {
	img, err := OpenImage(fh, s.maxBytes)
	if err != nil {
		return Object{}, err
	}
	defer img.File.Close()

	name := objectName(folder, img.Ext)
	w := s.client.Bucket(s.bucket).Object(name).NewWriter(ctx)
	w.ContentType = img.ContentType

	if _, err := io.Copy(w, img.File); err != nil {
		_ = w.Close()
		return Object{}, fmt.Errorf("upload copy: %w", err)
	}
	if err := w.Close(); err != nil {
		return Object{}, fmt.Errorf("upload close: %w", err)
	}

	return Object{URL: gcsPublicURL(s.bucket, name), Name: name}, nil
}

func (s *GCSStore) Delete(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}
	if err := s.client.Bucket(s.bucket).Object(name).Delete(ctx); err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

func (s *GCSStore) Close() error {
	return s.client.Close()
}

func gcsPublicURL(bucket, name string) string {
	return fmt.Sprintf("https://storage.googleapis.com/%s/%s", bucket, name)
}
