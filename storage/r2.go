package storage

import (
	"context"
	"fmt"
	"mime/multipart"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/princinho/storefront/config"
)

// R2Store stores objects in a Cloudflare R2 bucket through its S3 API.
type R2Store struct {
	client       *s3.Client
	bucket       string
	publicDomain string
	maxBytes     int64
}

func NewR2(ctx context.Context, cfg config.R2, maxBytes int64) (*R2Store, error) {
	if cfg.Bucket == "" || cfg.AccessKeyID == "" || cfg.SecretKey == "" || cfg.Endpoint == "" {
		return nil, fmt.Errorf("missing R2 env vars (R2_BUCKET, R2_ACCESS_KEY_ID, R2_SECRET_ACCESS_KEY, R2_ENDPOINT)")
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretKey, ""),
		),
		awsconfig.WithRegion("auto"),
	)
	if err != nil {
		return nil, fmt.Errorf("r2 config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(cfg.Endpoint)
		o.UsePathStyle = true // required for R2
	})

	return &R2Store{
		client:       client,
		bucket:       cfg.Bucket,
		publicDomain: strings.TrimRight(cfg.PublicDomain, "/"),
		maxBytes:     maxBytes,
	}, nil
}

func (s *R2Store) Upload(ctx context.Context, folder string, fh *multipart.FileHeader) (Object, error) {
	img, err := OpenImage(fh, s.maxBytes)
	if err != nil {
		return Object{}, err
	}
	defer img.File.Close()

	name := objectName(folder, img.Ext)
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(name),
		Body:          img.File,
		ContentType:   aws.String(img.ContentType),
		ContentLength: aws.Int64(img.Size),
	})
	if err != nil {
		return Object{}, fmt.Errorf("upload %s: %w", fh.Filename, err)
	}

	return Object{URL: s.publicURL(name), Name: name}, nil
}

func (s *R2Store) Delete(ctx context.Context, name string) error {
	if name == "" {
		return nil
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(name),
	})
	if err != nil {
		return fmt.Errorf("delete %s: %w", name, err)
	}
	return nil
}

// publicURL joins the bucket's public domain (custom domain or r2.dev URL)
// with the object key.
func (s *R2Store) publicURL(name string) string {
	return fmt.Sprintf("%s/%s/%s", s.publicDomain, s.bucket, name)
}
