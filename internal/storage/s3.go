// Package storage keeps uploaded images in an S3-compatible bucket.
package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/sakif/creator-lounge/internal/config"
)

// S3Store implements service.ObjectStore.
type S3Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	baseURL string // public prefix objects are served from
	logger  *slog.Logger
}

// NewS3Store builds a client from cfg. A custom Endpoint (MinIO, R2) switches
// to path-style addressing.
func NewS3Store(ctx context.Context, cfg config.S3, logger *slog.Logger) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("storage: S3 bucket is not configured")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKeyID != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, ""),
		))
	}
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: loading aws config: %w", err)
	}

	endpoint := strings.TrimRight(cfg.Endpoint, "/")
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if endpoint != "" {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}
	})

	return &S3Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.Bucket,
		baseURL: publicBase(cfg, endpoint),
		logger:  logger,
	}, nil
}

func publicBase(cfg config.S3, endpoint string) string {
	switch {
	case cfg.CDNURL != "":
		return strings.TrimRight(cfg.CDNURL, "/")
	case endpoint != "":
		return endpoint + "/" + cfg.Bucket
	default:
		return fmt.Sprintf("https://%s.s3.%s.amazonaws.com", cfg.Bucket, cfg.Region)
	}
}

func (s *S3Store) Put(ctx context.Context, key, contentType string, size int64, body io.Reader) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		Body:          body,
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
		CacheControl:  aws.String("public, max-age=31536000, immutable"),
	})
	if err != nil {
		return fmt.Errorf("storage: putting %s: %w", key, err)
	}
	s.logger.Debug("object stored", slog.String("bucket", s.bucket), slog.String("key", key))
	return nil
}

// PresignPut signs a PUT bound to the content type and length, so the
// browser cannot upload something else under the key.
func (s *S3Store) PresignPut(ctx context.Context, key, contentType string, size int64, ttl time.Duration) (string, error) {
	req, err := s.presign.PresignPutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(key),
		ContentType:   aws.String(contentType),
		ContentLength: aws.Int64(size),
	}, func(o *s3.PresignOptions) {
		o.Expires = ttl
	})
	if err != nil {
		return "", fmt.Errorf("storage: presigning %s: %w", key, err)
	}
	return req.URL, nil
}

func (s *S3Store) PublicURL(key string) string {
	return s.baseURL + "/" + (&url.URL{Path: key}).EscapedPath()
}
