package blob

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"
)

// S3Store keeps blobs in a single S3 bucket, one object per blob id.
type S3Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	logger  *slog.Logger
}

var _ Store = (*S3Store)(nil)

// NewS3Store builds a store from the ambient AWS credential chain.
func NewS3Store(ctx context.Context, bucket, region string, logger *slog.Logger) (*S3Store, error) {
	cfg, err := awsconfig.LoadDefaultConfig(ctx, awsconfig.WithRegion(region))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}
	client := s3.NewFromConfig(cfg)
	return NewS3StoreWithClient(client, bucket, logger), nil
}

// NewS3StoreWithClient wraps an existing S3 client. Used by tests and by
// callers that customise the client (custom endpoint, path-style).
func NewS3StoreWithClient(client *s3.Client, bucket string, logger *slog.Logger) *S3Store {
	if logger == nil {
		logger = slog.Default()
	}
	return &S3Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  bucket,
		logger:  logger,
	}
}

func (s *S3Store) Put(ctx context.Context, contentType string, data []byte) (string, error) {
	id := uuid.NewString()
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(id),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("put object %q: %w", id, err)
	}
	s.logger.Debug("stored blob", "id", id, "bytes", len(data), "content_type", contentType)
	return id, nil
}

func (s *S3Store) SignedURL(ctx context.Context, id string, ttl time.Duration) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(id),
	}, s3.WithPresignExpires(ttl))
	if err != nil {
		return "", fmt.Errorf("presign object %q: %w", id, err)
	}
	return req.URL, nil
}
