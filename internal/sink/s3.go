package sink

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog/log"

	"github.com/bbernstein/tidechart/internal/models"
)

// S3Client defines the interface for S3 operations we need
type S3Client interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

type S3Sink struct {
	client S3Client
	bucket string
	prefix string
}

func NewS3Sink(client S3Client, bucket, prefix string) *S3Sink {
	return &S3Sink{
		client: client,
		bucket: bucket,
		prefix: prefix,
	}
}

// NewS3Client creates an S3 client. A non-empty endpoint selects a local
// S3-compatible server with path-style addressing.
func NewS3Client(ctx context.Context, endpoint string) (*s3.Client, error) {
	if endpoint != "" {
		cfg, err := config.LoadDefaultConfig(ctx,
			config.WithRegion("us-east-1"),
			config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider("local", "local", "")),
		)
		if err != nil {
			return nil, err
		}
		return s3.NewFromConfig(cfg, func(o *s3.Options) {
			o.BaseEndpoint = aws.String(endpoint)
			o.UsePathStyle = true
		}), nil
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, err
	}
	return s3.NewFromConfig(cfg), nil
}

func (s *S3Sink) Write(ctx context.Context, name string, img *models.RenderedImage) error {
	if s.bucket == "" {
		return fmt.Errorf("empty bucket name")
	}
	if img == nil {
		return fmt.Errorf("no image to write for %s", name)
	}

	key := path.Join(s.prefix, name)
	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(img.Data),
		ContentType: aws.String(img.ContentType()),
	}
	if !img.Expires.IsZero() {
		input.Expires = aws.Time(img.Expires)
	}

	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("uploading %s to s3://%s: %w", key, s.bucket, err)
	}

	log.Info().
		Str("bucket", s.bucket).
		Str("key", key).
		Int("bytes", len(img.Data)).
		Msg("Uploaded tide chart")
	return nil
}
