// Package origin forwards requests that have already cleared the auth
// middleware to an upstream S3-compatible bucket. It is a pass-through
// client, not the storage layer: no filesystem CRUD, no metadata
// persistence, no bucket/object name validation — those stay out of scope.
package origin

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/rs/zerolog"
)

// Config describes the upstream bucket this gateway fronts.
type Config struct {
	Region          string
	Bucket          string
	Endpoint        string // optional, for S3-compatible non-AWS origins
	AccessKeyID     string
	SecretAccessKey string
	UsePathStyle    bool
}

// Client is a thin wrapper around an aws-sdk-go-v2 S3 client, scoped to one
// origin bucket.
type Client struct {
	s3     *s3.Client
	bucket string
	logger zerolog.Logger
}

// NewClient builds a Client using config.LoadDefaultConfig, overridden with
// static credentials and (optionally) a custom endpoint for S3-compatible
// origins that are not AWS itself.
func NewClient(ctx context.Context, cfg Config, logger zerolog.Logger) (*Client, error) {
	awsCfg, err := config.LoadDefaultConfig(ctx,
		config.WithRegion(cfg.Region),
		config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID, cfg.SecretAccessKey, "",
		)),
	)
	if err != nil {
		return nil, fmt.Errorf("origin: loading aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return &Client{
		s3:     client,
		bucket: cfg.Bucket,
		logger: logger.With().Str("component", "origin").Logger(),
	}, nil
}

// GetObject fetches key from the origin bucket and returns the body stream;
// the caller is responsible for closing it.
func (c *Client) GetObject(ctx context.Context, key string) (io.ReadCloser, string, error) {
	out, err := c.s3.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, "", fmt.Errorf("origin: get object %s: %w", key, err)
	}
	contentType := ""
	if out.ContentType != nil {
		contentType = *out.ContentType
	}
	return out.Body, contentType, nil
}

// PutObject uploads body under key with the given content type.
func (c *Client) PutObject(ctx context.Context, key, contentType string, body io.Reader) error {
	_, err := c.s3.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(c.bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("origin: put object %s: %w", key, err)
	}
	return nil
}

// DeleteObject removes key from the origin bucket.
func (c *Client) DeleteObject(ctx context.Context, key string) error {
	_, err := c.s3.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("origin: delete object %s: %w", key, err)
	}
	return nil
}
