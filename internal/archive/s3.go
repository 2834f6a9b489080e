// Package archive stores rendered reports in S3.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

var tracer = otel.Tracer("github.com/ab0utbla-k/ri-expiration-report/internal/archive")

const contentType = "text/html; charset=utf-8"

// S3API defines required S3 operations.
type S3API interface {
	PutObject(
		ctx context.Context,
		params *s3.PutObjectInput,
		optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// Key returns the monthly object key for a report generated at now, e.g.
// "2026/10/ri_exp.html". Reports of the same month share a key.
func Key(now time.Time, suffix string) string {
	return now.Format("2006/01/") + suffix
}

// S3 writes report objects to one bucket.
type S3 struct {
	client S3API
	bucket string
}

// NewS3 creates a new S3 archive.
func NewS3(client S3API, bucket string) *S3 {
	return &S3{client: client, bucket: bucket}
}

// Bucket returns the destination bucket name.
func (s *S3) Bucket() string {
	return s.bucket
}

// Put writes body under key, replacing any previous object.
func (s *S3) Put(ctx context.Context, key string, body []byte) error {
	ctx, span := tracer.Start(ctx, "archive.s3")
	defer span.End()
	span.SetAttributes(
		attribute.String("s3.bucket", s.bucket),
		attribute.String("s3.key", key),
		attribute.Int("s3.size", len(body)),
	)

	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(body),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("cannot put s3://%s/%s: %w", s.bucket, key, err)
	}

	return nil
}
