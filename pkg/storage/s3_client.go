package storage

import (
	"context"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Client stores generated documents in a bucket
type S3Client interface {
	Upload(ctx context.Context, bucket, key, contentType string, body io.Reader) error
}

// Uploader is the part of manager.Uploader the client uses
type Uploader interface {
	Upload(ctx context.Context, input *s3.PutObjectInput, opts ...func(*manager.Uploader)) (*manager.UploadOutput, error)
}

type s3Client struct {
	uploader Uploader
}

// NewS3Client wraps an S3 API client with a multipart uploader
func NewS3Client(client *s3.Client) S3Client {
	return &s3Client{uploader: manager.NewUploader(client)}
}

// NewS3ClientWithUploader is used when the uploader is built elsewhere
func NewS3ClientWithUploader(uploader Uploader) S3Client {
	return &s3Client{uploader: uploader}
}

func (c *s3Client) Upload(ctx context.Context, bucket, key, contentType string, body io.Reader) error {
	_, err := c.uploader.Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        body,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("s3 upload %s/%s: %w", bucket, key, err)
	}
	return nil
}

type nopS3Client struct{}

// NewNopS3Client returns a client that discards uploads
func NewNopS3Client() S3Client {
	return nopS3Client{}
}

func (nopS3Client) Upload(ctx context.Context, bucket, key, contentType string, body io.Reader) error {
	return nil
}
