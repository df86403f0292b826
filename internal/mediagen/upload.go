package mediagen

import (
	"context"
	"fmt"
	"os"
	"path"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/pageza/nocapcooking/backend/config"
)

// Uploader publishes a produced media file under key.
type Uploader interface {
	Upload(ctx context.Context, key, filePath string) error
}

// PutObjectAPI is the part of the S3 client the uploader needs.
type PutObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Uploader stores media in the configured bucket, keyed by the same
// relative path the catalog records.
type S3Uploader struct {
	client PutObjectAPI
	bucket string
}

func NewS3Uploader(cfg *config.S3Config) *S3Uploader {
	return &S3Uploader{client: cfg.Client, bucket: cfg.BucketName}
}

var contentTypes = map[string]string{
	".jpg":  "image/jpeg",
	".opus": "audio/ogg",
}

func (u *S3Uploader) Upload(ctx context.Context, key, filePath string) error {
	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	contentType, ok := contentTypes[path.Ext(key)]
	if !ok {
		contentType = "application/octet-stream"
	}

	_, err = u.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(u.bucket),
		Key:         aws.String(key),
		Body:        f,
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return fmt.Errorf("failed to upload to S3: %w", err)
	}
	return nil
}
