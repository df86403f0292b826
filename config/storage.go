package config

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrNoBucket is returned when media upload is requested without a bucket.
var ErrNoBucket = errors.New("no media bucket configured")

// S3Config holds S3 client and bucket info
type S3Config struct {
	Client     *s3.Client
	BucketName string
}

// NewS3Config initializes the S3 client for the media bucket. Credentials
// come from the default AWS chain (environment, shared config, instance role).
func NewS3Config(ctx context.Context, bucket, region string) (*S3Config, error) {
	if bucket == "" {
		return nil, ErrNoBucket
	}

	var opts []func(*config.LoadOptions) error
	if region != "" {
		opts = append(opts, config.WithRegion(region))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, err
	}

	return &S3Config{
		Client:     s3.NewFromConfig(awsCfg),
		BucketName: bucket,
	}, nil
}
