package s3store

import (
	"context"

	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// Client is the subset of *s3.Client used by the store.
type Client interface {
	GetObject(ctx context.Context, params *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	HeadObject(ctx context.Context, params *s3.HeadObjectInput, optFns ...func(*s3.Options)) (*s3.HeadObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
	ListObjectsV2(ctx context.Context, params *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	HeadBucket(ctx context.Context, params *s3.HeadBucketInput, optFns ...func(*s3.Options)) (*s3.HeadBucketOutput, error)
}

// Config contains configuration for the S3 store.
type Config struct {
	Bucket         string `env:"SESSION_S3_BUCKET,required"`
	Region         string `env:"SESSION_S3_REGION" envDefault:"us-east-1"`
	AccessKeyID    string `env:"SESSION_S3_ACCESS_KEY_ID"`
	SecretKey      string `env:"SESSION_S3_SECRET_KEY"`
	Endpoint       string `env:"SESSION_S3_ENDPOINT"`         // Optional: for S3-compatible services
	ForcePathStyle bool   `env:"SESSION_S3_FORCE_PATH_STYLE"` // For S3-compatible services like MinIO
	KeyPrefix      string `env:"SESSION_S3_KEY_PREFIX" envDefault:"sessions/"`
	// PageSize bounds ListObjectsV2 pages during GC. Zero uses the service default.
	PageSize int32 `env:"SESSION_S3_PAGE_SIZE" envDefault:"0"`
}
