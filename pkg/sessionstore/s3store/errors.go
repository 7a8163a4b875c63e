package s3store

import "errors"

var (
	ErrInvalidConfig      = errors.New("s3store.invalid_config")
	ErrFailedToLoadConfig = errors.New("s3store.failed_to_load_aws_config")
	ErrBucketNotFound     = errors.New("s3store.bucket_not_found")
	ErrAccessDenied       = errors.New("s3store.access_denied")
	ErrServiceUnavailable = errors.New("s3store.service_unavailable")
)
