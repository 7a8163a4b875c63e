package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"

	"github.com/dmitrymomot/userland/pkg/session"
)

// Store is a session.Handler backed by S3. It remembers the name passed to
// Open, so sessions with different names need their own Store; Clone makes
// one.
type Store struct {
	client   Client
	bucket   string
	prefix   string
	pageSize int32
	now      func() time.Time

	mu   sync.RWMutex
	name string
}

var _ session.Handler = (*Store)(nil)

// Option configures a Store.
type Option func(*options)

type options struct {
	client        Client
	httpClient    *http.Client
	configOptions []func(*config.LoadOptions) error
	clientOptions []func(*s3.Options)
	now           func() time.Time
}

// WithClient sets a pre-configured S3 client. Useful for testing with mocks.
func WithClient(client Client) Option {
	return func(o *options) {
		o.client = client
	}
}

// WithHTTPClient sets a custom HTTP client for S3 requests.
func WithHTTPClient(client *http.Client) Option {
	return func(o *options) {
		o.httpClient = client
	}
}

// WithConfigOption adds a custom AWS config option.
func WithConfigOption(option func(*config.LoadOptions) error) Option {
	return func(o *options) {
		o.configOptions = append(o.configOptions, option)
	}
}

// WithClientOption adds a custom S3 client option.
func WithClientOption(option func(*s3.Options)) Option {
	return func(o *options) {
		o.clientOptions = append(o.clientOptions, option)
	}
}

// WithClock overrides the time source used by GC.
func WithClock(now func() time.Time) Option {
	return func(o *options) {
		if now != nil {
			o.now = now
		}
	}
}

// New creates an S3 store. Without WithClient it loads the default AWS
// configuration, using static credentials when both keys are set.
func New(ctx context.Context, cfg Config, opts ...Option) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, errors.Join(ErrInvalidConfig, errors.New("bucket is required"))
	}
	if cfg.PageSize < 0 {
		return nil, errors.Join(ErrInvalidConfig, errors.New("page size must not be negative"))
	}

	o := &options{now: time.Now}
	for _, opt := range opts {
		opt(o)
	}

	client := o.client
	if client == nil {
		if cfg.Region == "" {
			return nil, errors.Join(ErrInvalidConfig, errors.New("region is required"))
		}

		awsOptions := []func(*config.LoadOptions) error{
			config.WithRegion(cfg.Region),
		}
		if cfg.AccessKeyID != "" && cfg.SecretKey != "" {
			awsOptions = append(awsOptions,
				config.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
					cfg.AccessKeyID,
					cfg.SecretKey,
					"",
				)),
			)
		}
		if o.httpClient != nil {
			awsOptions = append(awsOptions, config.WithHTTPClient(o.httpClient))
		}
		awsOptions = append(awsOptions, o.configOptions...)

		awsConfig, err := config.LoadDefaultConfig(ctx, awsOptions...)
		if err != nil {
			return nil, errors.Join(ErrFailedToLoadConfig, err)
		}

		client = s3.NewFromConfig(awsConfig, func(so *s3.Options) {
			if cfg.Endpoint != "" {
				so.BaseEndpoint = aws.String(cfg.Endpoint)
			}
			so.UsePathStyle = cfg.ForcePathStyle
			for _, opt := range o.clientOptions {
				opt(so)
			}
		})
	}

	return &Store{
		client:   client,
		bucket:   cfg.Bucket,
		prefix:   cfg.KeyPrefix,
		pageSize: cfg.PageSize,
		now:      o.now,
	}, nil
}

// Clone returns a Store on the same client and bucket with no name.
// Its signature fits session.HandlerFactory.
func (s *Store) Clone() session.Handler {
	return &Store{
		client:   s.client,
		bucket:   s.bucket,
		prefix:   s.prefix,
		pageSize: s.pageSize,
		now:      s.now,
	}
}

// Open remembers name for the keys of later calls.
func (s *Store) Open(_ context.Context, _, name string) error {
	s.mu.Lock()
	s.name = name
	s.mu.Unlock()
	return nil
}

// Close is a no-op; the client outlives single sessions.
func (s *Store) Close(context.Context) error {
	return nil
}

func (s *Store) openName() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.name
}

// Read downloads the object for id.
func (s *Store) Read(ctx context.Context, id string) ([]byte, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key(id)),
	})
	if err != nil {
		return nil, classifyError(err, "read")
	}
	defer out.Body.Close()

	data, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, fmt.Errorf("read operation failed: %w", err)
	}
	return data, nil
}

// Write uploads data as the object for id.
func (s *Store) Write(ctx context.Context, id string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(s.key(id)),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String("application/octet-stream"),
	})
	return classifyError(err, "write")
}

// Destroy deletes the record. DeleteObject succeeds for missing keys, so
// existence is checked first to report session.ErrNotFound.
func (s *Store) Destroy(ctx context.Context, id string) error {
	key := aws.String(s.key(id))

	if _, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    key,
	}); err != nil {
		return classifyError(err, "check")
	}

	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    key,
	})
	return classifyError(err, "destroy")
}

// GC deletes this name's objects last modified more than maxLifetime ago.
func (s *Store) GC(ctx context.Context, maxLifetime time.Duration) error {
	now := s.now().Unix()
	limit := int64(maxLifetime / time.Second)

	input := &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(s.prefix + s.openName() + "_"),
	}
	if s.pageSize > 0 {
		input.MaxKeys = aws.Int32(s.pageSize)
	}

	paginator := s3.NewListObjectsV2Paginator(s.client, input)
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return classifyError(err, "list")
		}

		for _, obj := range page.Contents {
			if obj.LastModified == nil {
				continue
			}
			if now-obj.LastModified.Unix() <= limit {
				continue
			}
			if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
				Bucket: aws.String(s.bucket),
				Key:    obj.Key,
			}); err != nil {
				return classifyError(err, "gc")
			}
		}
	}
	return nil
}

// Healthcheck verifies the bucket is reachable.
func (s *Store) Healthcheck(ctx context.Context) error {
	_, err := s.client.HeadBucket(ctx, &s3.HeadBucketInput{
		Bucket: aws.String(s.bucket),
	})
	return classifyError(err, "healthcheck")
}

func (s *Store) key(id string) string {
	return s.prefix + s.openName() + "_" + id
}

// classifyError maps S3 errors to session and store errors.
func classifyError(err error, operation string) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}

	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return session.ErrNotFound
	}
	var nf *types.NotFound
	if errors.As(err, &nf) {
		return session.ErrNotFound
	}
	var nsb *types.NoSuchBucket
	if errors.As(err, &nsb) {
		return ErrBucketNotFound
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		code := apiErr.ErrorCode()
		switch code {
		case "NoSuchKey", "NotFound":
			return session.ErrNotFound
		case "NoSuchBucket":
			return ErrBucketNotFound
		case "AccessDenied", "Forbidden":
			return fmt.Errorf("%w: %s operation", ErrAccessDenied, operation)
		case "SlowDown", "ServiceUnavailable":
			return fmt.Errorf("%w: %s operation", ErrServiceUnavailable, operation)
		default:
			return fmt.Errorf("%s operation failed (code: %s): %w", operation, code, err)
		}
	}

	return fmt.Errorf("%s operation failed: %w", operation, err)
}
