package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"mime"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/mentorlog/mentorlog-api/config"
	"github.com/mentorlog/mentorlog-api/pkg/circuitbreaker"
	"github.com/mentorlog/mentorlog-api/pkg/logger"
	"github.com/mentorlog/mentorlog-api/pkg/metrics"
	"github.com/mentorlog/mentorlog-api/pkg/retry"
)

var (
	ErrObjectNotFound      = errors.New("object not found")
	ErrFileTooLarge        = errors.New("file too large")
	ErrExtensionNotAllowed = errors.New("file type not allowed")
)

// AllowedExtensions are the attachment types accepted for upload.
var AllowedExtensions = []string{
	".jpg", ".jpeg", ".png", ".gif", ".pdf",
	".doc", ".docx", ".xls", ".xlsx", ".ppt", ".pptx",
	".zip", ".rar",
}

// Object is a downloaded file. Callers must close Body.
type Object struct {
	Body        io.ReadCloser
	ContentType string
	Size        int64
}

// Client is an S3-compatible object storage client for log attachments.
type Client struct {
	s3Client  *s3.Client
	presigner *s3.PresignClient
	bucket    string
	urlExpiry time.Duration
	breaker   *gobreaker.CircuitBreaker
	retryCfg  retry.Config
}

// NewClient builds a client from StorageConfig. Path-style addressing is used
// so MinIO and other S3-compatible endpoints work unchanged.
func NewClient(cfg config.StorageConfig) *Client {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	expiry := time.Duration(cfg.URLExpiryMins) * time.Minute
	if expiry <= 0 {
		expiry = time.Hour
	}

	s3Client := s3.New(s3.Options{
		Region:       region,
		BaseEndpoint: aws.String(cfg.Endpoint),
		UsePathStyle: true,
		Credentials: credentials.NewStaticCredentialsProvider(
			cfg.AccessKeyID,
			cfg.SecretAccessKey,
			"",
		),
	})

	logger.Info("Object storage client initialized",
		zap.String("bucket", cfg.BucketName),
		zap.String("endpoint", cfg.Endpoint),
		zap.String("region", region),
	)

	return &Client{
		s3Client:  s3Client,
		presigner: s3.NewPresignClient(s3Client),
		bucket:    cfg.BucketName,
		urlExpiry: expiry,
		breaker:   circuitbreaker.NewCircuitBreaker(circuitbreaker.DefaultConfig("object-storage")),
		retryCfg:  retryConfig(),
	}
}

// retryConfig skips missing objects and breaker rejections.
func retryConfig() retry.Config {
	cfg := retry.StorageConfig()
	cfg.RetryableErrors = func(err error) bool {
		return retry.IsRetryable(err) && !isNotFound(err) && !circuitbreaker.IsRejected(err)
	}
	return cfg
}

func (c *Client) run(ctx context.Context, operation string, fn func() error) error {
	return retry.Do(ctx, c.retryCfg, "object_storage."+operation, func() error {
		return circuitbreaker.Run(c.breaker, fn)
	})
}

// Upload stores data under key.
func (c *Client) Upload(ctx context.Context, key string, data []byte, contentType string) error {
	start := time.Now()

	err := c.run(ctx, "upload", func() error {
		_, putErr := c.s3Client.PutObject(ctx, &s3.PutObjectInput{
			Bucket:        aws.String(c.bucket),
			Key:           aws.String(key),
			Body:          bytes.NewReader(data),
			ContentType:   aws.String(contentType),
			ContentLength: aws.Int64(int64(len(data))),
		})
		return putErr
	})

	c.observe("upload", start, err, zap.String("key", key), zap.Int("size_bytes", len(data)))
	if err != nil {
		return fmt.Errorf("failed to upload object %s: %w", key, err)
	}
	return nil
}

// Download opens the object stored at key.
func (c *Client) Download(ctx context.Context, key string) (*Object, error) {
	start := time.Now()

	out, err := retry.DoWithResult(ctx, c.retryCfg, "object_storage.download", func() (*s3.GetObjectOutput, error) {
		return circuitbreaker.Execute(c.breaker, func() (*s3.GetObjectOutput, error) {
			return c.s3Client.GetObject(ctx, &s3.GetObjectInput{
				Bucket: aws.String(c.bucket),
				Key:    aws.String(key),
			})
		})
	})

	c.observe("download", start, err, zap.String("key", key))
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("%w: %s", ErrObjectNotFound, key)
		}
		return nil, fmt.Errorf("failed to download object %s: %w", key, err)
	}

	obj := &Object{Body: out.Body, ContentType: aws.ToString(out.ContentType)}
	if out.ContentLength != nil {
		obj.Size = *out.ContentLength
	}
	return obj, nil
}

// Delete removes the object at key. Deleting a missing key is not an error.
func (c *Client) Delete(ctx context.Context, key string) error {
	start := time.Now()

	err := c.run(ctx, "delete", func() error {
		_, delErr := c.s3Client.DeleteObject(ctx, &s3.DeleteObjectInput{
			Bucket: aws.String(c.bucket),
			Key:    aws.String(key),
		})
		return delErr
	})

	c.observe("delete", start, err, zap.String("key", key))
	if err != nil && !isNotFound(err) {
		return fmt.Errorf("failed to delete object %s: %w", key, err)
	}
	return nil
}

// PresignedURL returns a time-limited download URL for key.
func (c *Client) PresignedURL(ctx context.Context, key, fileName string) (string, error) {
	start := time.Now()

	req, err := c.presigner.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket:                     aws.String(c.bucket),
		Key:                        aws.String(key),
		ResponseContentDisposition: aws.String(ContentDisposition(fileName)),
	}, s3.WithPresignExpires(c.urlExpiry))

	c.observe("presign", start, err, zap.String("key", key))
	if err != nil {
		return "", fmt.Errorf("failed to presign object %s: %w", key, err)
	}
	return req.URL, nil
}

func (c *Client) observe(operation string, start time.Time, err error, fields ...zap.Field) {
	duration := metrics.MeasureDuration(start)
	status := metrics.StatusLabel(err)

	metrics.StorageOperationDuration.WithLabelValues(operation, status).Observe(duration)
	metrics.StorageOperationTotal.WithLabelValues(operation, status).Inc()

	if err != nil {
		fields = append(fields, zap.Error(err), zap.Bool("circuit_open", circuitbreaker.IsRejected(err)))
	}
	logger.LogAPICall("object_storage", operation, status, duration, fields...)
}

func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	var notFound *types.NotFound
	return errors.As(err, &noSuchKey) || errors.As(err, &notFound)
}

// AttachmentKey is the object key for a log attachment:
// mentorship-logs/{logID}/{fileName}.
func AttachmentKey(logID, fileName string) string {
	return path.Join("mentorship-logs", logID, SanitizeFileName(fileName))
}

// SanitizeFileName strips directories and path separators from a client-supplied name.
func SanitizeFileName(name string) string {
	name = strings.ReplaceAll(name, "\\", "/")
	name = path.Base(name)
	if name == "." || name == "/" || name == ".." {
		return "file"
	}
	return name
}

// ValidateFile checks the extension allow-list and the size limit.
func ValidateFile(fileName string, size, maxSize int64) error {
	ext := strings.ToLower(filepath.Ext(fileName))
	allowed := false
	for _, candidate := range AllowedExtensions {
		if ext == candidate {
			allowed = true
			break
		}
	}
	if !allowed {
		return fmt.Errorf("%w: %s. Allowed types: %s", ErrExtensionNotAllowed, ext, strings.Join(AllowedExtensions, ", "))
	}

	if size > maxSize {
		return fmt.Errorf("%w: %s exceeds maximum size of %dMB", ErrFileTooLarge, fileName, maxSize/(1024*1024))
	}
	return nil
}

// ContentTypeFor guesses a MIME type from the file extension.
func ContentTypeFor(fileName string) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(fileName))); ct != "" {
		return ct
	}
	return "application/octet-stream"
}

// ContentDisposition builds an attachment header value for fileName.
func ContentDisposition(fileName string) string {
	return mime.FormatMediaType("attachment", map[string]string{"filename": SanitizeFileName(fileName)})
}
