package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	awsCfg "github.com/aws/aws-sdk-go-v2/config" // Alias config to avoid clash
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/sirupsen/logrus"

	"videosplus/storefront/internal/codec"
	"videosplus/storefront/internal/config"
	"videosplus/storefront/internal/domain"
)

// S3Storage keeps the document as one object in an S3-compatible bucket (Wasabi in
// production) and serves presigned links for media objects in the same bucket.
type S3Storage struct {
	client        *s3.Client        // Regular client for object operations
	presignClient *s3.PresignClient // Special client for generating presigned URLs
	bucketName    string
	notConfigured error // set when required settings are absent
	docs          documentSource
	log           logrus.FieldLogger
}

var (
	_ DocumentStore = (*S3Storage)(nil)
	_ FileStorage   = (*S3Storage)(nil)
	_ Prober        = (*S3Storage)(nil)
)

// NewS3Client builds an S3 client for a custom endpoint with path-style addressing.
func NewS3Client(ctx context.Context, cfg config.S3Config) (*s3.Client, error) {
	awsSDKConfig, err := awsCfg.LoadDefaultConfig(ctx,
		awsCfg.WithRegion(cfg.Region),
		awsCfg.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")),
	)
	if err != nil {
		return nil, fmt.Errorf("load AWS SDK config: %w", err)
	}

	endpoint := cfg.Endpoint
	if !strings.Contains(endpoint, "://") {
		scheme := "https://"
		if !cfg.UseSSL {
			scheme = "http://"
		}
		endpoint = scheme + endpoint
	}

	return s3.NewFromConfig(awsSDKConfig, func(o *s3.Options) {
		o.BaseEndpoint = aws.String(endpoint)
		o.UsePathStyle = true // IMPORTANT for S3-compatible services like Wasabi and MinIO
		// Wasabi rejects the default CRC32 trailers.
		o.RequestChecksumCalculation = aws.RequestChecksumCalculationWhenRequired
		o.ResponseChecksumValidation = aws.ResponseChecksumValidationWhenRequired
	}), nil
}

// NewS3Storage creates the object store gateway. Missing settings do not fail
// construction; every operation then reports the store as unavailable.
func NewS3Storage(ctx context.Context, cfg config.S3Config, defaults domain.Defaults, log logrus.FieldLogger) (*S3Storage, error) {
	s := &S3Storage{
		bucketName: cfg.BucketName,
		docs:       newDocumentSource(defaults, log, "s3-store"),
	}
	s.log = s.docs.log

	if missing := cfg.Missing(); len(missing) > 0 {
		s.notConfigured = fmt.Errorf("%w: missing %s", ErrNotConfigured, strings.Join(missing, ", "))
		s.log.WithField("missing", missing).Warn("object store configuration incomplete")
		return s, nil
	}

	client, err := NewS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	s.client = client
	s.presignClient = s3.NewPresignClient(client)

	s.log.WithFields(logrus.Fields{"endpoint": cfg.Endpoint, "bucket": cfg.BucketName}).Info("S3 storage initialized")
	return s, nil
}

// FetchDocument downloads and decodes the document object.
func (s *S3Storage) FetchDocument(ctx context.Context, key string) (*domain.Document, Version, error) {
	if s.notConfigured != nil {
		return nil, Version{}, unavailable("fetch", key, s.notConfigured)
	}

	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			s.log.WithField("key", key).Info("document object not found, using defaults")
			return s.docs.fresh(), missingVersion, nil
		}
		return nil, Version{}, unavailable("fetch", key, err)
	}
	defer out.Body.Close()

	raw, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, Version{}, unavailable("fetch", key, fmt.Errorf("read body: %w", err))
	}
	return s.docs.decode(key, raw), Version{Tag: aws.ToString(out.ETag)}, nil
}

// StoreDocument encodes doc and uploads it, replacing the object. A non-zero expected
// version turns the upload into a conditional write.
func (s *S3Storage) StoreDocument(ctx context.Context, key string, doc *domain.Document, expected Version) (Version, error) {
	if s.notConfigured != nil {
		return Version{}, unavailable("store", key, s.notConfigured)
	}

	raw, err := codec.Encode(doc)
	if err != nil {
		return Version{}, err
	}

	input := &s3.PutObjectInput{
		Bucket:      aws.String(s.bucketName),
		Key:         aws.String(key),
		Body:        bytes.NewReader(raw),
		ContentType: aws.String("application/json"),
	}
	switch {
	case expected.Missing:
		input.IfNoneMatch = aws.String("*")
	case expected.Tag != "":
		input.IfMatch = aws.String(expected.Tag)
	}

	out, err := s.client.PutObject(ctx, input)
	if err != nil {
		if httpStatus(err) == http.StatusPreconditionFailed {
			return Version{}, fmt.Errorf("store %s: %w", key, ErrVersionConflict)
		}
		return Version{}, unavailable("store", key, err)
	}

	s.log.WithFields(logrus.Fields{"key": key, "bytes": len(raw)}).Debug("document stored")
	return Version{Tag: aws.ToString(out.ETag)}, nil
}

// Exists reports whether the document object is present.
func (s *S3Storage) Exists(ctx context.Context, key string) (bool, error) {
	if s.notConfigured != nil {
		return false, unavailable("head", key, s.notConfigured)
	}
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(key),
	})
	if err != nil {
		if isNotFound(err) {
			return false, nil
		}
		return false, unavailable("head", key, err)
	}
	return true, nil
}

// GeneratePresignedDownloadURL creates a temporary URL for downloading (GET).
func (s *S3Storage) GeneratePresignedDownloadURL(ctx context.Context, objectKey string, expires time.Duration) (string, error) {
	if s.notConfigured != nil {
		return "", unavailable("presign", objectKey, s.notConfigured)
	}
	if expires <= 0 {
		expires = DefaultPresignedURLExpiry
	}

	presignParams := &s3.GetObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectKey),
	}

	req, err := s.presignClient.PresignGetObject(ctx, presignParams, s3.WithPresignExpires(expires))
	if err != nil {
		s.log.WithError(err).WithField("key", objectKey).Error("failed to generate presigned GET URL")
		return "", unavailable("presign", objectKey, err)
	}

	return req.URL, nil
}

// DeleteObject removes an object from the S3 bucket.
func (s *S3Storage) DeleteObject(ctx context.Context, objectKey string) error {
	if s.notConfigured != nil {
		return unavailable("delete", objectKey, s.notConfigured)
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucketName),
		Key:    aws.String(objectKey),
	})
	if err != nil {
		if isNotFound(err) {
			return ErrObjectNotFound
		}
		s.log.WithError(err).WithFields(logrus.Fields{"key": objectKey, "bucket": s.bucketName}).Error("failed to delete object")
		return unavailable("delete", objectKey, err)
	}

	s.log.WithFields(logrus.Fields{"key": objectKey, "bucket": s.bucketName}).Info("deleted object")
	return nil
}

// isNotFound reports a missing object. A missing bucket also answers 404 but is a
// misconfiguration, so only the object-level error types count.
func isNotFound(err error) bool {
	var noSuchKey *types.NoSuchKey
	if errors.As(err, &noSuchKey) {
		return true
	}
	// HeadObject carries no body, so the SDK can only say NotFound.
	var notFound *types.NotFound
	return errors.As(err, &notFound)
}

func httpStatus(err error) int {
	var respErr *awshttp.ResponseError
	if errors.As(err, &respErr) {
		return respErr.HTTPStatusCode()
	}
	return 0
}
