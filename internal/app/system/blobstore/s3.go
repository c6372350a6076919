package blobstore

import (
	"context"
	"io"
	"net/url"
	"time"

	"github.com/dalemusser/wardwatch/internal/app/system/apperr"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// S3Config configures an S3-compatible backend.
type S3Config struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	Secure    bool
	// Region defaults to us-east-1. Setting it avoids a bucket-location
	// lookup before presigning.
	Region string
	// URLExpiry bounds presigned GET URLs. Defaults to one hour.
	URLExpiry time.Duration
}

// S3 stores objects in a bucket and hands out presigned URLs.
type S3 struct {
	client *minio.Client
	bucket string
	expiry time.Duration
}

// NewS3 builds a client. It does not contact the server.
func NewS3(cfg S3Config) (*S3, error) {
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}
	client, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.Secure,
		Region: region,
	})
	if err != nil {
		return nil, err
	}
	expiry := cfg.URLExpiry
	if expiry <= 0 {
		expiry = time.Hour
	}
	return &S3{client: client, bucket: cfg.Bucket, expiry: expiry}, nil
}

// EnsureBucket creates the bucket when it is missing.
func (s *S3) EnsureBucket(ctx context.Context) error {
	ok, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return s3Failure(err)
	}
	if ok {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return s3Failure(err)
	}
	return nil
}

func (s *S3) Upload(ctx context.Context, p string, r io.Reader, size int64, contentType string) (Ref, error) {
	clean, err := cleanPath(p)
	if err != nil {
		return "", err
	}
	if size <= 0 {
		size = -1
	}
	_, err = s.client.PutObject(ctx, s.bucket, clean, r, size, minio.PutObjectOptions{ContentType: contentType})
	if err != nil {
		return "", s3Failure(err)
	}
	return Ref(clean), nil
}

func (s *S3) URLOf(ctx context.Context, ref Ref) (string, error) {
	if IsURL(ref) {
		return string(ref), nil
	}
	clean, err := cleanPath(string(ref))
	if err != nil {
		return "", err
	}
	u, err := s.client.PresignedGetObject(ctx, s.bucket, clean, s.expiry, url.Values{})
	if err != nil {
		return "", s3Failure(err)
	}
	return u.String(), nil
}

func s3Failure(err error) error {
	if e, ok := ctxFailure(err); ok {
		return e
	}
	switch minio.ToErrorResponse(err).Code {
	case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch":
		return apperr.Collaborator(CodeUnauthorized, err)
	case "QuotaExceeded", "EntityTooLarge", "XMinioStorageFull":
		return apperr.Collaborator(CodeQuotaExceeded, err)
	case "RequestTimeout", "SlowDown", "XMinioServerNotInitialized":
		return apperr.Collaborator(CodeRetryLimitExceeded, err)
	}
	return apperr.Collaborator(CodeUnknown, err)
}
