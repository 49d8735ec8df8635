package client

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/aws/smithy-go"
	"github.com/dmitrijs2005/cloudvault/internal/client/models"
	"github.com/dmitrijs2005/cloudvault/internal/logging"
)

// objectAPI is the subset of *s3.Client used by S3Client.
type objectAPI interface {
	ListObjectsV2(ctx context.Context, in *s3.ListObjectsV2Input, optFns ...func(*s3.Options)) (*s3.ListObjectsV2Output, error)
	PutObject(ctx context.Context, in *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	GetObject(ctx context.Context, in *s3.GetObjectInput, optFns ...func(*s3.Options)) (*s3.GetObjectOutput, error)
	DeleteObject(ctx context.Context, in *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

var (
	loadDefaultAWSConfig = awsconfig.LoadDefaultConfig

	newS3ClientFromConfig = func(cfg aws.Config, optFns ...func(*s3.Options)) objectAPI {
		return s3.NewFromConfig(cfg, optFns...)
	}
)

// S3Config locates the bucket for the direct object-store backend.
type S3Config struct {
	Endpoint     string
	Region       string
	Bucket       string
	AccessKey    string
	SecretKey    string
	UsePathStyle bool
}

// S3Client implements Client directly on an S3-compatible bucket. Object
// keys double as file ids.
type S3Client struct {
	api objectAPI
	cfg S3Config
	log logging.Logger
}

func NewS3Client(ctx context.Context, cfg S3Config, log logging.Logger) (*S3Client, error) {
	if cfg.Bucket == "" {
		return nil, errors.New("s3 bucket is required")
	}

	opts := []func(*awsconfig.LoadOptions) error{awsconfig.WithRegion(cfg.Region)}
	if cfg.AccessKey != "" {
		opts = append(opts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := loadDefaultAWSConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	api := newS3ClientFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	})

	return newS3Client(api, cfg, log), nil
}

func newS3Client(api objectAPI, cfg S3Config, log logging.Logger) *S3Client {
	if log == nil {
		log = logging.Nop()
	}
	return &S3Client{api: api, cfg: cfg, log: log}
}

// ObjectURL is the public link of key, in the same layout the bucket is
// addressed with: https://s3.<region>.amazonaws.com/<bucket>/<key> for
// path-style, https://<bucket>.s3.<region>.amazonaws.com/<key> otherwise.
func (c *S3Client) ObjectURL(key string) string {
	u := url.URL{Scheme: "https"}

	if c.cfg.Endpoint != "" {
		if ep, err := url.Parse(c.cfg.Endpoint); err == nil && ep.Host != "" {
			u.Scheme = ep.Scheme
			u.Host = ep.Host
		}
	} else {
		u.Host = "s3." + c.cfg.Region + ".amazonaws.com"
	}

	if c.cfg.UsePathStyle {
		u.Path = "/" + c.cfg.Bucket + "/" + key
	} else {
		u.Host = c.cfg.Bucket + "." + u.Host
		u.Path = "/" + key
	}
	return u.String()
}

func (c *S3Client) List(ctx context.Context) ([]models.FileRecord, error) {
	files := make([]models.FileRecord, 0)

	p := s3.NewListObjectsV2Paginator(c.api, &s3.ListObjectsV2Input{Bucket: aws.String(c.cfg.Bucket)})
	for p.HasMorePages() {
		page, err := p.NextPage(ctx)
		if err != nil {
			return nil, c.mapError(err, msgFetchFailed)
		}
		for _, obj := range page.Contents {
			key := aws.ToString(obj.Key)
			if key == "" || strings.HasSuffix(key, "/") {
				continue
			}
			files = append(files, models.FileRecord{ID: models.FileID(key), FileLink: c.ObjectURL(key)})
		}
	}
	return files, nil
}

func (c *S3Client) Upload(ctx context.Context, blob *Blob) error {
	body, ok := blob.Body.(io.ReadSeeker)
	if !ok {
		b, err := io.ReadAll(blob.Body)
		if err != nil {
			return &APIError{Message: msgUploadFailed, Err: err}
		}
		body = bytes.NewReader(b)
	}

	contentType := blob.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	in := &s3.PutObjectInput{
		Bucket:      aws.String(c.cfg.Bucket),
		Key:         aws.String(blob.Name),
		Body:        body,
		ContentType: aws.String(contentType),
	}
	if blob.Size > 0 {
		in.ContentLength = aws.Int64(blob.Size)
	}

	if _, err := c.api.PutObject(ctx, in); err != nil {
		return c.mapError(err, msgUploadFailed)
	}
	c.log.Info(ctx, "object stored", "bucket", c.cfg.Bucket, "key", blob.Name)
	return nil
}

// Download accepts keys resolved from path-style links, which still carry
// the bucket as their first segment.
func (c *S3Client) Download(ctx context.Context, key string) (io.ReadCloser, error) {
	if c.cfg.UsePathStyle {
		key = strings.TrimPrefix(key, c.cfg.Bucket+"/")
	}

	out, err := c.api.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(c.cfg.Bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, c.mapError(err, msgDownloadFailed)
	}
	return out.Body, nil
}

func (c *S3Client) Delete(ctx context.Context, id models.FileID) error {
	_, err := c.api.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(c.cfg.Bucket),
		Key:    aws.String(id.String()),
	})
	if err != nil {
		return c.mapError(err, msgDeleteFailed)
	}
	return nil
}

func (c *S3Client) Close() error { return nil }

func (c *S3Client) mapError(err error, fallback string) error {
	var noKey *types.NoSuchKey
	if errors.As(err, &noKey) {
		return &APIError{Message: fallback, Err: ErrNotFound}
	}

	var noBucket *types.NoSuchBucket
	if errors.As(err, &noBucket) {
		return &APIError{Message: fallback, Err: ErrNotFound}
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		switch apiErr.ErrorCode() {
		case "AccessDenied", "InvalidAccessKeyId", "SignatureDoesNotMatch", "ExpiredToken":
			return &APIError{Message: fallback, Err: fmt.Errorf("%w: %s", ErrUnauthorized, apiErr.ErrorMessage())}
		}
		return &APIError{Message: fallback, Err: fmt.Errorf("%w: %s", ErrRejected, apiErr.ErrorMessage())}
	}

	return &APIError{Message: fallback, Err: fmt.Errorf("%w: %v", ErrUnavailable, err)}
}
