package internal

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/lychee-technology/nilability"
	"go.uber.org/zap"
)

type objectDownloader interface {
	Download(ctx context.Context, w io.WriterAt, input *s3.GetObjectInput, options ...func(*manager.Downloader)) (int64, error)
}

// S3RecordSource reads a snapshot bundle ({"records": [...]}) from a single S3 object.
type S3RecordSource struct {
	downloader objectDownloader
	bucket     string
	key        string
}

// ValidateS3Config performs basic sanity checks on the S3 snapshot settings.
func ValidateS3Config(cfg nilability.S3Config) error {
	if cfg.Bucket == "" {
		return fmt.Errorf("s3: bucket is required")
	}
	if cfg.Key == "" {
		return fmt.Errorf("s3: key is required")
	}
	if cfg.AccessKey != "" && cfg.SecretKey == "" {
		return fmt.Errorf("s3AccessKey provided without s3SecretKey")
	}
	if cfg.SecretKey != "" && cfg.AccessKey == "" {
		return fmt.Errorf("s3SecretKey provided without s3AccessKey")
	}
	return nil
}

// NewS3Client builds an S3 client from the default AWS config chain,
// overridden by any region, endpoint or static credentials in cfg.
func NewS3Client(ctx context.Context, cfg nilability.S3Config) (*s3.Client, error) {
	var opts []func(*config.LoadOptions) error
	if cfg.Region != "" {
		opts = append(opts, config.WithRegion(cfg.Region))
	}
	if cfg.AccessKey != "" {
		opts = append(opts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, "")))
	}

	awsCfg, err := config.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	return s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		o.UsePathStyle = cfg.UsePathStyle
	}), nil
}

// NewS3RecordSource reads the bundle at cfg.Bucket/cfg.Key.
func NewS3RecordSource(ctx context.Context, cfg nilability.S3Config) (*S3RecordSource, error) {
	if err := ValidateS3Config(cfg); err != nil {
		return nil, err
	}
	client, err := NewS3Client(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return newS3RecordSource(manager.NewDownloader(client), cfg.Bucket, cfg.Key), nil
}

func newS3RecordSource(downloader objectDownloader, bucket, key string) *S3RecordSource {
	return &S3RecordSource{downloader: downloader, bucket: bucket, key: key}
}

func (s *S3RecordSource) Describe() string {
	return fmt.Sprintf("s3://%s/%s", s.bucket, s.key)
}

func (s *S3RecordSource) ReadDocuments(ctx context.Context) ([]RawDocument, error) {
	buf := manager.NewWriteAtBuffer([]byte{})
	n, err := s.downloader.Download(ctx, buf, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(s.key),
	})
	if err != nil {
		var apiErr smithy.APIError
		if errors.As(err, &apiErr) {
			switch apiErr.ErrorCode() {
			case "NoSuchKey", "NotFound", "NoSuchBucket":
				return nil, nilability.NewSnapshotNotFoundError(s.Describe(), err)
			}
		}
		return nil, nilability.NewSourceUnavailableError(s.Describe(), fmt.Errorf("s3 download: %w", err))
	}
	zap.S().Debugw("downloaded snapshot bundle", "location", s.Describe(), "bytes", n)

	var bundle nilability.SnapshotBundle
	if err := json.Unmarshal(buf.Bytes(), &bundle); err != nil {
		return nil, nilability.NewMalformedMetadataError(s.Describe(), "invalid snapshot bundle", err)
	}

	docs := make([]RawDocument, 0, len(bundle.Records))
	for i, rec := range bundle.Records {
		docs = append(docs, RawDocument{
			Source: fmt.Sprintf("%s#records[%d]", s.Describe(), i),
			Data:   rec,
		})
	}
	return docs, nil
}
