package e2e_harness

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/smithy-go"
	"github.com/lychee-technology/nilability"
	"github.com/lychee-technology/nilability/internal"
)

// SeedPostgres creates the blog tables the fixture documents describe.
func SeedPostgres(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS authors (
  id BIGINT NOT NULL,
  name TEXT NOT NULL,
  bio TEXT
);`,
		`CREATE TABLE IF NOT EXISTS posts (
  id BIGINT NOT NULL,
  author_id BIGINT NOT NULL,
  editor_id BIGINT,
  title TEXT,
  body TEXT
);`,
		`CREATE TABLE IF NOT EXISTS profiles (
  id BIGINT NOT NULL,
  author_id BIGINT NOT NULL
);`,
		`CREATE TABLE IF NOT EXISTS audit_log (
  actor TEXT NOT NULL,
  note TEXT
);`,
	}
	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("seed postgres: %w", err)
		}
	}
	return nil
}

// FixtureBundle returns a snapshot bundle for the seeded tables.
func FixtureBundle() ([]byte, error) {
	docs := []nilability.RecordDocument{
		{
			Name:  "Author",
			Table: "authors",
			Relationships: []nilability.RelationshipDocument{
				{Name: "posts", Cardinality: "has_many", ClassName: "Post"},
				{Name: "profile", Cardinality: "has_one", ClassName: "Profile"},
			},
		},
		{
			Name:  "Post",
			Table: "posts",
			Validations: map[string][]nilability.ValidationDocument{
				"title": {{Kind: "presence"}},
				"body":  {{Kind: "presence", Conditions: []string{"on"}}},
			},
			Relationships: []nilability.RelationshipDocument{
				{Name: "author", Cardinality: "belongs_to", ClassName: "Author"},
				{Name: "editor", Cardinality: "belongs_to", ClassName: "Author", Optional: nilability.Bool(true)},
			},
		},
	}

	bundle := nilability.SnapshotBundle{}
	for _, doc := range docs {
		raw, err := json.Marshal(doc)
		if err != nil {
			return nil, err
		}
		bundle.Records = append(bundle.Records, raw)
	}
	return json.Marshal(bundle)
}

// UploadBundleToS3 creates bucket if needed and stores data at key.
func UploadBundleToS3(ctx context.Context, cfg nilability.S3Config, data []byte) error {
	s3Client, err := internal.NewS3Client(ctx, cfg)
	if err != nil {
		return err
	}

	// ensure bucket exists
	if _, err := s3Client.HeadBucket(ctx, &s3.HeadBucketInput{Bucket: aws.String(cfg.Bucket)}); err != nil {
		if _, cerr := s3Client.CreateBucket(ctx, &s3.CreateBucketInput{Bucket: aws.String(cfg.Bucket)}); cerr != nil {
			var apiErr smithy.APIError
			if errors.As(cerr, &apiErr) {
				code := apiErr.ErrorCode()
				if code != "BucketAlreadyOwnedByYou" && code != "BucketAlreadyExists" {
					return fmt.Errorf("create bucket: %w", cerr)
				}
			} else {
				return fmt.Errorf("create bucket: %w", cerr)
			}
		}
	}

	_, err = manager.NewUploader(s3Client).Upload(ctx, &s3.PutObjectInput{
		Bucket: aws.String(cfg.Bucket),
		Key:    aws.String(cfg.Key),
		Body:   bytes.NewReader(data),
	})
	if err != nil {
		return fmt.Errorf("s3 upload: %w", err)
	}
	return nil
}
