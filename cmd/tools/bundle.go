package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/feature/s3/manager"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/lychee-technology/nilability"
	"github.com/lychee-technology/nilability/internal"
	"go.uber.org/zap"
)

type bundleOptions struct {
	schemaDir string
	outFile   string
	s3        nilability.S3Config
}

func runBundle(args []string) error {
	flags := flag.NewFlagSet("bundle", flag.ContinueOnError)
	flags.SetOutput(os.Stdout)
	flags.Usage = func() {
		fmt.Println("Usage: nilability-tools bundle [options]")
		fmt.Println("")
		fmt.Println("Writes to -out, or uploads to -s3-bucket/-s3-key when a bucket is given.")
		fmt.Println("")
		fmt.Println("Options:")
		flags.PrintDefaults()
	}

	opts := bundleOptions{}
	flags.StringVar(&opts.schemaDir, "schema-dir", getenvDefault("SCHEMA_DIR", "schemas"), "directory of record documents")
	flags.StringVar(&opts.outFile, "out", "snapshot.json", "output file")
	flags.StringVar(&opts.s3.Bucket, "s3-bucket", getenvDefault("S3_BUCKET", ""), "destination bucket")
	flags.StringVar(&opts.s3.Key, "s3-key", getenvDefault("S3_KEY", "snapshot.json"), "destination key")
	flags.StringVar(&opts.s3.Region, "s3-region", getenvDefault("S3_REGION", ""), "bucket region")
	flags.StringVar(&opts.s3.Endpoint, "s3-endpoint", getenvDefault("S3_ENDPOINT", ""), "custom endpoint (MinIO, LocalStack)")
	flags.BoolVar(&opts.s3.UsePathStyle, "s3-path-style", false, "use path-style addressing")
	opts.s3.AccessKey = os.Getenv("S3_ACCESS_KEY")
	opts.s3.SecretKey = os.Getenv("S3_SECRET_KEY")

	if err := flags.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return err
	}

	ctx := context.Background()
	data, count, err := buildBundle(ctx, internal.NewFileRecordSource(opts.schemaDir))
	if err != nil {
		return err
	}

	if opts.s3.Bucket == "" {
		if err := os.WriteFile(opts.outFile, data, 0644); err != nil {
			return fmt.Errorf("write bundle: %w", err)
		}
		zap.S().Infow("bundle written", "path", opts.outFile, "records", count)
		return nil
	}

	if err := internal.ValidateS3Config(opts.s3); err != nil {
		return err
	}
	client, err := internal.NewS3Client(ctx, opts.s3)
	if err != nil {
		return err
	}
	if _, err := manager.NewUploader(client).Upload(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(opts.s3.Bucket),
		Key:         aws.String(opts.s3.Key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	}); err != nil {
		return fmt.Errorf("upload bundle: %w", err)
	}
	zap.S().Infow("bundle uploaded", "bucket", opts.s3.Bucket, "key", opts.s3.Key, "records", count)
	return nil
}

// buildBundle validates every document from source and encodes them as one SnapshotBundle.
func buildBundle(ctx context.Context, source internal.RecordSource) ([]byte, int, error) {
	docs, err := source.ReadDocuments(ctx)
	if err != nil {
		return nil, 0, err
	}

	bundle := nilability.SnapshotBundle{Records: make([]json.RawMessage, 0, len(docs))}
	seen := make(map[string]struct{}, len(docs))
	for _, raw := range docs {
		def, err := internal.ParseRecordDocument(raw, true)
		if err != nil {
			return nil, 0, err
		}
		if _, dup := seen[def.RecordName]; dup {
			return nil, 0, fmt.Errorf("record %q defined twice (%s)", def.RecordName, raw.Source)
		}
		seen[def.RecordName] = struct{}{}

		var compact bytes.Buffer
		if err := json.Compact(&compact, raw.Data); err != nil {
			return nil, 0, fmt.Errorf("compact %s: %w", raw.Source, err)
		}
		bundle.Records = append(bundle.Records, compact.Bytes())
	}

	data, err := json.Marshal(bundle)
	if err != nil {
		return nil, 0, fmt.Errorf("encode bundle: %w", err)
	}
	return data, len(bundle.Records), nil
}
