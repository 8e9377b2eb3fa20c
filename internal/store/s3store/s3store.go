// Package s3store keeps the cylinder table as a single CSV object in an
// S3-compatible bucket (AWS S3 or MinIO). One object holds the whole table;
// WriteAll replaces it.
package s3store

import (
	"bytes"
	"context"
	"fmt"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/workjay-it/lpgtrack/internal/store/csvcodec"
	"github.com/workjay-it/lpgtrack/pkg/types"
)

const (
	defaultRegion = "ap-south-1"
	defaultKey    = "cylinders.csv"

	contentTypeCSV = "text/csv"
)

// Store reads and rewrites one object in one bucket.
type Store struct {
	client *s3.Client
	bucket string
	key    string
}

var (
	_ types.Store      = (*Store)(nil)
	_ types.BulkWriter = (*Store)(nil)
)

// New builds the client from cfg. When AccessKeyID is empty the SDK default
// credential chain applies, so instance roles and AWS_* variables keep
// working. Endpoint and PathStyle are for S3-compatible servers.
func New(ctx context.Context, cfg types.S3Config) (*Store, error) {
	if cfg.Bucket == "" {
		return nil, types.ErrS3BucketEmpty
	}
	key := cfg.Key
	if key == "" {
		key = defaultKey
	}
	region := cfg.Region
	if region == "" {
		region = defaultRegion
	}
	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("loading aws config: %w", err)
	}
	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.PathStyle {
			o.UsePathStyle = true
		}
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
	})
	return &Store{client: client, bucket: cfg.Bucket, key: key}, nil
}

// ReadAll fetches and parses the object. A missing object or failed fetch
// surfaces as ErrStoreUnavailable.
func (s *Store) ReadAll(ctx context.Context) (types.CylinderTable, error) {
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &s.key})
	if err != nil {
		return nil, fmt.Errorf("%w: get s3://%s/%s: %v", types.ErrStoreUnavailable, s.bucket, s.key, err)
	}
	defer out.Body.Close()

	table, err := csvcodec.ReadTable(out.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: parse s3://%s/%s: %v", types.ErrStoreUnavailable, s.bucket, s.key, err)
	}
	return table, nil
}

// WriteAll replaces the object with the given table.
func (s *Store) WriteAll(ctx context.Context, table types.CylinderTable) error {
	var buf bytes.Buffer
	if err := csvcodec.WriteTable(&buf, table); err != nil {
		return err
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &s.key,
		Body:        bytes.NewReader(buf.Bytes()),
		ContentType: aws.String(contentTypeCSV),
	})
	if err != nil {
		return fmt.Errorf("putting s3://%s/%s: %w", s.bucket, s.key, err)
	}
	return nil
}

// Close releases nothing; the SDK client holds no connections of its own.
func (s *Store) Close() error { return nil }
