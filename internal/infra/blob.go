package infra

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"sort"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// S3Config configures the export archive bucket.
type S3Config struct {
	Bucket          string
	Region          string
	Endpoint        string // optional; set for MinIO or other S3-compatible stores
	PathStyle       bool
	AccessKeyID     string // optional; falls back to the default credentials chain
	SecretAccessKey string
	HTTPClient      *http.Client // optional; tests point this at a fake server
}

// S3ConfigFrom builds an S3Config from application config.
func S3ConfigFrom(c *Config) S3Config {
	return S3Config{
		Bucket:    c.ExportS3Bucket,
		Region:    c.ExportS3Region,
		Endpoint:  c.ExportS3Endpoint,
		PathStyle: c.ExportS3PathStyle,
	}
}

// ArchivedObject describes one stored export.
type ArchivedObject struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// S3Store writes export archives to a single bucket.
type S3Store struct {
	client *s3.Client
	bucket string
}

// NewS3Store creates an S3-backed archive store.
func NewS3Store(ctx context.Context, cfg S3Config) (*S3Store, error) {
	if cfg.Bucket == "" {
		return nil, fmt.Errorf("s3 bucket required")
	}
	region := cfg.Region
	if region == "" {
		region = "us-east-1"
	}

	loadOpts := []func(*config.LoadOptions) error{config.WithRegion(region)}
	if cfg.AccessKeyID != "" {
		loadOpts = append(loadOpts, config.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKeyID, cfg.SecretAccessKey, "")))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		o.UsePathStyle = cfg.PathStyle
		if cfg.Endpoint != "" {
			o.BaseEndpoint = aws.String(cfg.Endpoint)
		}
		if cfg.HTTPClient != nil {
			o.HTTPClient = cfg.HTTPClient
		}
	})
	return &S3Store{client: client, bucket: cfg.Bucket}, nil
}

// PutObject uploads body under key.
func (s *S3Store) PutObject(ctx context.Context, key, contentType string, body io.Reader) error {
	input := &s3.PutObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
		Body:   body,
	}
	if contentType != "" {
		input.ContentType = aws.String(contentType)
	}
	if _, err := s.client.PutObject(ctx, input); err != nil {
		return fmt.Errorf("put s3://%s/%s: %w", s.bucket, key, err)
	}
	return nil
}

// List returns archived objects under prefix, sorted by key.
func (s *S3Store) List(ctx context.Context, prefix string) ([]ArchivedObject, error) {
	var out []ArchivedObject
	var token *string
	for {
		page, err := s.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(s.bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, fmt.Errorf("list s3://%s/%s: %w", s.bucket, prefix, err)
		}
		for _, obj := range page.Contents {
			out = append(out, ArchivedObject{
				Key:          aws.ToString(obj.Key),
				Size:         aws.ToInt64(obj.Size),
				LastModified: aws.ToTime(obj.LastModified),
			})
		}
		if !aws.ToBool(page.IsTruncated) || page.NextContinuationToken == nil {
			break
		}
		token = page.NextContinuationToken
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
