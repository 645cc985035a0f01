package storage

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"path"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type putObjectAPI interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
}

// S3Store uploads console exports to a bucket instead of the local disk.
type S3Store struct {
	client putObjectAPI
	bucket string
	prefix string
}

// NewS3Store loads the default AWS credential chain for region. bucket may
// carry a key prefix ("exports/nexus").
func NewS3Store(ctx context.Context, region, bucket string) (*S3Store, error) {
	name, prefix := splitBucket(bucket)
	if name == "" {
		return nil, errors.New("storage: bucket is required")
	}
	opts := []func(*awsconfig.LoadOptions) error{}
	if region = strings.TrimSpace(region); region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}
	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("storage: load aws config: %w", err)
	}
	return newS3Store(s3.NewFromConfig(cfg), name, prefix), nil
}

func newS3Store(client putObjectAPI, bucket, prefix string) *S3Store {
	return &S3Store{client: client, bucket: bucket, prefix: strings.Trim(prefix, "/")}
}

// Write uploads data and returns its s3:// location.
func (s *S3Store) Write(ctx context.Context, key string, data []byte) (string, error) {
	cleanKey, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	if s.prefix != "" {
		cleanKey = s.prefix + "/" + cleanKey
	}
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:        aws.String(s.bucket),
		Key:           aws.String(cleanKey),
		Body:          bytes.NewReader(data),
		ContentLength: aws.Int64(int64(len(data))),
		ContentType:   aws.String(contentTypeFor(cleanKey, data)),
	})
	if err != nil {
		return "", fmt.Errorf("s3 upload %s/%s: %w", s.bucket, cleanKey, err)
	}
	return "s3://" + s.bucket + "/" + cleanKey, nil
}

func splitBucket(raw string) (string, string) {
	raw = strings.Trim(strings.TrimPrefix(strings.TrimSpace(raw), "s3://"), "/")
	name, prefix, _ := strings.Cut(raw, "/")
	return name, prefix
}

func contentTypeFor(key string, data []byte) string {
	ext := strings.ToLower(path.Ext(key))
	if ext == ".zip" {
		return "application/zip"
	}
	if ct := mime.TypeByExtension(ext); ct != "" {
		return ct
	}
	return http.DetectContentType(data)
}

var _ Sink = (*S3Store)(nil)
