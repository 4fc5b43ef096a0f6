// Package s3store keeps each record as a JSON document in an S3 bucket at
// <prefix><table>/<key>.json. Works against AWS S3 and S3-compatible servers.
package s3store

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	aws "github.com/aws/aws-sdk-go-v2/aws"
	awshttp "github.com/aws/aws-sdk-go-v2/aws/transport/http"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/light-bringer/syncable/internal/app/syncable/gateway"
)

// ErrDuplicateKey is returned when an added record already has a document.
var ErrDuplicateKey = errors.New("duplicate key")

const contentType = "application/json"

// Config holds construction parameters. Credentials fall back to the default
// AWS chain when AccessKeyID is empty.
type Config struct {
	Region          string
	Bucket          string
	Prefix          string
	Endpoint        string // optional; enables a custom endpoint (e.g. MinIO)
	AccessKeyID     string
	SecretAccessKey string
	PathStyle       bool
}

// Store hands out sessions on one bucket.
type Store struct {
	client *s3.Client
	bucket string
	prefix string
}

// New creates a Store from Config.
func New(ctx context.Context, cfg Config) (*Store, error) {
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
	})
	return NewWithClient(client, cfg.Bucket, cfg.Prefix), nil
}

// NewWithClient wraps an existing client.
func NewWithClient(client *s3.Client, bucket, prefix string) *Store {
	return &Store{client: client, bucket: bucket, prefix: prefix}
}

// Factory returns a gateway.Factory producing sessions on s.
func (s *Store) Factory() gateway.Factory {
	return func(context.Context) (gateway.Session, error) {
		return newSession(s), nil
	}
}

// ObjectKey returns the object key of a record.
func (s *Store) ObjectKey(table, key string) string {
	return fmt.Sprintf("%s%s/%s.json", s.prefix, table, key)
}

func (s *Store) get(ctx context.Context, table, key string) (gateway.Row, bool, error) {
	objKey := s.ObjectKey(table, key)
	out, err := s.client.GetObject(ctx, &s3.GetObjectInput{Bucket: &s.bucket, Key: &objKey})
	if isNotFound(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("get %s: %w", objKey, err)
	}
	defer func() { _ = out.Body.Close() }()

	body, err := io.ReadAll(out.Body)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", objKey, err)
	}
	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()
	row := gateway.Row{}
	if err := dec.Decode(&row); err != nil {
		return nil, false, fmt.Errorf("decode %s: %w", objKey, err)
	}
	return row, true, nil
}

func (s *Store) exists(ctx context.Context, table, key string) (bool, error) {
	objKey := s.ObjectKey(table, key)
	_, err := s.client.HeadObject(ctx, &s3.HeadObjectInput{Bucket: &s.bucket, Key: &objKey})
	if isNotFound(err) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("head %s: %w", objKey, err)
	}
	return true, nil
}

func (s *Store) put(ctx context.Context, table, key string, row gateway.Row) error {
	objKey := s.ObjectKey(table, key)
	body, err := json.Marshal(row)
	if err != nil {
		return fmt.Errorf("encode %s: %w", objKey, err)
	}
	ct := contentType
	_, err = s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &objKey,
		Body:        bytes.NewReader(body),
		ContentType: &ct,
	})
	if err != nil {
		return fmt.Errorf("put %s: %w", objKey, err)
	}
	return nil
}

func (s *Store) delete(ctx context.Context, table, key string) error {
	objKey := s.ObjectKey(table, key)
	if _, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{Bucket: &s.bucket, Key: &objKey}); err != nil {
		return fmt.Errorf("delete %s: %w", objKey, err)
	}
	return nil
}

func isNotFound(err error) bool {
	var re *awshttp.ResponseError
	return errors.As(err, &re) && re.HTTPStatusCode() == http.StatusNotFound
}
