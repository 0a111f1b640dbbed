// Package minio stores portfolio media in MinIO or any S3-compatible
// service reachable through minio-go.
package minio

import (
	"bytes"
	"context"
	"fmt"
	"path"

	"github.com/artpar/portfolio/internal/blob"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// Options describes how to reach a MinIO endpoint.
type Options struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Secure    bool
	Region    string
}

// Dial creates a MinIO client.
func Dial(opts Options) (*minio.Client, error) {
	client, err := minio.New(opts.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(opts.AccessKey, opts.SecretKey, ""),
		Secure: opts.Secure,
		Region: opts.Region,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create minio client: %w", err)
	}
	return client, nil
}

// Store implements blob.Store on a MinIO bucket.
type Store struct {
	client  *minio.Client
	bucket  string
	prefix  string
	baseURL string
}

// NewStore creates a store writing under rootPrefix in bucket. When
// baseURL is empty, URLs point at the client endpoint.
func NewStore(client *minio.Client, bucket, rootPrefix, baseURL string) *Store {
	if baseURL == "" {
		baseURL = client.EndpointURL().String() + "/" + bucket
	}
	return &Store{
		client:  client,
		bucket:  bucket,
		prefix:  rootPrefix,
		baseURL: baseURL,
	}
}

func (s *Store) key(name string) string {
	return path.Join(s.prefix, name)
}

// EnsureBucket creates the bucket if it does not exist.
func (s *Store) EnsureBucket(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("failed to check bucket %s: %w", s.bucket, err)
	}
	if exists {
		return nil
	}
	if err := s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		return fmt.Errorf("failed to create bucket %s: %w", s.bucket, err)
	}
	return nil
}

// Put uploads data and returns its public URL.
func (s *Store) Put(ctx context.Context, objectPath string, data []byte, contentType string) (string, error) {
	p, err := blob.Clean(objectPath)
	if err != nil {
		return "", err
	}

	key := s.key(p)
	_, err = s.client.PutObject(ctx, s.bucket, key, bytes.NewReader(data), int64(len(data)), minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload %s: %w", key, err)
	}

	return blob.PublicURL(s.baseURL, key), nil
}

// Delete removes an object. Missing objects are ignored.
func (s *Store) Delete(ctx context.Context, objectPath string) error {
	p, err := blob.Clean(objectPath)
	if err != nil {
		return err
	}
	key := s.key(p)
	err = s.client.RemoveObject(ctx, s.bucket, key, minio.RemoveObjectOptions{})
	if err != nil {
		errResp := minio.ToErrorResponse(err)
		if errResp.Code == "NoSuchKey" || errResp.Code == "NotFound" {
			return nil
		}
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
