// Package blobstore stores profile photo bytes and hands back public URLs.
package blobstore

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrNotFound is returned when the referenced object does not exist.
var ErrNotFound = errors.New("blobstore: object not found")

// Store uploads blobs and deletes them by the URL it handed out.
type Store interface {
	Upload(ctx context.Context, key string, data []byte, contentType string) (string, error)
	Delete(ctx context.Context, url string) error
}

// S3API is the slice of the S3 client the store needs.
type S3API interface {
	PutObject(ctx context.Context, params *s3.PutObjectInput, optFns ...func(*s3.Options)) (*s3.PutObjectOutput, error)
	DeleteObject(ctx context.Context, params *s3.DeleteObjectInput, optFns ...func(*s3.Options)) (*s3.DeleteObjectOutput, error)
}

// S3Store persists blobs to an S3 bucket.
type S3Store struct {
	client    S3API
	bucket    string
	urlPrefix string
}

var _ Store = (*S3Store)(nil)

// NewS3Store builds an S3-backed blob store. urlPrefix overrides the public
// URL base, for LocalStack or a CDN in front of the bucket.
func NewS3Store(client S3API, bucket, urlPrefix string) *S3Store {
	if client == nil {
		panic("blobstore: s3 client cannot be nil")
	}
	if bucket == "" {
		panic("blobstore: bucket cannot be empty")
	}
	if urlPrefix == "" {
		urlPrefix = fmt.Sprintf("https://%s.s3.amazonaws.com", bucket)
	}
	return &S3Store{client: client, bucket: bucket, urlPrefix: strings.TrimRight(urlPrefix, "/")}
}

func (s *S3Store) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if key == "" {
		return "", errors.New("blobstore: key required")
	}
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	if err != nil {
		return "", fmt.Errorf("blobstore: failed to upload %s: %w", key, err)
	}
	return s.urlPrefix + "/" + key, nil
}

func (s *S3Store) Delete(ctx context.Context, url string) error {
	key, ok := s.keyFromURL(url)
	if !ok {
		return ErrNotFound
	}
	_, err := s.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return fmt.Errorf("blobstore: failed to delete %s: %w", key, err)
	}
	return nil
}

func (s *S3Store) keyFromURL(url string) (string, bool) {
	if !strings.HasPrefix(url, s.urlPrefix+"/") {
		return "", false
	}
	key := strings.TrimPrefix(url, s.urlPrefix+"/")
	return key, key != ""
}

// InMemoryStore holds blobs in memory for tests and local development.
type InMemoryStore struct {
	mu    sync.RWMutex
	blobs map[string][]byte
}

var _ Store = (*InMemoryStore)(nil)

// NewInMemoryStore creates an empty in-memory blob store.
func NewInMemoryStore() *InMemoryStore {
	return &InMemoryStore{blobs: make(map[string][]byte)}
}

const memoryURLPrefix = "memory://"

func (s *InMemoryStore) Upload(ctx context.Context, key string, data []byte, contentType string) (string, error) {
	if key == "" {
		return "", errors.New("blobstore: key required")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = append([]byte(nil), data...)
	return memoryURLPrefix + key, nil
}

func (s *InMemoryStore) Delete(ctx context.Context, url string) error {
	key := strings.TrimPrefix(url, memoryURLPrefix)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[key]; !ok {
		return ErrNotFound
	}
	delete(s.blobs, key)
	return nil
}

// Get returns stored bytes, for assertions in tests.
func (s *InMemoryStore) Get(key string) ([]byte, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, ok := s.blobs[key]
	return b, ok
}
