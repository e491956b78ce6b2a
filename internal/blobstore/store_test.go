package blobstore

import (
	"context"
	"errors"
	"io"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

type mockS3 struct {
	putInput    *s3.PutObjectInput
	deleteInput *s3.DeleteObjectInput
	putErr      error
}

func (m *mockS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	m.putInput = in
	if m.putErr != nil {
		return nil, m.putErr
	}
	return &s3.PutObjectOutput{}, nil
}

func (m *mockS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	m.deleteInput = in
	return &s3.DeleteObjectOutput{}, nil
}

func TestS3UploadReturnsPublicURL(t *testing.T) {
	mock := &mockS3{}
	store := NewS3Store(mock, "guardian-photos", "")

	url, err := store.Upload(context.Background(), "profile-pictures/u1/123.jpg", []byte("bytes"), "image/jpeg")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if url != "https://guardian-photos.s3.amazonaws.com/profile-pictures/u1/123.jpg" {
		t.Fatalf("unexpected url %q", url)
	}

	if got := aws.ToString(mock.putInput.Key); got != "profile-pictures/u1/123.jpg" {
		t.Fatalf("wrong key %q", got)
	}
	if got := aws.ToString(mock.putInput.ContentType); got != "image/jpeg" {
		t.Fatalf("wrong content type %q", got)
	}
	body, _ := io.ReadAll(mock.putInput.Body)
	if string(body) != "bytes" {
		t.Fatalf("wrong body %q", body)
	}
}

func TestS3UploadError(t *testing.T) {
	mock := &mockS3{putErr: errors.New("denied")}
	store := NewS3Store(mock, "guardian-photos", "")

	if _, err := store.Upload(context.Background(), "k", nil, "image/png"); err == nil {
		t.Fatal("expected upload error")
	}
}

func TestS3DeleteMapsURLToKey(t *testing.T) {
	mock := &mockS3{}
	store := NewS3Store(mock, "guardian-photos", "http://localhost:4566/guardian-photos")

	url, err := store.Upload(context.Background(), "profile-pictures/u1/123.jpg", nil, "image/jpeg")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}

	if err := store.Delete(context.Background(), url); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got := aws.ToString(mock.deleteInput.Key); got != "profile-pictures/u1/123.jpg" {
		t.Fatalf("wrong key %q", got)
	}
}

func TestS3DeleteForeignURL(t *testing.T) {
	store := NewS3Store(&mockS3{}, "guardian-photos", "")

	if err := store.Delete(context.Background(), "https://elsewhere.example.com/pic.jpg"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestInMemoryRoundTrip(t *testing.T) {
	store := NewInMemoryStore()

	url, err := store.Upload(context.Background(), "k1", []byte("photo"), "image/png")
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if b, ok := store.Get("k1"); !ok || string(b) != "photo" {
		t.Fatalf("blob not stored")
	}

	if err := store.Delete(context.Background(), url); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := store.Delete(context.Background(), url); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected not found on second delete, got %v", err)
	}
}
