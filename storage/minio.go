package storage

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/minio/minio-go/v7"
)

// MinioStore is a Store backed by a MinIO (or any S3-compatible)
// bucket. Object URLs take the shape <baseURL>/<bucket>/<object>.
type MinioStore struct {
	client  *minio.Client
	bucket  string
	baseURL string
}

// NewMinioStore creates a MinioStore. baseURL is the externally
// reachable endpoint used to build object URLs, without a trailing
// slash (e.g. "https://cdn.example.com").
func NewMinioStore(client *minio.Client, bucket, baseURL string) *MinioStore {
	return &MinioStore{
		client:  client,
		bucket:  bucket,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// Put uploads the stream and returns its public URL.
func (s *MinioStore) Put(ctx context.Context, r io.Reader, size int64, name, contentType string) (string, error) {
	_, err := s.client.PutObject(ctx, s.bucket, name, r, size, minio.PutObjectOptions{
		ContentType: contentType,
	})
	if err != nil {
		return "", fmt.Errorf("storage: uploading %s: %w", name, err)
	}

	return s.baseURL + "/" + s.bucket + "/" + name, nil
}

// Remove deletes the object addressed by fileURL. The bucket and object
// name are recovered from the URL path, so the URL's host does not have
// to match the endpoint the client connects to.
func (s *MinioStore) Remove(ctx context.Context, fileURL string) error {
	bucket, object, err := splitObjectURL(fileURL)
	if err != nil {
		return err
	}

	if err := s.client.RemoveObject(ctx, bucket, object, minio.RemoveObjectOptions{}); err != nil {
		return fmt.Errorf("storage: removing %s: %w", object, err)
	}
	return nil
}

// splitObjectURL parses an object URL into its bucket and
// percent-decoded object name.
func splitObjectURL(fileURL string) (bucket, object string, err error) {
	u, err := url.Parse(fileURL)
	if err != nil {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidURL, fileURL)
	}

	p := strings.TrimPrefix(u.Path, "/")
	i := strings.Index(p, "/")
	if i <= 0 || i == len(p)-1 {
		return "", "", fmt.Errorf("%w: %s", ErrInvalidURL, fileURL)
	}

	bucket = p[:i]
	object = p[i+1:]
	if decoded, decErr := url.PathUnescape(object); decErr == nil {
		object = decoded
	}
	return bucket, object, nil
}
