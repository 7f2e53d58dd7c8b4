package s3store

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"

	"github.com/polyscout/polyscout/internal/domain"
)

// Store implements domain.SnapshotStore on an S3-compatible bucket.
type Store struct {
	client *s3.Client
	bucket string
}

// NewStore creates a Store backed by the given client's bucket.
func NewStore(c *Client) *Store {
	return &Store{
		client: c.s3,
		bucket: c.bucket,
	}
}

// Put uploads data as a single PutObject request. Snapshot paths embed the
// run timestamp, so each run writes a fresh object and nothing is ever
// overwritten in practice.
func (s *Store) Put(ctx context.Context, path string, data []byte) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(s.bucket),
		Key:         aws.String(path),
		Body:        bytes.NewReader(data),
		ContentType: aws.String("application/json"),
	})
	if err != nil {
		return fmt.Errorf("s3store: put object %s: %w", path, err)
	}
	return nil
}

// Get retrieves the object at the given path. Returns domain.ErrNotFound if
// the object does not exist.
func (s *Store) Get(ctx context.Context, path string) ([]byte, error) {
	output, err := s.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(s.bucket),
		Key:    aws.String(path),
	})
	if err != nil {
		if isNotFound(err) {
			return nil, fmt.Errorf("s3store: get %s: %w", path, domain.ErrNotFound)
		}
		return nil, fmt.Errorf("s3store: get %s: %w", path, err)
	}
	defer output.Body.Close()

	data, err := io.ReadAll(output.Body)
	if err != nil {
		return nil, fmt.Errorf("s3store: read %s: %w", path, err)
	}
	return data, nil
}

// List returns metadata for all objects whose key starts with the given
// prefix. It handles pagination transparently, following ContinuationTokens
// until all matching objects have been collected.
func (s *Store) List(ctx context.Context, prefix string) ([]domain.SnapshotInfo, error) {
	var infos []domain.SnapshotInfo

	paginator := s3.NewListObjectsV2Paginator(s.client, &s3.ListObjectsV2Input{
		Bucket: aws.String(s.bucket),
		Prefix: aws.String(prefix),
	})

	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("s3store: list prefix %s: %w", prefix, err)
		}

		for _, obj := range page.Contents {
			info := domain.SnapshotInfo{
				Path: aws.ToString(obj.Key),
				Size: aws.ToInt64(obj.Size),
			}
			if obj.LastModified != nil {
				info.LastModified = *obj.LastModified
			}
			infos = append(infos, info)
		}
	}

	return infos, nil
}

// isNotFound returns true when the error indicates the requested S3 object
// does not exist. It checks for both the SDK typed errors and the generic
// 404 some S3-compatible providers return.
func isNotFound(err error) bool {
	var nsk *types.NoSuchKey
	if errors.As(err, &nsk) {
		return true
	}

	var nf *types.NotFound
	if errors.As(err, &nf) {
		return true
	}

	type httpResponseError interface {
		HTTPStatusCode() int
	}
	var httpErr httpResponseError
	if errors.As(err, &httpErr) && httpErr.HTTPStatusCode() == 404 {
		return true
	}

	return false
}
