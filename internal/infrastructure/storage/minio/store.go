package minio

import (
	"context"
	"io"
	"path"
	"time"

	"github.com/minio/minio-go/v7"

	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/monitoring/logging"
	"github.com/Credmatrix/portfolio-management-sub006/pkg/errors"
)

var ErrObjectNotFound = errors.New(errors.ErrCodeNotFound, "object not found")

// UploadInput describes one object to store.
type UploadInput struct {
	Bucket      string
	ObjectKey   string
	Reader      io.Reader
	Size        int64
	ContentType string
	Metadata    map[string]string
}

// UploadResult reports where the object landed.
type UploadResult struct {
	Bucket     string
	ObjectKey  string
	ETag       string
	Size       int64
	UploadedAt time.Time
}

// ObjectInfo is the metadata of a stored object.
type ObjectInfo struct {
	Bucket       string
	ObjectKey    string
	Size         int64
	ContentType  string
	ETag         string
	LastModified time.Time
	Metadata     map[string]string
}

// Store reads and writes objects through a Client. All methods are safe for
// concurrent use.
type Store struct {
	client *Client
	logger logging.Logger
}

// NewStore builds a Store over an established client.
func NewStore(client *Client, logger logging.Logger) *Store {
	return &Store{client: client, logger: logger}
}

// DocumentKey builds the canonical object key for an uploaded document.
func DocumentKey(organizationID, companyID, filename string) string {
	return path.Join(organizationID, companyID, filename)
}

// ReportKey builds the canonical object key for a generated report.
func ReportKey(organizationID, reportID, format string) string {
	return path.Join(organizationID, reportID+"."+format)
}

// Upload stores one object and returns its location.
func (s *Store) Upload(ctx context.Context, in UploadInput) (*UploadResult, error) {
	if in.Bucket == "" || in.ObjectKey == "" {
		return nil, errors.New(errors.ErrCodeValidation, "bucket and object key are required")
	}

	info, err := s.client.api.PutObject(ctx, in.Bucket, in.ObjectKey, in.Reader, in.Size, minio.PutObjectOptions{
		ContentType:  in.ContentType,
		UserMetadata: in.Metadata,
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeDocumentUploadFailed, "storing object")
	}

	s.logger.Debug("object stored",
		logging.String("bucket", in.Bucket),
		logging.String("object_key", in.ObjectKey),
		logging.Int64("size", info.Size))

	return &UploadResult{
		Bucket:     in.Bucket,
		ObjectKey:  info.Key,
		ETag:       info.ETag,
		Size:       info.Size,
		UploadedAt: time.Now().UTC(),
	}, nil
}

// Download reads the full object into memory.
func (s *Store) Download(ctx context.Context, bucket, objectKey string) ([]byte, error) {
	obj, err := s.client.api.GetObject(ctx, bucket, objectKey, minio.GetObjectOptions{})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "opening object")
	}
	defer obj.Close()

	data, err := io.ReadAll(obj)
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrObjectNotFound
		}
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "reading object")
	}
	return data, nil
}

// Stat fetches an object's metadata without reading its body.
func (s *Store) Stat(ctx context.Context, bucket, objectKey string) (*ObjectInfo, error) {
	info, err := s.client.api.StatObject(ctx, bucket, objectKey, minio.StatObjectOptions{})
	if err != nil {
		if minio.ToErrorResponse(err).Code == "NoSuchKey" {
			return nil, ErrObjectNotFound
		}
		return nil, errors.Wrap(err, errors.ErrCodeInternal, "stat object")
	}
	return &ObjectInfo{
		Bucket:       bucket,
		ObjectKey:    objectKey,
		Size:         info.Size,
		ContentType:  info.ContentType,
		ETag:         info.ETag,
		LastModified: info.LastModified,
		Metadata:     info.UserMetadata,
	}, nil
}

// Exists reports whether the object is present.
func (s *Store) Exists(ctx context.Context, bucket, objectKey string) (bool, error) {
	_, err := s.Stat(ctx, bucket, objectKey)
	if err != nil {
		if errors.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

// Delete removes the object. Deleting a missing object is not an error.
func (s *Store) Delete(ctx context.Context, bucket, objectKey string) error {
	if err := s.client.api.RemoveObject(ctx, bucket, objectKey, minio.RemoveObjectOptions{}); err != nil {
		return errors.Wrap(err, errors.ErrCodeInternal, "removing object")
	}
	return nil
}

// PresignedGetURL returns a time-limited download URL. A zero expiry uses
// the configured default.
func (s *Store) PresignedGetURL(ctx context.Context, bucket, objectKey string, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		expiry = s.client.presignExpiry
	}
	u, err := s.client.api.PresignedGetObject(ctx, bucket, objectKey, expiry, nil)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "presigning download")
	}
	return u.String(), nil
}

// PresignedPutURL returns a time-limited upload URL. A zero expiry uses the
// configured default.
func (s *Store) PresignedPutURL(ctx context.Context, bucket, objectKey string, expiry time.Duration) (string, error) {
	if expiry <= 0 {
		expiry = s.client.presignExpiry
	}
	u, err := s.client.api.PresignedPutObject(ctx, bucket, objectKey, expiry)
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeInternal, "presigning upload")
	}
	return u.String(), nil
}
