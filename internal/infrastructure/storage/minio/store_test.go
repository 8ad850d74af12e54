package minio

import (
	"bytes"
	"context"
	"io"
	"net/url"
	"testing"
	"time"

	miniogo "github.com/minio/minio-go/v7"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Credmatrix/portfolio-management-sub006/internal/infrastructure/monitoring/logging"
	"github.com/Credmatrix/portfolio-management-sub006/pkg/errors"
)

type storedObject struct {
	data        []byte
	contentType string
	metadata    map[string]string
}

type fakeObjectAPI struct {
	buckets map[string]bool
	objects map[string]storedObject // key: bucket + "/" + objectKey
	putErr  error
}

func newFakeObjectAPI() *fakeObjectAPI {
	return &fakeObjectAPI{
		buckets: map[string]bool{"company-documents": true, "portfolio-reports": true},
		objects: map[string]storedObject{},
	}
}

func (f *fakeObjectAPI) ListBuckets(_ context.Context) ([]miniogo.BucketInfo, error) {
	out := make([]miniogo.BucketInfo, 0, len(f.buckets))
	for name := range f.buckets {
		out = append(out, miniogo.BucketInfo{Name: name})
	}
	return out, nil
}

func (f *fakeObjectAPI) BucketExists(_ context.Context, bucketName string) (bool, error) {
	return f.buckets[bucketName], nil
}

func (f *fakeObjectAPI) MakeBucket(_ context.Context, bucketName string, _ miniogo.MakeBucketOptions) error {
	f.buckets[bucketName] = true
	return nil
}

func (f *fakeObjectAPI) PutObject(_ context.Context, bucketName, objectName string, reader io.Reader, _ int64, opts miniogo.PutObjectOptions) (miniogo.UploadInfo, error) {
	if f.putErr != nil {
		return miniogo.UploadInfo{}, f.putErr
	}
	data, err := io.ReadAll(reader)
	if err != nil {
		return miniogo.UploadInfo{}, err
	}
	f.objects[bucketName+"/"+objectName] = storedObject{
		data:        data,
		contentType: opts.ContentType,
		metadata:    opts.UserMetadata,
	}
	return miniogo.UploadInfo{
		Bucket: bucketName,
		Key:    objectName,
		ETag:   "etag-1",
		Size:   int64(len(data)),
	}, nil
}

func (f *fakeObjectAPI) GetObject(_ context.Context, _, _ string, _ miniogo.GetObjectOptions) (*miniogo.Object, error) {
	return nil, miniogo.ErrorResponse{Code: "NoSuchKey"}
}

func (f *fakeObjectAPI) StatObject(_ context.Context, bucketName, objectName string, _ miniogo.StatObjectOptions) (miniogo.ObjectInfo, error) {
	obj, ok := f.objects[bucketName+"/"+objectName]
	if !ok {
		return miniogo.ObjectInfo{}, miniogo.ErrorResponse{Code: "NoSuchKey"}
	}
	return miniogo.ObjectInfo{
		Key:          objectName,
		Size:         int64(len(obj.data)),
		ContentType:  obj.contentType,
		ETag:         "etag-1",
		LastModified: time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC),
		UserMetadata: obj.metadata,
	}, nil
}

func (f *fakeObjectAPI) RemoveObject(_ context.Context, bucketName, objectName string, _ miniogo.RemoveObjectOptions) error {
	delete(f.objects, bucketName+"/"+objectName)
	return nil
}

func (f *fakeObjectAPI) PresignedGetObject(_ context.Context, bucketName, objectName string, _ time.Duration, _ url.Values) (*url.URL, error) {
	return url.Parse("https://storage.local/" + bucketName + "/" + objectName + "?sig=get")
}

func (f *fakeObjectAPI) PresignedPutObject(_ context.Context, bucketName, objectName string, _ time.Duration) (*url.URL, error) {
	return url.Parse("https://storage.local/" + bucketName + "/" + objectName + "?sig=put")
}

func newTestStore(api ObjectAPI) *Store {
	client := &Client{
		api:           api,
		documents:     "company-documents",
		reports:       "portfolio-reports",
		presignExpiry: time.Hour,
		logger:        logging.NewNopLogger(),
	}
	return NewStore(client, logging.NewNopLogger())
}

func TestStoreUploadAndStat(t *testing.T) {
	api := newFakeObjectAPI()
	store := newTestStore(api)

	key := DocumentKey("org-1", "cmp-1", "financials.zip")
	res, err := store.Upload(context.Background(), UploadInput{
		Bucket:      "company-documents",
		ObjectKey:   key,
		Reader:      bytes.NewReader([]byte("zip bytes")),
		Size:        9,
		ContentType: "application/zip",
		Metadata:    map[string]string{"request_id": "req-1"},
	})
	require.NoError(t, err)
	assert.Equal(t, "company-documents", res.Bucket)
	assert.Equal(t, "org-1/cmp-1/financials.zip", res.ObjectKey)
	assert.Equal(t, int64(9), res.Size)

	info, err := store.Stat(context.Background(), "company-documents", key)
	require.NoError(t, err)
	assert.Equal(t, "application/zip", info.ContentType)
	assert.Equal(t, int64(9), info.Size)
	assert.Equal(t, "req-1", info.Metadata["request_id"])
}

func TestStoreUploadValidation(t *testing.T) {
	store := newTestStore(newFakeObjectAPI())

	_, err := store.Upload(context.Background(), UploadInput{ObjectKey: "k"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeValidation))
}

func TestStoreUploadFailure(t *testing.T) {
	api := newFakeObjectAPI()
	api.putErr = miniogo.ErrorResponse{Code: "AccessDenied"}
	store := newTestStore(api)

	_, err := store.Upload(context.Background(), UploadInput{
		Bucket:    "company-documents",
		ObjectKey: "org-1/cmp-1/doc.pdf",
		Reader:    bytes.NewReader(nil),
	})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeDocumentUploadFailed))
}

func TestStoreStatMissingObject(t *testing.T) {
	store := newTestStore(newFakeObjectAPI())

	_, err := store.Stat(context.Background(), "company-documents", "absent")
	assert.ErrorIs(t, err, ErrObjectNotFound)
}

func TestStoreExists(t *testing.T) {
	api := newFakeObjectAPI()
	store := newTestStore(api)

	_, err := store.Upload(context.Background(), UploadInput{
		Bucket:    "company-documents",
		ObjectKey: "org-1/cmp-1/doc.pdf",
		Reader:    bytes.NewReader([]byte("pdf")),
		Size:      3,
	})
	require.NoError(t, err)

	ok, err := store.Exists(context.Background(), "company-documents", "org-1/cmp-1/doc.pdf")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = store.Exists(context.Background(), "company-documents", "absent")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestStoreDelete(t *testing.T) {
	api := newFakeObjectAPI()
	store := newTestStore(api)

	_, err := store.Upload(context.Background(), UploadInput{
		Bucket:    "portfolio-reports",
		ObjectKey: ReportKey("org-1", "rep-1", "json"),
		Reader:    bytes.NewReader([]byte("{}")),
		Size:      2,
	})
	require.NoError(t, err)

	require.NoError(t, store.Delete(context.Background(), "portfolio-reports", "org-1/rep-1.json"))

	ok, err := store.Exists(context.Background(), "portfolio-reports", "org-1/rep-1.json")
	require.NoError(t, err)
	assert.False(t, ok)

	// Deleting an absent object succeeds.
	require.NoError(t, store.Delete(context.Background(), "portfolio-reports", "absent"))
}

func TestStorePresignedURLs(t *testing.T) {
	store := newTestStore(newFakeObjectAPI())

	get, err := store.PresignedGetURL(context.Background(), "portfolio-reports", "org-1/rep-1.json", 0)
	require.NoError(t, err)
	assert.Contains(t, get, "portfolio-reports/org-1/rep-1.json")
	assert.Contains(t, get, "sig=get")

	put, err := store.PresignedPutURL(context.Background(), "company-documents", "org-1/cmp-1/doc.pdf", 15*time.Minute)
	require.NoError(t, err)
	assert.Contains(t, put, "sig=put")
}

func TestObjectKeys(t *testing.T) {
	assert.Equal(t, "org-1/cmp-1/doc.pdf", DocumentKey("org-1", "cmp-1", "doc.pdf"))
	assert.Equal(t, "org-1/rep-1.csv", ReportKey("org-1", "rep-1", "csv"))
}
