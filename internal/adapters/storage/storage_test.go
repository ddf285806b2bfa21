package storage

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/s3/types"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ammerola/pharmacy-be/internal/core/domain"
	"github.com/ammerola/pharmacy-be/internal/pkg/config"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newLocal(t *testing.T) (*LocalStorage, string) {
	t.Helper()
	dir := t.TempDir()
	ls, err := NewLocalStorage(dir, testLogger())
	require.NoError(t, err)
	return ls, dir
}

func TestLocalStorage_RoundTrip(t *testing.T) {
	ctx := context.Background()
	ls, dir := newLocal(t)

	location, err := ls.Upload(ctx, "imports/2024/05/01/a.xlsx", strings.NewReader("sheet"), "")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(location, "file://"))
	assert.FileExists(t, filepath.Join(dir, "imports", "2024", "05", "01", "a.xlsx"))

	data, err := ls.Download(ctx, "imports/2024/05/01/a.xlsx")
	require.NoError(t, err)
	assert.Equal(t, "sheet", string(data))

	require.NoError(t, ls.Delete(ctx, "imports/2024/05/01/a.xlsx"))
	require.NoError(t, ls.Delete(ctx, "imports/2024/05/01/a.xlsx"), "deleting twice is fine")

	_, err = ls.Download(ctx, "imports/2024/05/01/a.xlsx")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLocalStorage_KeysStayInsideBase(t *testing.T) {
	ctx := context.Background()
	ls, dir := newLocal(t)

	_, err := ls.Upload(ctx, "../../etc/escape.txt", strings.NewReader("x"), "")
	require.NoError(t, err)
	assert.FileExists(t, filepath.Join(dir, "etc", "escape.txt"))

	_, err = ls.Upload(ctx, "/", strings.NewReader("x"), "")
	assert.ErrorIs(t, err, domain.ErrValidation)
}

func TestLocalStorage_ListBefore(t *testing.T) {
	ctx := context.Background()
	ls, dir := newLocal(t)
	now := time.Now()

	for _, key := range []string{"imports/old.pdf", "imports/new.pdf", "other/old.pdf"} {
		_, err := ls.Upload(ctx, key, strings.NewReader("x"), "")
		require.NoError(t, err)
	}
	old := now.Add(-48 * time.Hour)
	require.NoError(t, os.Chtimes(filepath.Join(dir, "imports", "old.pdf"), old, old))
	require.NoError(t, os.Chtimes(filepath.Join(dir, "other", "old.pdf"), old, old))

	keys, err := ls.ListBefore(ctx, ImportPrefix, now.Add(-24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, []string{"imports/old.pdf"}, keys)

	keys, err = ls.ListBefore(ctx, "missing/", now)
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestImportKey(t *testing.T) {
	orderID := uuid.New()
	at := time.Date(2024, 3, 9, 23, 30, 0, 0, time.UTC)

	key := ImportKey(orderID, "Invoice.XLSX", at)

	assert.True(t, strings.HasPrefix(key, "imports/2024/03/09/"+orderID.String()+"/"), key)
	assert.True(t, strings.HasSuffix(key, ".xlsx"), key)
	assert.NotEqual(t, key, ImportKey(orderID, "Invoice.XLSX", at))
}

func TestNew_SelectsDriver(t *testing.T) {
	ctx := context.Background()

	store, err := New(ctx, &config.Config{Storage: config.StorageConfig{Driver: "local", LocalDir: t.TempDir()}}, testLogger())
	require.NoError(t, err)
	assert.IsType(t, &LocalStorage{}, store)

	_, err = New(ctx, &config.Config{Storage: config.StorageConfig{Driver: "ftp"}}, testLogger())
	assert.Error(t, err)
}

// fakeS3 answers the calls S3Storage makes without a network
type fakeS3 struct {
	objectAPI
	pages      []*s3.ListObjectsV2Output
	listCalls  int
	deleted    []string
	headErr    error
	created    *s3.CreateBucketInput
	deleteErr  error
	putObjects map[string][]byte
}

func (f *fakeS3) ListObjectsV2(_ context.Context, in *s3.ListObjectsV2Input, _ ...func(*s3.Options)) (*s3.ListObjectsV2Output, error) {
	page := f.pages[f.listCalls]
	f.listCalls++
	return page, nil
}

func (f *fakeS3) DeleteObject(_ context.Context, in *s3.DeleteObjectInput, _ ...func(*s3.Options)) (*s3.DeleteObjectOutput, error) {
	if f.deleteErr != nil {
		return nil, f.deleteErr
	}
	f.deleted = append(f.deleted, aws.ToString(in.Key))
	return &s3.DeleteObjectOutput{}, nil
}

func (f *fakeS3) HeadBucket(context.Context, *s3.HeadBucketInput, ...func(*s3.Options)) (*s3.HeadBucketOutput, error) {
	if f.headErr != nil {
		return nil, f.headErr
	}
	return &s3.HeadBucketOutput{}, nil
}

func (f *fakeS3) CreateBucket(_ context.Context, in *s3.CreateBucketInput, _ ...func(*s3.Options)) (*s3.CreateBucketOutput, error) {
	f.created = in
	return &s3.CreateBucketOutput{}, nil
}

func (f *fakeS3) PutObject(_ context.Context, in *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, in.Body); err != nil {
		return nil, err
	}
	if f.putObjects == nil {
		f.putObjects = make(map[string][]byte)
	}
	f.putObjects[aws.ToString(in.Key)] = buf.Bytes()
	return &s3.PutObjectOutput{}, nil
}

func TestS3Storage_ListBefore(t *testing.T) {
	cutoff := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	fake := &fakeS3{pages: []*s3.ListObjectsV2Output{
		{
			Contents: []types.Object{
				{Key: aws.String("imports/a.pdf"), LastModified: aws.Time(cutoff.Add(-time.Hour))},
				{Key: aws.String("imports/b.pdf"), LastModified: aws.Time(cutoff.Add(time.Hour))},
				{Key: aws.String("imports/no-date.pdf")},
			},
			IsTruncated:           true,
			NextContinuationToken: aws.String("page-2"),
		},
		{
			Contents: []types.Object{
				{Key: aws.String("imports/c.xlsx"), LastModified: aws.Time(cutoff.Add(-24 * time.Hour))},
			},
		},
	}}
	store := newS3Storage(fake, "uploads", "us-east-1", testLogger())

	keys, err := store.ListBefore(context.Background(), ImportPrefix, cutoff)

	require.NoError(t, err)
	assert.Equal(t, []string{"imports/a.pdf", "imports/c.xlsx"}, keys)
	assert.Equal(t, 2, fake.listCalls)
}

func TestS3Storage_Delete(t *testing.T) {
	fake := &fakeS3{}
	store := newS3Storage(fake, "uploads", "us-east-1", testLogger())

	require.NoError(t, store.Delete(context.Background(), "imports/a.pdf"))
	assert.Equal(t, []string{"imports/a.pdf"}, fake.deleted)

	fake.deleteErr = errors.New("access denied")
	assert.Error(t, store.Delete(context.Background(), "imports/b.pdf"))
}

func TestS3Storage_Upload(t *testing.T) {
	fake := &fakeS3{}
	store := newS3Storage(fake, "uploads", "us-east-1", testLogger())

	_, err := store.Upload(context.Background(), "imports/a.csv", strings.NewReader("a,b"), "")
	require.NoError(t, err)
	assert.Equal(t, []byte("a,b"), fake.putObjects["imports/a.csv"])
}

func TestS3Storage_EnsureBucket(t *testing.T) {
	tests := []struct {
		name       string
		region     string
		headErr    error
		wantCreate bool
		wantLoc    types.BucketLocationConstraint
	}{
		{name: "existing_bucket_is_left_alone", region: "eu-west-1"},
		{name: "missing_bucket_in_us_east_1", region: "us-east-1", headErr: errors.New("not found"), wantCreate: true},
		{name: "missing_bucket_elsewhere_sets_location", region: "eu-west-1", headErr: errors.New("not found"), wantCreate: true, wantLoc: "eu-west-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fake := &fakeS3{headErr: tt.headErr}
			store := newS3Storage(fake, "uploads", tt.region, testLogger())

			require.NoError(t, store.ensureBucket(context.Background()))

			if !tt.wantCreate {
				assert.Nil(t, fake.created)
				return
			}
			require.NotNil(t, fake.created)
			if tt.wantLoc == "" {
				assert.Nil(t, fake.created.CreateBucketConfiguration)
			} else {
				assert.Equal(t, tt.wantLoc, fake.created.CreateBucketConfiguration.LocationConstraint)
			}
		})
	}
}

func TestContentTypeFor(t *testing.T) {
	assert.Equal(t, "text/plain", contentTypeFor("a.pdf", "text/plain"))
	assert.Equal(t, "application/pdf", contentTypeFor("a.pdf", ""))
	assert.Equal(t, "application/octet-stream", contentTypeFor("a.unknownext", ""))
}
