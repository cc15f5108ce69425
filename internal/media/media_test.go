package media

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// pngHeader alcanza para que mimetype detecte image/png.
var pngHeader = []byte{0x89, 0x50, 0x4E, 0x47, 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0x0D, 'I', 'H', 'D', 'R'}

func writeTempImage(t *testing.T, name string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, pngHeader, 0o600))
	return path
}

type fakeS3 struct {
	input *s3.PutObjectInput
	body  []byte
	err   error
}

func (f *fakeS3) PutObject(_ context.Context, params *s3.PutObjectInput, _ ...func(*s3.Options)) (*s3.PutObjectOutput, error) {
	f.input = params
	if params.Body != nil {
		f.body, _ = io.ReadAll(params.Body)
	}
	if f.err != nil {
		return nil, f.err
	}
	return &s3.PutObjectOutput{}, nil
}

func TestS3Uploader_Upload(t *testing.T) {
	client := &fakeS3{}
	u := NewS3Uploader(client, "media", "https://cdn.example.com/")
	u.now = func() time.Time { return time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC) }

	asset, err := u.Upload(context.Background(), writeTempImage(t, "avatar.PNG"))
	require.NoError(t, err)

	require.NotNil(t, client.input)
	assert.Equal(t, "media", *client.input.Bucket)
	assert.Equal(t, "image/png", *client.input.ContentType)
	assert.Equal(t, int64(len(pngHeader)), *client.input.ContentLength)
	assert.Equal(t, pngHeader, client.body)

	assert.True(t, strings.HasPrefix(asset.Key, "images/2026/10/17/"), asset.Key)
	assert.True(t, strings.HasSuffix(asset.Key, ".png"), asset.Key)
	assert.Equal(t, "https://cdn.example.com/"+asset.Key, asset.URL)
}

func TestS3Uploader_Errors(t *testing.T) {
	u := NewS3Uploader(&fakeS3{err: errors.New("boom")}, "media", "https://cdn.example.com")

	_, err := u.Upload(context.Background(), "  ")
	assert.ErrorIs(t, err, ErrNoFile)

	_, err = u.Upload(context.Background(), filepath.Join(t.TempDir(), "missing.png"))
	assert.Error(t, err)

	_, err = u.Upload(context.Background(), writeTempImage(t, "a.png"))
	assert.ErrorContains(t, err, "put object")
}

func TestS3Options_PublicURLBase(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com", S3Options{PublicBaseURL: "https://cdn.example.com/"}.PublicURLBase())
	assert.Equal(t, "http://minio:9000/media", S3Options{BaseEndpoint: "http://minio:9000", Bucket: "media"}.PublicURLBase())
	assert.Equal(t, "https://media.s3.eu-west-1.amazonaws.com", S3Options{Bucket: "media", Region: "eu-west-1"}.PublicURLBase())
}

func TestLocalUploader_Upload(t *testing.T) {
	dir := t.TempDir()
	u, err := NewLocalUploader(dir, "/media")
	require.NoError(t, err)

	asset, err := u.Upload(context.Background(), writeTempImage(t, "cover"))
	require.NoError(t, err)
	assert.Equal(t, "image/png", asset.ContentType)
	assert.True(t, strings.HasSuffix(asset.Key, ".png"), asset.Key)
	assert.Equal(t, "/media/"+asset.Key, asset.URL)

	stored, err := os.ReadFile(filepath.Join(dir, filepath.FromSlash(asset.Key)))
	require.NoError(t, err)
	assert.Equal(t, pngHeader, stored)
}

func TestLocalUploader_CanceledContext(t *testing.T) {
	u, err := NewLocalUploader(t.TempDir(), "/media")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = u.Upload(ctx, writeTempImage(t, "a.png"))
	assert.ErrorIs(t, err, context.Canceled)
}

func writeTempFile(t *testing.T, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, content, 0o600))
	return path
}

func TestUploaders_RejectNonImages(t *testing.T) {
	html := writeTempFile(t, "evil.png", []byte("<!DOCTYPE html><html><script>alert(1)</script></html>"))

	client := &fakeS3{}
	_, err := NewS3Uploader(client, "media", "https://cdn.example.com").Upload(context.Background(), html)
	assert.ErrorIs(t, err, ErrUnsupportedType)
	assert.Nil(t, client.input, "nothing must reach the bucket")

	dir := t.TempDir()
	local, err := NewLocalUploader(dir, "/media")
	require.NoError(t, err)
	_, err = local.Upload(context.Background(), html)
	assert.ErrorIs(t, err, ErrUnsupportedType)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestLocalUploader_ExtensionFromContent(t *testing.T) {
	u, err := NewLocalUploader(t.TempDir(), "/media")
	require.NoError(t, err)

	asset, err := u.Upload(context.Background(), writeTempImage(t, "avatar.html"))
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(asset.Key, ".png"), asset.Key)
	assert.Equal(t, "image/png", asset.ContentType)
}
