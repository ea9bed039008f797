package storage

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalUploadAndDelete(t *testing.T) {
	root := t.TempDir()
	disk, err := NewLocal(root, "/media/")
	require.NoError(t, err)
	ctx := context.Background()

	body := "image bytes"
	require.NoError(t, disk.Upload(ctx, "posts/1/cover.jpg", "image/jpeg", strings.NewReader(body), int64(len(body))))

	data, err := os.ReadFile(filepath.Join(root, "posts", "1", "cover.jpg"))
	require.NoError(t, err)
	assert.Equal(t, body, string(data))
	assert.Equal(t, "/media/posts/1/cover.jpg", disk.FileURL("posts/1/cover.jpg"))
	assert.Equal(t, "local", disk.Name())

	require.NoError(t, disk.Delete(ctx, "posts/1/cover.jpg"))
	_, err = os.Stat(filepath.Join(root, "posts", "1", "cover.jpg"))
	assert.True(t, os.IsNotExist(err))

	// Deleting twice is fine.
	require.NoError(t, disk.Delete(ctx, "posts/1/cover.jpg"))
}

func TestLocalKeysStayInsideRoot(t *testing.T) {
	root := t.TempDir()
	disk, err := NewLocal(filepath.Join(root, "media"), "/media")
	require.NoError(t, err)

	require.NoError(t, disk.Upload(context.Background(), "../../escape.txt", "text/plain", strings.NewReader("x"), 1))
	_, err = os.Stat(filepath.Join(root, "media", "escape.txt"))
	assert.NoError(t, err, "traversal is clamped to the root")
	_, err = os.Stat(filepath.Join(root, "escape.txt"))
	assert.True(t, os.IsNotExist(err))

	assert.Error(t, disk.Upload(context.Background(), "/", "text/plain", strings.NewReader("x"), 1))
}

func TestNewS3Unconfigured(t *testing.T) {
	disk, err := NewS3(S3Config{})
	require.NoError(t, err)
	assert.Nil(t, disk)
}

func TestS3FileURL(t *testing.T) {
	disk, err := NewS3(S3Config{
		Endpoint:  "https://fsn1.example.com/",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "stories",
	})
	require.NoError(t, err)
	require.NotNil(t, disk)
	assert.Equal(t, "https://fsn1.example.com/stories/a/b.jpg", disk.FileURL("a/b.jpg"))
	assert.Equal(t, "s3", disk.Name())

	cdn, err := NewS3(S3Config{
		Endpoint:  "https://fsn1.example.com",
		AccessKey: "key",
		SecretKey: "secret",
		Bucket:    "stories",
		PublicURL: "https://cdn.example.com/",
	})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a/b.jpg", cdn.FileURL("a/b.jpg"))

	_, err = NewS3(S3Config{Endpoint: "https://x", AccessKey: "k", SecretKey: "s"})
	assert.Error(t, err, "bucket is required")
}
