package blob

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObjectPath(t *testing.T) {
	now := time.UnixMilli(1717236000123)

	assert.Equal(t, "portfolio/1717236000123.png", ObjectPath(PrefixPortfolio, "Thumb.PNG", now))
	assert.Equal(t, "portfolio/1717236000123.bin", ObjectPath(PrefixPortfolio, "noext", now))
	assert.Equal(t, "ab-tests/a_1717236000123.jpg", ABObjectPath("a", "cover.final.jpg", now))
}

func TestDetectFileType(t *testing.T) {
	assert.Equal(t, "video", DetectFileType("video/mp4"))
	assert.Equal(t, "video", DetectFileType("Video/WebM"))
	assert.Equal(t, "image", DetectFileType("image/png"))
	assert.Equal(t, "image", DetectFileType(""))
}

func TestPublicURL(t *testing.T) {
	assert.Equal(t, "https://cdn.example.com/media/a/b.png", PublicURL("https://cdn.example.com/media/", "/a/b.png"))
	assert.Equal(t, "/media/x.png", PublicURL("/media", "x.png"))
}

func TestClean(t *testing.T) {
	p, err := Clean("portfolio/1.png")
	require.NoError(t, err)
	assert.Equal(t, "portfolio/1.png", p)

	for _, bad := range []string{"", "../etc/passwd", "a/../../b", "a//b", "."} {
		_, err := Clean(bad)
		assert.ErrorIs(t, err, ErrInvalidPath, bad)
	}
}

func TestLocalStore(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStore(dir, "/media")
	ctx := context.Background()

	url, err := store.Put(ctx, "portfolio/1.png", []byte("png"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, "/media/portfolio/1.png", url)
	assert.Equal(t, dir, store.Root())

	data, err := os.ReadFile(filepath.Join(dir, "portfolio", "1.png"))
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)

	require.NoError(t, store.Delete(ctx, "portfolio/1.png"))
	require.NoError(t, store.Delete(ctx, "portfolio/1.png"))
	_, err = os.Stat(filepath.Join(dir, "portfolio", "1.png"))
	assert.True(t, os.IsNotExist(err))

	_, err = store.Put(ctx, "../escape.png", []byte("x"), "image/png")
	assert.ErrorIs(t, err, ErrInvalidPath)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	_, err = store.Put(cancelled, "portfolio/2.png", []byte("x"), "image/png")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryStore(t *testing.T) {
	store := NewMemoryStore("https://cdn")
	ctx := context.Background()

	data := []byte("video")
	url, err := store.Put(ctx, "portfolio/1.mp4", data, "video/mp4")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn/portfolio/1.mp4", url)

	data[0] = 'X'
	obj, err := store.Get("portfolio/1.mp4")
	require.NoError(t, err)
	assert.Equal(t, []byte("video"), obj.Data)
	assert.Equal(t, "video/mp4", obj.ContentType)
	assert.Equal(t, []string{"portfolio/1.mp4"}, store.Paths())

	require.NoError(t, store.Delete(ctx, "portfolio/1.mp4"))
	_, err = store.Get("portfolio/1.mp4")
	assert.ErrorIs(t, err, ErrNotFound)
}
