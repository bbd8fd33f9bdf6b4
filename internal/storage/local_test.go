package storage

import (
	"bytes"
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestLocal(t *testing.T) *Local {
	t.Helper()
	s, err := NewLocal(LocalConfig{
		BasePath: t.TempDir(),
		BaseURL:  "http://localhost:8080/files",
	}, slog.New(slog.DiscardHandler))
	require.NoError(t, err)
	return s
}

func TestLocalPutGet(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	err := s.Put(ctx, "qr/abc123xy.png", bytes.NewReader([]byte("png-bytes")), PutOptions{
		ContentType: "image/png",
	})
	require.NoError(t, err)

	rc, info, err := s.Get(ctx, "qr/abc123xy.png")
	require.NoError(t, err)
	defer rc.Close()

	data, err := io.ReadAll(rc)
	require.NoError(t, err)
	assert.Equal(t, "png-bytes", string(data))
	assert.Equal(t, int64(9), info.Size)
	assert.Equal(t, "image/png", info.ContentType)
}

func TestLocalOverwrite(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "qr/a.png", bytes.NewReader([]byte("one")), PutOptions{}))

	err := s.Put(ctx, "qr/a.png", bytes.NewReader([]byte("two")), PutOptions{})
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrKeyExists)

	require.NoError(t, s.Put(ctx, "qr/a.png", bytes.NewReader([]byte("two")), PutOptions{Overwrite: true}))

	rc, _, err := s.Get(ctx, "qr/a.png")
	require.NoError(t, err)
	defer rc.Close()
	data, _ := io.ReadAll(rc)
	assert.Equal(t, "two", string(data))
}

func TestLocalMissingKey(t *testing.T) {
	s := newTestLocal(t)

	_, _, err := s.Get(context.Background(), "qr/missing.png")
	require.Error(t, err)
	assert.True(t, IsNotFound(err))

	exists, err := s.Exists(context.Background(), "qr/missing.png")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalDeleteIdempotent(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	require.NoError(t, s.Put(ctx, "qr/b.png", bytes.NewReader([]byte("x")), PutOptions{}))
	require.NoError(t, s.Delete(ctx, "qr/b.png"))
	require.NoError(t, s.Delete(ctx, "qr/b.png"))

	exists, err := s.Exists(ctx, "qr/b.png")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestLocalRejectsTraversal(t *testing.T) {
	s := newTestLocal(t)
	ctx := context.Background()

	for _, key := range []string{"", "../escape.png", "qr/../../etc/passwd"} {
		err := s.Put(ctx, key, bytes.NewReader(nil), PutOptions{})
		assert.ErrorIs(t, err, ErrInvalidKey, "key %q", key)
	}
}

func TestLocalURL(t *testing.T) {
	s := newTestLocal(t)

	url, err := s.URL(context.Background(), "qr/abc.png", 0)
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/files/qr/abc.png", url)
}
