package scriptio

import (
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockWriter struct {
	paths        []string
	contentTypes []string
	bodies       []string
}

func (m *mockWriter) Write(ctx context.Context, path string, r io.Reader, contentType string) error {
	data, err := io.ReadAll(r)
	if err != nil {
		return err
	}
	m.paths = append(m.paths, path)
	m.contentTypes = append(m.contentTypes, contentType)
	m.bodies = append(m.bodies, string(data))
	return nil
}

func TestLocalWriter(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out", "nested", "board.html")

	err := LocalWriter{}.Write(context.Background(), path, strings.NewReader("<html></html>"), "text/html")
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "<html></html>", string(data))
}

func TestRoutingWriter(t *testing.T) {
	ctx := context.Background()

	t.Run("ローカルパスはローカルライターへ", func(t *testing.T) {
		local, remote := &mockWriter{}, &mockWriter{}
		w := NewRoutingWriter(local, func(ctx context.Context) (Writer, error) { return remote, nil })

		require.NoError(t, w.Write(ctx, "out/board.html", strings.NewReader("x"), "text/html"))
		assert.Equal(t, []string{"out/board.html"}, local.paths)
		assert.Empty(t, remote.paths)
	})

	t.Run("gs://はリモートライターへ", func(t *testing.T) {
		local, remote := &mockWriter{}, &mockWriter{}
		w := NewRoutingWriter(local, func(ctx context.Context) (Writer, error) { return remote, nil })

		require.NoError(t, w.Write(ctx, "gs://bucket/board.html", strings.NewReader("x"), "text/html"))
		assert.Empty(t, local.paths)
		assert.Equal(t, []string{"gs://bucket/board.html"}, remote.paths)
		assert.Equal(t, []string{"text/html"}, remote.contentTypes)
	})

	t.Run("リモート未設定ならエラー", func(t *testing.T) {
		w := NewRoutingWriter(&mockWriter{}, nil)
		assert.Error(t, w.Write(ctx, "gs://bucket/board.html", strings.NewReader("x"), "text/html"))
	})

	t.Run("リモートライター作成の失敗を返す", func(t *testing.T) {
		cause := errors.New("no credentials")
		w := NewRoutingWriter(nil, func(ctx context.Context) (Writer, error) { return nil, cause })
		assert.ErrorIs(t, w.Write(ctx, "gs://bucket/board.html", strings.NewReader("x"), "text/html"), cause)
	})
}
