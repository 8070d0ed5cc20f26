package scriptio

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shouni/go-remote-io/pkg/remoteio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleScript = "シーン1: 夜の市場。\nシーン2: 夜明けの港。\n"

func writeFile(t *testing.T, name string, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoader_Load_Local(t *testing.T) {
	ctx := context.Background()
	l := NewLoader(nil)

	t.Run("ローカルファイルを読み込む", func(t *testing.T) {
		path := writeFile(t, "script.txt", []byte(sampleScript))
		text, err := l.Load(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, sampleScript, text)
	})

	t.Run("BOMを取り除く", func(t *testing.T) {
		path := writeFile(t, "bom.txt", append([]byte{0xEF, 0xBB, 0xBF}, "本文"...))
		text, err := l.Load(ctx, path)
		require.NoError(t, err)
		assert.Equal(t, "本文", text)
	})

	t.Run("存在しないファイルはエラー", func(t *testing.T) {
		_, err := l.Load(ctx, filepath.Join(t.TempDir(), "missing.txt"))
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("空白のみのファイルは拒否する", func(t *testing.T) {
		path := writeFile(t, "blank.txt", []byte(" \n\t\n"))
		_, err := l.Load(ctx, path)
		assert.ErrorIs(t, err, ErrEmptyScript)
	})

	t.Run("UTF-8でない内容は拒否する", func(t *testing.T) {
		path := writeFile(t, "binary.bin", []byte{0xff, 0xfe, 0x00, 0x81})
		_, err := l.Load(ctx, path)
		assert.ErrorIs(t, err, ErrNotText)
	})

	t.Run("上限サイズを超える台本は拒否する", func(t *testing.T) {
		path := writeFile(t, "huge.txt", bytes.Repeat([]byte("a"), MaxScriptBytes+1))
		_, err := l.Load(ctx, path)
		assert.ErrorIs(t, err, ErrTooLarge)
	})

	t.Run("ソース未指定はエラー", func(t *testing.T) {
		_, err := l.Load(ctx, "  ")
		assert.Error(t, err)
	})
}

func TestLoader_Load_Stdin(t *testing.T) {
	l := NewLoader(nil, WithStdin(strings.NewReader(sampleScript)))
	text, err := l.Load(context.Background(), StdinSource)
	require.NoError(t, err)
	assert.Equal(t, sampleScript, text)

	_, err = NewLoader(nil).Load(context.Background(), StdinSource)
	assert.Error(t, err, "標準入力が未設定ならエラー")
}

func TestLoader_Load_URL(t *testing.T) {
	ctx := context.Background()

	t.Run("安全なURLはFetcherで取得する", func(t *testing.T) {
		f := &mockFetcher{data: []byte(sampleScript)}
		l := NewLoader(nil, WithFetcher(f))
		l.checkURL = allowAll

		text, err := l.Load(ctx, "https://example.com/script.txt")
		require.NoError(t, err)
		assert.Equal(t, sampleScript, text)
		assert.Equal(t, "https://example.com/script.txt", f.lastURL)
	})

	t.Run("プライベートネットワーク宛てのURLは取得しない", func(t *testing.T) {
		f := &mockFetcher{data: []byte(sampleScript)}
		l := NewLoader(nil, WithFetcher(f))

		_, err := l.Load(ctx, "http://127.0.0.1:8080/script.txt")
		assert.Error(t, err)
		assert.Zero(t, f.calls)
	})

	t.Run("Fetcher未設定ならエラー", func(t *testing.T) {
		_, err := NewLoader(nil).Load(ctx, "https://example.com/script.txt")
		assert.Error(t, err)
	})

	t.Run("取得エラーを返す", func(t *testing.T) {
		cause := errors.New("404 not found")
		l := NewLoader(nil, WithFetcher(&mockFetcher{err: cause}))
		l.checkURL = allowAll

		_, err := l.Load(ctx, "https://example.com/missing.txt")
		assert.ErrorIs(t, err, cause)
	})
}

func TestLoader_Load_GCS(t *testing.T) {
	ctx := context.Background()
	gcs := &mockReader{files: map[string]string{"gs://bucket/script.txt": sampleScript}}

	t.Run("gs://はリモートリーダーで読み込む", func(t *testing.T) {
		opened := 0
		l := NewLoader(nil, WithGCS(func(ctx context.Context) (remoteio.InputReader, error) {
			opened++
			return gcs, nil
		}))

		text, err := l.Load(ctx, "gs://bucket/script.txt")
		require.NoError(t, err)
		assert.Equal(t, sampleScript, text)
		assert.Equal(t, 1, opened)
	})

	t.Run("リーダー作成に失敗したらエラー", func(t *testing.T) {
		cause := errors.New("no credentials")
		l := NewLoader(nil, WithGCS(func(ctx context.Context) (remoteio.InputReader, error) {
			return nil, cause
		}))
		_, err := l.Load(ctx, "gs://bucket/script.txt")
		assert.ErrorIs(t, err, cause)
	})

	t.Run("未設定ならエラー", func(t *testing.T) {
		_, err := NewLoader(nil).Load(ctx, "gs://bucket/script.txt")
		assert.Error(t, err)
	})
}

func TestLoader_Load_CustomLocalReader(t *testing.T) {
	r := &mockReader{files: map[string]string{"scripts/a.txt": "A"}}
	text, err := NewLoader(r).Load(context.Background(), "scripts/a.txt")
	require.NoError(t, err)
	assert.Equal(t, "A", text)
	assert.Equal(t, []string{"scripts/a.txt"}, r.opened)
}
