package scriptio

import (
	"context"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/shouni/go-remote-io/pkg/remoteio"
)

// LocalReader はローカルファイルシステムを remoteio.InputReader として扱います。
type LocalReader struct{}

var _ remoteio.InputReader = (*LocalReader)(nil)

// Open はファイルを開きます。
func (LocalReader) Open(ctx context.Context, uri string) (io.ReadCloser, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	f, err := os.Open(uri)
	if err != nil {
		return nil, fmt.Errorf("ファイルを開けませんでした (%s): %w", uri, err)
	}
	return f, nil
}

// List は uri 以下の通常ファイルのパスを辞書順に fn へ渡します。
func (LocalReader) List(ctx context.Context, uri string, fn func(string) error) error {
	return filepath.WalkDir(uri, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.Type().IsRegular() {
			return fn(path)
		}
		return nil
	})
}
