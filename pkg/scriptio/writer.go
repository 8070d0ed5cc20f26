package scriptio

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// Writer は成果物の書き込み先です。remoteio.OutputWriter が満たします。
type Writer interface {
	Write(ctx context.Context, path string, r io.Reader, contentType string) error
}

// WriterOpener は必要になった時点でリモートストレージのライターを作成します。
type WriterOpener func(ctx context.Context) (Writer, error)

// LocalWriter はローカルファイルシステムへ書き込みます。親ディレクトリは自動で作成します。
type LocalWriter struct{}

func (LocalWriter) Write(ctx context.Context, path string, r io.Reader, contentType string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("出力ディレクトリの作成に失敗しました: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("出力ファイルの作成に失敗しました: %w", err)
	}
	if _, err := io.Copy(f, r); err != nil {
		f.Close()
		return fmt.Errorf("出力ファイルの書き込みに失敗しました: %w", err)
	}
	return f.Close()
}

// RoutingWriter は gs:// のパスをリモートライターへ、それ以外をローカルへ振り分けます。
type RoutingWriter struct {
	local   Writer
	openGCS WriterOpener
}

// NewRoutingWriter は RoutingWriter を初期化します。openGCS が nil の場合 gs:// は扱えません。
func NewRoutingWriter(local Writer, openGCS WriterOpener) *RoutingWriter {
	if local == nil {
		local = LocalWriter{}
	}
	return &RoutingWriter{local: local, openGCS: openGCS}
}

func (w *RoutingWriter) Write(ctx context.Context, path string, r io.Reader, contentType string) error {
	if !strings.HasPrefix(path, gcsScheme) {
		return w.local.Write(ctx, path, r, contentType)
	}
	if w.openGCS == nil {
		return fmt.Errorf("gs:// への書き込みは設定されていません: %s", path)
	}
	remote, err := w.openGCS(ctx)
	if err != nil {
		return fmt.Errorf("GCS ライターの作成に失敗しました: %w", err)
	}
	return remote.Write(ctx, path, r, contentType)
}
