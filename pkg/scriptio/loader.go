package scriptio

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/shouni/go-remote-io/pkg/remoteio"
)

var (
	// ErrEmptyScript は読み込んだ台本に本文がないことを表します。
	ErrEmptyScript = errors.New("script is empty")
	// ErrNotText は読み込んだ内容が UTF-8 テキストではないことを表します。
	ErrNotText = errors.New("script is not valid UTF-8 text")
	// ErrTooLarge は台本が上限サイズを超えたことを表します。
	ErrTooLarge = errors.New("script is too large")
)

const (
	// StdinSource は標準入力から読み込むことを表すソース指定です。
	StdinSource = "-"
	// MaxScriptBytes は読み込む台本の上限サイズです。
	MaxScriptBytes = 4 << 20

	gcsScheme = "gs://"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Fetcher は URL の内容を取得します。httpkit.ClientInterface が満たします。
type Fetcher interface {
	FetchBytes(ctx context.Context, url string) ([]byte, error)
}

// ReaderOpener は必要になった時点でリモートストレージのリーダーを作成します。
type ReaderOpener func(ctx context.Context) (remoteio.InputReader, error)

// Option は Loader の任意設定です。
type Option func(*Loader)

// WithFetcher は http(s) ソースの取得先を設定します。未設定の場合 URL は読み込めません。
func WithFetcher(f Fetcher) Option {
	return func(l *Loader) { l.fetcher = f }
}

// WithGCS は gs:// ソース用のリーダー作成関数を設定します。
func WithGCS(open ReaderOpener) Option {
	return func(l *Loader) { l.openGCS = open }
}

// WithStdin は "-" ソースの読み込み元を設定します。
func WithStdin(r io.Reader) Option {
	return func(l *Loader) { l.stdin = r }
}

// Loader は台本をソース指定から読み込み、UTF-8 テキストとして返します。
type Loader struct {
	local   remoteio.InputReader
	fetcher Fetcher
	openGCS ReaderOpener
	stdin   io.Reader

	checkURL func(string) (bool, error)
}

// NewLoader は Loader を初期化します。local が nil の場合は LocalReader を使います。
func NewLoader(local remoteio.InputReader, opts ...Option) *Loader {
	if local == nil {
		local = LocalReader{}
	}
	l := &Loader{local: local, checkURL: IsSafeURL}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Load は source を読み込みます。source はローカルパス、"-"、http(s)://、gs:// のいずれかです。
func (l *Loader) Load(ctx context.Context, source string) (string, error) {
	source = strings.TrimSpace(source)
	if source == "" {
		return "", fmt.Errorf("台本のソースが指定されていません")
	}

	data, err := l.read(ctx, source)
	if err != nil {
		return "", err
	}

	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return "", fmt.Errorf("%s: %w", source, ErrNotText)
	}
	text := string(data)
	if strings.TrimSpace(text) == "" {
		return "", fmt.Errorf("%s: %w", source, ErrEmptyScript)
	}

	slog.DebugContext(ctx, "台本を読み込みました", "source", source, "bytes", len(data))
	return text, nil
}

func (l *Loader) read(ctx context.Context, source string) ([]byte, error) {
	switch {
	case source == StdinSource:
		if l.stdin == nil {
			return nil, fmt.Errorf("標準入力が設定されていません")
		}
		return readLimited(l.stdin)

	case strings.HasPrefix(source, "http://") || strings.HasPrefix(source, "https://"):
		if l.fetcher == nil {
			return nil, fmt.Errorf("URL からの読み込みは設定されていません: %s", source)
		}
		if safe, err := l.checkURL(source); err != nil || !safe {
			return nil, fmt.Errorf("安全ではないURLが指定されました: %w", err)
		}
		data, err := l.fetcher.FetchBytes(ctx, source)
		if err != nil {
			return nil, fmt.Errorf("台本の取得に失敗しました (%s): %w", source, err)
		}
		if len(data) > MaxScriptBytes {
			return nil, ErrTooLarge
		}
		return data, nil

	case strings.HasPrefix(source, gcsScheme):
		if l.openGCS == nil {
			return nil, fmt.Errorf("gs:// からの読み込みは設定されていません: %s", source)
		}
		reader, err := l.openGCS(ctx)
		if err != nil {
			return nil, fmt.Errorf("GCS リーダーの作成に失敗しました: %w", err)
		}
		return openAndRead(ctx, reader, source)

	default:
		return openAndRead(ctx, l.local, source)
	}
}

func openAndRead(ctx context.Context, reader remoteio.InputReader, uri string) ([]byte, error) {
	rc, err := reader.Open(ctx, uri)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return readLimited(rc)
}

func readLimited(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxScriptBytes+1))
	if err != nil {
		return nil, fmt.Errorf("台本の読み込みに失敗しました: %w", err)
	}
	if len(data) > MaxScriptBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}
