package builder

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/shouni/go-http-kit/pkg/httpkit"
	"github.com/shouni/go-remote-io/pkg/gcsfactory"
	"github.com/shouni/go-remote-io/pkg/remoteio"
	"github.com/shouni/go-storyboard-kit/internal/config"
	"github.com/shouni/go-storyboard-kit/pkg/chat"
	"github.com/shouni/go-storyboard-kit/pkg/generator"
	"github.com/shouni/go-storyboard-kit/pkg/publisher"
	"github.com/shouni/go-storyboard-kit/pkg/scriptio"
	"google.golang.org/genai"
)

const cacheCleanupFactor = 2

// InitializeAIClient は Gemini API バックエンドの genai クライアントを作成します。
func InitializeAIClient(ctx context.Context, apiKey string) (*genai.Client, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("genai クライアントの作成に失敗しました: %w", err)
	}
	return client, nil
}

// Build は設定から AppContext を組み立てます。
func Build(ctx context.Context, cfg *config.Config, stdin io.Reader) (*AppContext, error) {
	client, err := InitializeAIClient(ctx, cfg.APIKey)
	if err != nil {
		return nil, err
	}
	return NewAppContext(cfg, client.Models, httpkit.New(cfg.HTTPTimeout), stdin)
}

// NewAppContext は与えられたエンドポイントで AppContext を組み立てます。
func NewAppContext(cfg *config.Config, models ModelsAPI, fetcher scriptio.Fetcher, stdin io.Reader) (*AppContext, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}
	if models == nil {
		return nil, fmt.Errorf("models is required")
	}

	segmenter, err := generator.NewScriptSegmenter(models, cfg.TextModel)
	if err != nil {
		return nil, fmt.Errorf("シーン分割の初期化に失敗しました: %w", err)
	}

	synthesizer, err := generator.NewImageSynthesizer(models, cfg.ImageModel, generator.SynthesizerOptions{
		Locale:   cfg.Locale,
		Cache:    newImageCache(cfg.ImageCacheTTL),
		CacheTTL: cfg.ImageCacheTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("画像生成の初期化に失敗しました: %w", err)
	}

	responder, err := chat.NewGeminiResponder(models, cfg.ChatModel, chat.DefaultPersona)
	if err != nil {
		return nil, fmt.Errorf("チャットの初期化に失敗しました: %w", err)
	}

	gcs := &lazyGCS{}
	opts := []scriptio.Option{scriptio.WithGCS(gcs.inputReader)}
	if fetcher != nil {
		opts = append(opts, scriptio.WithFetcher(fetcher))
	}
	if stdin != nil {
		opts = append(opts, scriptio.WithStdin(stdin))
	}

	pub, err := publisher.New(scriptio.NewRoutingWriter(scriptio.LocalWriter{}, gcs.outputWriter))
	if err != nil {
		return nil, err
	}

	return &AppContext{
		Config:      cfg,
		Loader:      scriptio.NewLoader(scriptio.LocalReader{}, opts...),
		Publisher:   pub,
		Segmenter:   segmenter,
		Synthesizer: synthesizer,
		Responder:   responder,
	}, nil
}

// newImageCache は TTL が正の場合だけ go-cache を返します。
func newImageCache(ttl time.Duration) generator.ImageCacher {
	if ttl <= 0 {
		return nil
	}
	return cache.New(ttl, ttl*cacheCleanupFactor)
}

// lazyGCS は gs:// が初めて使われた時点で GCS クライアントを作成します。
// ローカルだけで使う場合は GCP の認証情報を必要としません。
type lazyGCS struct {
	once    sync.Once
	factory gcsfactory.Factory
	err     error
}

func (l *lazyGCS) get(ctx context.Context) (gcsfactory.Factory, error) {
	l.once.Do(func() {
		slog.DebugContext(ctx, "GCS クライアントを初期化します")
		l.factory, l.err = gcsfactory.NewGCSClientFactory(ctx)
	})
	return l.factory, l.err
}

func (l *lazyGCS) inputReader(ctx context.Context) (remoteio.InputReader, error) {
	f, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return f.NewInputReader()
}

func (l *lazyGCS) outputWriter(ctx context.Context) (scriptio.Writer, error) {
	f, err := l.get(ctx)
	if err != nil {
		return nil, err
	}
	return f.NewOutputWriter()
}
