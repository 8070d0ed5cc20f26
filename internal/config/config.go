package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/generator"
	"github.com/shouni/go-utils/envutil"
)

// デフォルト値の定義
const (
	DefaultTextModel   = "gemini-2.5-flash"
	DefaultImageModel  = "imagen-4.0-generate-001"
	DefaultChatModel   = "gemini-2.5-flash"
	DefaultHTTPTimeout = 30 * time.Second
	DefaultLogLevel    = "info"
	DefaultEnvFile     = ".env"
)

// 環境変数名
const (
	EnvAPIKey         = "GEMINI_API_KEY"
	EnvAPIKeyFallback = "API_KEY"
	EnvTextModel      = "STORYBOARD_TEXT_MODEL"
	EnvImageModel     = "STORYBOARD_IMAGE_MODEL"
	EnvChatModel      = "STORYBOARD_CHAT_MODEL"
	EnvLocale         = "STORYBOARD_LOCALE"
	EnvRateInterval   = "STORYBOARD_RATE_INTERVAL"
	EnvImageCacheTTL  = "STORYBOARD_IMAGE_CACHE_TTL"
	EnvHTTPTimeout    = "STORYBOARD_HTTP_TIMEOUT"
	EnvLogLevel       = "STORYBOARD_LOG_LEVEL"
)

// Config はアプリケーション全体の環境設定を保持する構造体です。
type Config struct {
	APIKey        string
	TextModel     string
	ImageModel    string
	ChatModel     string
	Locale        string
	RateInterval  time.Duration // 画像生成呼び出しの最小間隔。0 なら制限なし
	ImageCacheTTL time.Duration // 0 ならキャッシュしない
	HTTPTimeout   time.Duration
	LogLevel      slog.Level
}

// Load は .env（存在する場合）と環境変数から設定を読み込みます。
// 認証情報がない場合は domain.ErrConfigMissing を返し、以降の処理を行いません。
func Load() (*Config, error) {
	if err := LoadEnvFile(DefaultEnvFile); err != nil {
		return nil, err
	}
	return FromEnv()
}

// LoadEnvFile は path の .env を読み込みます。ファイルがなければ何もしません。
// 既に設定されている環境変数は上書きしません。
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%s の読み込みに失敗しました: %w", path, err)
	}
	return nil
}

// FromEnv は環境変数のみから設定を組み立てます。
func FromEnv() (*Config, error) {
	apiKey := strings.TrimSpace(envutil.GetEnv(EnvAPIKey, ""))
	if apiKey == "" {
		apiKey = strings.TrimSpace(envutil.GetEnv(EnvAPIKeyFallback, ""))
	}
	if apiKey == "" {
		return nil, domain.NewError(domain.ErrConfigMissing,
			fmt.Sprintf("環境変数 %s が設定されていません。Gemini API の利用には必須です。", EnvAPIKey), nil)
	}

	cfg := &Config{
		APIKey:     apiKey,
		TextModel:  envutil.GetEnv(EnvTextModel, DefaultTextModel),
		ImageModel: envutil.GetEnv(EnvImageModel, DefaultImageModel),
		ChatModel:  envutil.GetEnv(EnvChatModel, DefaultChatModel),
		Locale:     envutil.GetEnv(EnvLocale, generator.DefaultLocale),
	}

	var err error
	if cfg.RateInterval, err = durationEnv(EnvRateInterval, 0); err != nil {
		return nil, err
	}
	if cfg.ImageCacheTTL, err = durationEnv(EnvImageCacheTTL, 0); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout, err = durationEnv(EnvHTTPTimeout, DefaultHTTPTimeout); err != nil {
		return nil, err
	}
	if cfg.HTTPTimeout <= 0 {
		return nil, fmt.Errorf("%s は正の値である必要があります", EnvHTTPTimeout)
	}
	if cfg.LogLevel, err = ParseLogLevel(envutil.GetEnv(EnvLogLevel, DefaultLogLevel)); err != nil {
		return nil, err
	}
	return cfg, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(envutil.GetEnv(key, ""))
	if raw == "" {
		return def, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s の値が不正です (%q): %w", key, raw, err)
	}
	if d < 0 {
		return 0, fmt.Errorf("%s に負の値は指定できません (%q)", key, raw)
	}
	return d, nil
}

// ParseLogLevel は debug / info / warn / error を slog.Level に変換します。
func ParseLogLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("%s の値が不正です (%q): %w", EnvLogLevel, s, err)
	}
	return level, nil
}
