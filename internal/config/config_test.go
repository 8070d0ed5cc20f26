package config

import (
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var allKeys = []string{
	EnvAPIKey, EnvAPIKeyFallback, EnvTextModel, EnvImageModel, EnvChatModel, EnvLocale,
	EnvRateInterval, EnvImageCacheTTL, EnvHTTPTimeout, EnvLogLevel,
}

// clearEnv はテスト中だけ関連する環境変数を未設定にします。
func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range allKeys {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
}

func TestFromEnv(t *testing.T) {
	t.Run("認証情報がなければErrConfigMissing", func(t *testing.T) {
		clearEnv(t)

		_, err := FromEnv()
		require.ErrorIs(t, err, domain.ErrConfigMissing)
		assert.Contains(t, domain.UserMessage(err), EnvAPIKey)
	})

	t.Run("デフォルト値", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvAPIKey, "test-key")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, "test-key", cfg.APIKey)
		assert.Equal(t, DefaultTextModel, cfg.TextModel)
		assert.Equal(t, DefaultImageModel, cfg.ImageModel)
		assert.Equal(t, DefaultChatModel, cfg.ChatModel)
		assert.Equal(t, "Turkey", cfg.Locale)
		assert.Zero(t, cfg.RateInterval)
		assert.Zero(t, cfg.ImageCacheTTL)
		assert.Equal(t, DefaultHTTPTimeout, cfg.HTTPTimeout)
		assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
	})

	t.Run("API_KEYへのフォールバック", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvAPIKeyFallback, "legacy-key")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, "legacy-key", cfg.APIKey)
	})

	t.Run("環境変数で上書きできる", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvAPIKey, "k")
		t.Setenv(EnvImageModel, "imagen-custom")
		t.Setenv(EnvLocale, "Japan")
		t.Setenv(EnvRateInterval, "2s")
		t.Setenv(EnvImageCacheTTL, "10m")
		t.Setenv(EnvHTTPTimeout, "5s")
		t.Setenv(EnvLogLevel, "debug")

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, "imagen-custom", cfg.ImageModel)
		assert.Equal(t, "Japan", cfg.Locale)
		assert.Equal(t, 2*time.Second, cfg.RateInterval)
		assert.Equal(t, 10*time.Minute, cfg.ImageCacheTTL)
		assert.Equal(t, 5*time.Second, cfg.HTTPTimeout)
		assert.Equal(t, slog.LevelDebug, cfg.LogLevel)
	})

	t.Run("不正な値は起動時エラー", func(t *testing.T) {
		cases := map[string]string{
			EnvRateInterval:  "soon",
			EnvImageCacheTTL: "-1m",
			EnvHTTPTimeout:   "0s",
			EnvLogLevel:      "loud",
		}
		for key, val := range cases {
			t.Run(key, func(t *testing.T) {
				clearEnv(t)
				t.Setenv(EnvAPIKey, "k")
				t.Setenv(key, val)

				_, err := FromEnv()
				assert.Error(t, err)
			})
		}
	})
}

func TestLoadEnvFile(t *testing.T) {
	t.Run("ファイルがなければ何もしない", func(t *testing.T) {
		assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), ".env")))
	})

	t.Run(".envの値を読み込み、既存の環境変数は上書きしない", func(t *testing.T) {
		clearEnv(t)
		t.Setenv(EnvTextModel, "from-env")
		require.NoError(t, os.Unsetenv(EnvAPIKey))

		path := filepath.Join(t.TempDir(), ".env")
		content := EnvAPIKey + "=from-file\n" + EnvTextModel + "=from-file-model\n"
		require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

		require.NoError(t, LoadEnvFile(path))

		cfg, err := FromEnv()
		require.NoError(t, err)
		assert.Equal(t, "from-file", cfg.APIKey)
		assert.Equal(t, "from-env", cfg.TextModel)
	})
}
