package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/shouni/go-storyboard-kit/internal/builder"
	"github.com/shouni/go-storyboard-kit/internal/config"
	"github.com/shouni/go-storyboard-kit/internal/view"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/spf13/cobra"
)

var (
	appCtx *builder.AppContext
	styles = view.DefaultStyles()

	// buildApp は設定から AppContext を組み立てます。テストで差し替えます。
	buildApp = builder.Build
)

var rootCmd = &cobra.Command{
	Use:   "storyboard",
	Short: "台本からストーリーボードを生成します。",
	Long: `台本をシーンに分割し、シーンごとに 16:9 のストーリーボード画像を生成します。
chat サブコマンドでは創作アシスタントと会話できます。

必須の環境変数: GEMINI_API_KEY（または API_KEY）`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: preRunAppE,
}

func init() {
	rootCmd.AddCommand(generateCmd, chatCmd)
}

// preRunAppE は、コマンド実行前に設定を読み込み、依存関係を組み立てます。
// 認証情報がない場合はここで終了し、API は一切呼び出しません。
func preRunAppE(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	setupLogger(cmd.ErrOrStderr(), cfg.LogLevel)

	app, err := buildApp(cmd.Context(), cfg, cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("アプリケーションの初期化に失敗しました: %w", err)
	}
	appCtx = app

	slog.Debug("設定を読み込みました",
		"text_model", cfg.TextModel,
		"image_model", cfg.ImageModel,
		"chat_model", cfg.ChatModel,
		"locale", cfg.Locale,
		"rate_interval", cfg.RateInterval,
		"image_cache_ttl", cfg.ImageCacheTTL)
	return nil
}

func setupLogger(w io.Writer, level slog.Level) {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})
	slog.SetDefault(slog.New(handler))
}

// userFacing は利用者に表示する文言を返します。分類済みのエラーは利用者向けメッセージのみを返します。
func userFacing(err error) string {
	var de *domain.Error
	if errors.As(err, &de) {
		return domain.UserMessage(err)
	}
	return err.Error()
}

// Execute は、アプリケーションのメインエントリポイントです。
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, styles.Error.Render("エラー: "+userFacing(err)))
		stop()
		os.Exit(1)
	}
}
