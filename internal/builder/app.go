package builder

import (
	"github.com/shouni/go-storyboard-kit/internal/config"
	"github.com/shouni/go-storyboard-kit/pkg/chat"
	"github.com/shouni/go-storyboard-kit/pkg/generator"
	"github.com/shouni/go-storyboard-kit/pkg/publisher"
	"github.com/shouni/go-storyboard-kit/pkg/scriptio"
	"github.com/shouni/go-storyboard-kit/pkg/storyboard"
)

// ModelsAPI はテキスト生成と画像生成の両方のエンドポイントです。*genai.Models が満たします。
type ModelsAPI interface {
	generator.ContentGenerator
	generator.ImageGenerator
}

// AppContext は、アプリケーション実行に必要な共通コンテキストを保持します。
// 各コマンドはこれを受け取り、必要なコンポーネントを取り出します。
type AppContext struct {
	Config      *config.Config              // 環境変数から読み込まれた設定
	Loader      *scriptio.Loader            // 台本の読み込み元（ローカル、標準入力、URL、gs://）
	Publisher   *publisher.Publisher        // HTML の書き出し先（ローカル or gs://）
	Segmenter   *generator.ScriptSegmenter  // 台本のシーン分割
	Synthesizer *generator.ImageSynthesizer // シーン画像の生成
	Responder   *chat.GeminiResponder       // 創作アシスタントの応答
}

// NewOrchestrator は AppContext のコンポーネントから Orchestrator を組み立てます。
func (a *AppContext) NewOrchestrator(obs storyboard.Observer) (*storyboard.Orchestrator, error) {
	return storyboard.New(a.Segmenter, a.Synthesizer,
		storyboard.WithObserver(obs),
		storyboard.WithRateInterval(a.Config.RateInterval),
	)
}

// NewChatSession は新しい会話を開始します。
func (a *AppContext) NewChatSession() (*chat.Session, error) {
	return chat.NewSession(a.Responder)
}
