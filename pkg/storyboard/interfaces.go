package storyboard

import (
	"context"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

// Segmenter は台本をシーン列に分割します。generator.ScriptSegmenter が満たします。
type Segmenter interface {
	Segment(ctx context.Context, script string) ([]domain.SceneSpec, error)
}

// Synthesizer は1シーンの説明から画像を生成します。generator.ImageSynthesizer が満たします。
type Synthesizer interface {
	Synthesize(ctx context.Context, description string) (*domain.Image, error)
}

// Observer は状態が変わるたびにスナップショットを受け取ります。
// 呼び出しは生成処理と同じゴルーチンで、変更順に行われます。
type Observer interface {
	OnUpdate(snap Snapshot)
}

// ObserverFunc は関数を Observer として扱うためのアダプターです。
type ObserverFunc func(snap Snapshot)

func (f ObserverFunc) OnUpdate(snap Snapshot) { f(snap) }

// Snapshot はある時点の実行状態の複製です。
type Snapshot struct {
	RunID   string
	State   domain.RunState
	Scenes  []domain.Scene
	Message string // セグメンテーション失敗時の利用者向け文言
}

// Counts は状態ごとのシーン数を返します。
func (s Snapshot) Counts() map[domain.SceneStatus]int {
	counts := make(map[domain.SceneStatus]int, 4)
	for _, sc := range s.Scenes {
		counts[sc.Status()]++
	}
	return counts
}
