package view

import (
	"fmt"
	"io"
	"sync"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/storyboard"
)

// ProgressPrinter は Orchestrator のスナップショットを受け取り、変化のあったシーンだけを1行ずつ表示します。
type ProgressPrinter struct {
	w      io.Writer
	styles Styles

	mu     sync.Mutex
	runID  string
	state  domain.RunState
	status map[int]domain.SceneStatus
}

var _ storyboard.Observer = (*ProgressPrinter)(nil)

// NewProgressPrinter は w に出力する ProgressPrinter を作成します。
func NewProgressPrinter(w io.Writer, styles Styles) *ProgressPrinter {
	return &ProgressPrinter{w: w, styles: styles, status: make(map[int]domain.SceneStatus)}
}

// OnUpdate は storyboard.Observer を実装します。
func (p *ProgressPrinter) OnUpdate(snap storyboard.Snapshot) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if snap.RunID != p.runID {
		p.runID = snap.RunID
		p.state = ""
		p.status = make(map[int]domain.SceneStatus)
	}

	if snap.State != p.state {
		p.state = snap.State
		p.printState(snap)
	}

	total := len(snap.Scenes)
	for _, sc := range snap.Scenes {
		st := sc.Status()
		if prev, ok := p.status[sc.Index]; ok && prev == st {
			continue
		}
		p.status[sc.Index] = st
		if st == domain.ScenePending {
			continue
		}
		fmt.Fprintf(p.w, "  [%d/%d] %s\n", sc.Index, total, p.sceneLine(sc))
	}
}

func (p *ProgressPrinter) printState(snap storyboard.Snapshot) {
	switch snap.State {
	case domain.RunSegmenting:
		fmt.Fprintln(p.w, p.styles.Title.Render("台本をシーンに分割しています..."))
	case domain.RunSegmentationFailed:
		fmt.Fprintln(p.w, p.styles.Failed.Render("✗ "+snap.Message))
	case domain.RunGenerating:
		fmt.Fprintln(p.w, p.styles.Title.Render(fmt.Sprintf("%d シーンの画像を生成します", len(snap.Scenes))))
	case domain.RunComplete:
		fmt.Fprintln(p.w, Summary(snap, p.styles))
	}
}

func (p *ProgressPrinter) sceneLine(sc domain.Scene) string {
	label := fmt.Sprintf("シーン %d", sc.Index)
	switch sc.Status() {
	case domain.SceneGenerating:
		return p.styles.Generating.Render("… "+label) + " " + p.styles.Muted.Render(excerpt(sc.Description))
	case domain.SceneDone:
		return p.styles.Done.Render("✓ " + label)
	case domain.SceneFailed:
		return p.styles.Failed.Render("✗ "+label) + " " + p.styles.Error.Render(sc.Error)
	default:
		return p.styles.Pending.Render("・ " + label)
	}
}

// Summary は完了時の集計行を返します。
func Summary(snap storyboard.Snapshot, styles Styles) string {
	counts := snap.Counts()
	line := fmt.Sprintf("完了: %d / %d シーン", counts[domain.SceneDone], len(snap.Scenes))
	if n := counts[domain.SceneFailed]; n > 0 {
		return styles.Title.Render(line) + " " + styles.Failed.Render(fmt.Sprintf("（失敗 %d）", n))
	}
	return styles.Done.Render(line)
}

const excerptRunes = 40

func excerpt(s string) string {
	r := []rune(s)
	if len(r) <= excerptRunes {
		return s
	}
	return string(r[:excerptRunes]) + "…"
}
