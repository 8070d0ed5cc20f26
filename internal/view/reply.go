package view

import (
	"strings"

	"github.com/charmbracelet/glamour"
)

const defaultWordWrap = 80

// ReplyRenderer はアシスタントの応答 (Markdown) を端末向けに整形します。
type ReplyRenderer struct {
	renderer *glamour.TermRenderer
}

// NewReplyRenderer は端末の配色に合わせたレンダラーを作成します。
// 初期化に失敗した場合は整形せずにそのまま表示します。
func NewReplyRenderer() *ReplyRenderer {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(defaultWordWrap),
	)
	if err != nil {
		return &ReplyRenderer{}
	}
	return &ReplyRenderer{renderer: r}
}

// Render は Markdown を整形して返します。
func (r *ReplyRenderer) Render(markdown string) string {
	if r.renderer == nil {
		return markdown
	}
	out, err := r.renderer.Render(markdown)
	if err != nil {
		return markdown
	}
	return strings.TrimRight(out, "\n")
}
