package publisher

import (
	"bytes"
	"context"
	_ "embed"
	"fmt"
	"html/template"
	"io"
	"log/slog"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/storyboard"
)

//go:embed templates/storyboard.html
var storyboardTemplateText string

var storyboardTemplate = template.Must(template.New("storyboard").Parse(storyboardTemplateText))

const (
	DefaultTitle    = "ストーリーボード"
	defaultLang     = "ja"
	htmlContentType = "text/html; charset=utf-8"

	placeholderPending    = "ここに画像が表示されます"
	placeholderGenerating = "生成中..."
)

// Writer は成果物の書き込み先です。remoteio.OutputWriter と同じ形をしています。
type Writer interface {
	Write(ctx context.Context, path string, r io.Reader, contentType string) error
}

// Options は HTML 出力の設定です。
type Options struct {
	Title string
	Lang  string
}

type pageData struct {
	Title   string
	Lang    string
	Message string
	Done    int
	Failed  int
	Scenes  []sceneCard
}

type sceneCard struct {
	Index       int
	Description string
	ImageURL    template.URL
	Error       string
	Placeholder string
}

// Render はスナップショットを自己完結した HTML として w に書き出します。
// 画像は data URL として埋め込まれます。
func Render(w io.Writer, snap storyboard.Snapshot, opts Options) error {
	data := buildPage(snap, opts)
	if err := storyboardTemplate.Execute(w, data); err != nil {
		return fmt.Errorf("HTMLの生成に失敗しました: %w", err)
	}
	return nil
}

func buildPage(snap storyboard.Snapshot, opts Options) pageData {
	page := pageData{
		Title:   opts.Title,
		Lang:    opts.Lang,
		Message: snap.Message,
		Scenes:  make([]sceneCard, 0, len(snap.Scenes)),
	}
	if page.Title == "" {
		page.Title = DefaultTitle
	}
	if page.Lang == "" {
		page.Lang = defaultLang
	}

	counts := snap.Counts()
	page.Done, page.Failed = counts[domain.SceneDone], counts[domain.SceneFailed]

	for _, sc := range snap.Scenes {
		card := sceneCard{Index: sc.Index, Description: sc.Description, Error: sc.Error}
		switch sc.Status() {
		case domain.SceneDone:
			// DataURL は base64 のみで構成されるため、そのまま URL として扱います。
			card.ImageURL = template.URL(sc.Image.DataURL())
		case domain.SceneGenerating:
			card.Placeholder = placeholderGenerating
		case domain.ScenePending:
			card.Placeholder = placeholderPending
		}
		page.Scenes = append(page.Scenes, card)
	}
	return page
}

// Publisher は HTML を Writer 経由で保存します。
type Publisher struct {
	writer Writer
}

// New は依存関係を注入して Publisher を初期化します。
func New(writer Writer) (*Publisher, error) {
	if writer == nil {
		return nil, fmt.Errorf("writer is required")
	}
	return &Publisher{writer: writer}, nil
}

// Publish はスナップショットを HTML にして path に書き込みます。
func (p *Publisher) Publish(ctx context.Context, path string, snap storyboard.Snapshot, opts Options) error {
	var buf bytes.Buffer
	if err := Render(&buf, snap, opts); err != nil {
		return err
	}
	size := buf.Len()
	if err := p.writer.Write(ctx, path, &buf, htmlContentType); err != nil {
		return fmt.Errorf("HTMLファイルの書き込みに失敗しました (%s): %w", path, err)
	}
	slog.InfoContext(ctx, "ストーリーボードを書き出しました", "path", path, "bytes", size)
	return nil
}
