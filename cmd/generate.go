package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/shouni/go-storyboard-kit/internal/view"
	"github.com/shouni/go-storyboard-kit/pkg/publisher"
	"github.com/spf13/cobra"
)

var generateOpts struct {
	OutputFile string
	Title      string
}

// generateCmd は台本からストーリーボードを生成します。
var generateCmd = &cobra.Command{
	Use:   "generate <script>",
	Short: "台本からストーリーボード画像を生成します。",
	Long: `台本（ローカルパス、'-' で標準入力、http(s):// または gs://）を読み込み、
シーンに分割してシーンごとに画像を1枚ずつ生成します。
--output を指定した場合のみ、結果を HTML として保存します。`,
	Args: cobra.ExactArgs(1),
	RunE: generateCommand,
}

func init() {
	generateCmd.Flags().StringVarP(&generateOpts.OutputFile, "output", "o", "", "HTML の保存先（ローカル or gs://...）。未指定なら保存しません。")
	generateCmd.Flags().StringVarP(&generateOpts.Title, "title", "t", "", "HTML のタイトル。未指定なら台本のファイル名を使います。")
}

func generateCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	source := args[0]

	script, err := appCtx.Loader.Load(ctx, source)
	if err != nil {
		return err
	}

	printer := view.NewProgressPrinter(cmd.OutOrStdout(), styles)
	orch, err := appCtx.NewOrchestrator(printer)
	if err != nil {
		return err
	}

	if err := orch.Generate(ctx, script); err != nil {
		return err
	}

	if generateOpts.OutputFile == "" {
		return nil
	}
	opts := publisher.Options{Title: generateOpts.Title}
	if opts.Title == "" {
		opts.Title = titleFromSource(source)
	}
	if err := appCtx.Publisher.Publish(ctx, generateOpts.OutputFile, orch.Snapshot(), opts); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), styles.Muted.Render("保存しました: "+generateOpts.OutputFile))
	return nil
}

func titleFromSource(source string) string {
	if source == "-" {
		return publisher.DefaultTitle
	}
	base := filepath.Base(source)
	name := strings.TrimSuffix(base, filepath.Ext(base))
	if name == "" || name == "." || name == "/" {
		return publisher.DefaultTitle
	}
	return name
}
