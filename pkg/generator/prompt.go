package generator

import (
	"fmt"
	"strings"
	"text/template"
)

const panelTemplateText = "Create a storyboard panel for a cinematic scene set in {{.Locale}}. " +
	"Characters and setting should be appropriate to the culture of {{.Locale}}. " +
	"Scene description: {{.Description}}. " +
	"Style: dynamic, striking, clear composition."

var panelTemplate = template.Must(template.New("panel").Parse(panelTemplateText))

// PanelPromptData はパネル用テンプレートに流し込む値です。
type PanelPromptData struct {
	Locale      string
	Description string
}

// BuildPanelPrompt は、シーン説明を固定の指示テンプレートで包んだ画像生成プロンプトを返します。
func BuildPanelPrompt(locale, description string) (string, error) {
	description = strings.TrimSpace(description)
	if description == "" {
		return "", fmt.Errorf("シーン説明が空です")
	}
	if strings.TrimSpace(locale) == "" {
		locale = DefaultLocale
	}

	var sb strings.Builder
	if err := panelTemplate.Execute(&sb, PanelPromptData{Locale: locale, Description: description}); err != nil {
		return "", fmt.Errorf("プロンプトテンプレートの実行に失敗しました: %w", err)
	}
	return sb.String(), nil
}
