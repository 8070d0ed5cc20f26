package generator

import (
	"encoding/json"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"google.golang.org/genai"
)

var jsonBlockRegex = regexp.MustCompile("(?s)```(?:json)?\\s*(.*\\S)\\s*```")

// rawScene はモデル出力をそのまま受ける構造体です。
type rawScene struct {
	Scene       int    `json:"scene"`
	Description string `json:"description"`
}

// extractJSONArray は応答テキストから JSON 配列部分を取り出します。
// コードフェンスや前後の説明文が混ざっていても許容します。
// 配列の切り出しは前後が説明文の場合に限ります。
func extractJSONArray(raw string) string {
	raw = strings.TrimSpace(raw)
	if matches := jsonBlockRegex.FindStringSubmatch(raw); len(matches) > 1 {
		raw = strings.TrimSpace(matches[1])
	}
	// 応答全体が JSON の場合は配列の切り出しを行わない（オブジェクトに包まれた配列は不正）
	if strings.HasPrefix(raw, "{") || json.Valid([]byte(raw)) {
		return raw
	}

	first := strings.Index(raw, "[")
	last := strings.LastIndex(raw, "]")
	if first != -1 && last > first {
		return raw[first : last+1]
	}
	return raw
}

// parseScenes は応答テキストをシーン配列として解析します。
func parseScenes(raw string) ([]rawScene, error) {
	body := extractJSONArray(raw)
	if !strings.HasPrefix(body, "[") {
		return nil, fmt.Errorf("応答がJSON配列ではありません (応答抜粋: %q)", truncateString(raw, responseExcerptMaxSize))
	}

	var scenes []rawScene
	if err := json.Unmarshal([]byte(body), &scenes); err != nil {
		return nil, fmt.Errorf("応答JSONの解析に失敗しました (応答抜粋: %q): %w", truncateString(raw, responseExcerptMaxSize), err)
	}
	return scenes, nil
}

// normalizeScenes は説明が空のエントリを除き、報告された番号で安定ソートしたうえで 1..n に振り直します。
// 振り直しが発生したかどうかも返します。
func normalizeScenes(raw []rawScene) ([]domain.SceneSpec, bool) {
	kept := make([]rawScene, 0, len(raw))
	changed := false
	for _, s := range raw {
		desc := strings.TrimSpace(s.Description)
		if desc == "" {
			changed = true
			continue
		}
		kept = append(kept, rawScene{Scene: s.Scene, Description: desc})
	}

	sort.SliceStable(kept, func(i, j int) bool { return kept[i].Scene < kept[j].Scene })

	specs := make([]domain.SceneSpec, len(kept))
	for i, s := range kept {
		if s.Scene != i+1 {
			changed = true
		}
		specs[i] = domain.SceneSpec{Index: i + 1, Description: s.Description}
	}
	return specs, changed
}

// pickImage は Imagen の応答から最初の画像を取り出します。
func pickImage(resp *genai.GenerateImagesResponse) (*domain.Image, error) {
	if resp == nil || len(resp.GeneratedImages) == 0 {
		return nil, fmt.Errorf("画像が1枚も生成されませんでした")
	}

	generated := resp.GeneratedImages[0]
	if generated == nil || generated.Image == nil || len(generated.Image.ImageBytes) == 0 {
		if generated != nil && generated.RAIFilteredReason != "" {
			return nil, fmt.Errorf("画像が安全フィルターで除外されました (reason: %s)", generated.RAIFilteredReason)
		}
		return nil, fmt.Errorf("画像データが見つかりませんでした")
	}

	return &domain.Image{
		Data:     generated.Image.ImageBytes,
		MIMEType: generated.Image.MIMEType,
	}, nil
}

func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
