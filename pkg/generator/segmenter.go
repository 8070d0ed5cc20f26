package generator

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"google.golang.org/genai"
)

// ErrEmptyScript は空の台本が渡されたことを表します。
var ErrEmptyScript = errors.New("script is empty")

const segmentInstruction = "Split the following screenplay into a sequence of scenes. " +
	"For each scene, provide a detailed visual description that can be used as input for an image generator. " +
	"Output only the JSON array. Screenplay:\n\n"

// sceneSchema はセグメンテーション応答に要求する構造です。
var sceneSchema = &genai.Schema{
	Type: genai.TypeArray,
	Items: &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"scene": {
				Type:        genai.TypeInteger,
				Description: "Scene number, starting from 1.",
			},
			"description": {
				Type:        genai.TypeString,
				Description: "A detailed visual description of the scene suitable as an image generation prompt. Focus on characters, location, action and mood.",
			},
		},
		Required: []string{"scene", "description"},
	},
}

// ScriptSegmenter は台本全体を1回の呼び出しでシーン列に分割します。
type ScriptSegmenter struct {
	client ContentGenerator
	model  string
}

// NewScriptSegmenter は依存関係を注入して ScriptSegmenter を初期化します。
func NewScriptSegmenter(client ContentGenerator, model string) (*ScriptSegmenter, error) {
	if client == nil {
		return nil, fmt.Errorf("client (ContentGenerator) is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("model is required")
	}
	return &ScriptSegmenter{client: client, model: model}, nil
}

// Segment は台本をシーン列に分割します。
// 失敗はすべて domain.ErrSegmentationFailed として返り、部分的な結果は返しません。
func (s *ScriptSegmenter) Segment(ctx context.Context, script string) ([]domain.SceneSpec, error) {
	if strings.TrimSpace(script) == "" {
		return nil, domain.NewError(domain.ErrSegmentationFailed, segmentationUserText, ErrEmptyScript)
	}

	config := &genai.GenerateContentConfig{
		ResponseMIMEType: responseMIMEJSON,
		ResponseSchema:   sceneSchema,
	}

	slog.InfoContext(ctx, "台本のシーン分割を要求します", "model", s.model, "script_bytes", len(script))
	resp, err := s.client.GenerateContent(ctx, s.model, genai.Text(segmentInstruction+script), config)
	if err != nil {
		slog.ErrorContext(ctx, "シーン分割の呼び出しに失敗しました", "model", s.model, "error", err)
		return nil, domain.NewError(domain.ErrSegmentationFailed, segmentationUserText, err)
	}
	if resp == nil {
		return nil, domain.NewError(domain.ErrSegmentationFailed, segmentationUserText, fmt.Errorf("empty response"))
	}

	raw, err := parseScenes(resp.Text())
	if err != nil {
		slog.ErrorContext(ctx, "シーン分割の応答を解析できませんでした", "error", err)
		return nil, domain.NewError(domain.ErrSegmentationFailed, segmentationUserText, err)
	}

	specs, renumbered := normalizeScenes(raw)
	if len(specs) == 0 {
		return nil, domain.NewError(domain.ErrSegmentationFailed, segmentationUserText, fmt.Errorf("応答にシーンが含まれていません"))
	}
	if renumbered {
		slog.WarnContext(ctx, "シーン番号が連番でなかったため振り直しました", "reported", len(raw), "kept", len(specs))
	}

	slog.InfoContext(ctx, "台本をシーンに分割しました", "scenes", len(specs))
	return specs, nil
}
