package chat

import (
	"context"
	"fmt"
	"strings"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/shouni/go-storyboard-kit/pkg/generator"
	"google.golang.org/genai"
)

// DefaultPersona はアシスタントの振る舞いを決めるシステム指示です。
const DefaultPersona = "あなたは作家や映画監督のための、親しみやすく頼りになる創作アシスタントです。" +
	"短く、ひらめきを与える回答をしてください。"

// GeminiResponder は GenerateContent に会話履歴を毎回渡して応答を得ます。
// 履歴はクライアント側で保持するため、エンドポイントは状態を持ちません。
type GeminiResponder struct {
	client  generator.ContentGenerator
	model   string
	persona string
}

// NewGeminiResponder は依存関係を注入して GeminiResponder を初期化します。
// persona が空の場合は DefaultPersona を使います。
func NewGeminiResponder(client generator.ContentGenerator, model, persona string) (*GeminiResponder, error) {
	if client == nil {
		return nil, fmt.Errorf("client (ContentGenerator) is required")
	}
	if strings.TrimSpace(model) == "" {
		return nil, fmt.Errorf("model is required")
	}
	if strings.TrimSpace(persona) == "" {
		persona = DefaultPersona
	}
	return &GeminiResponder{client: client, model: model, persona: persona}, nil
}

// Respond は Responder を実装します。
func (r *GeminiResponder) Respond(ctx context.Context, history []domain.ChatTurn, message string) (string, error) {
	contents := make([]*genai.Content, 0, len(history)+1)
	for _, turn := range history {
		contents = append(contents, genai.NewContentFromText(turn.Text, roleOf(turn.Speaker)))
	}
	contents = append(contents, genai.NewContentFromText(message, genai.RoleUser))

	config := &genai.GenerateContentConfig{
		SystemInstruction: genai.NewContentFromText(r.persona, genai.RoleUser),
	}

	resp, err := r.client.GenerateContent(ctx, r.model, contents, config)
	if err != nil {
		return "", fmt.Errorf("チャット応答の生成に失敗しました: %w", err)
	}
	if resp == nil {
		return "", fmt.Errorf("empty response")
	}
	return resp.Text(), nil
}

func roleOf(sp domain.Speaker) genai.Role {
	if sp == domain.SpeakerAssistant {
		return genai.RoleModel
	}
	return genai.RoleUser
}
