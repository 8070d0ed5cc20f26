package generator

import (
	"context"
	"time"

	"google.golang.org/genai"
)

// --- Mocks ---

type mockContentClient struct {
	calls      int
	lastModel  string
	lastText   string
	lastConfig *genai.GenerateContentConfig

	respText string
	err      error
}

func (m *mockContentClient) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.calls++
	m.lastModel = model
	m.lastConfig = config
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		m.lastText = contents[0].Parts[0].Text
	}
	if m.err != nil {
		return nil, m.err
	}
	return textResponse(m.respText), nil
}

type mockImageClient struct {
	calls      int
	lastModel  string
	lastPrompt string
	lastConfig *genai.GenerateImagesConfig

	resp *genai.GenerateImagesResponse
	err  error
}

func (m *mockImageClient) GenerateImages(ctx context.Context, model string, prompt string, config *genai.GenerateImagesConfig) (*genai.GenerateImagesResponse, error) {
	m.calls++
	m.lastModel = model
	m.lastPrompt = prompt
	m.lastConfig = config
	return m.resp, m.err
}

type mockCache struct {
	data map[string]any
}

func (m *mockCache) Get(key string) (any, bool) {
	val, ok := m.data[key]
	return val, ok
}

func (m *mockCache) Set(key string, value any, d time.Duration) {
	m.data[key] = value
}

// --- Helpers ---

func textResponse(text string) *genai.GenerateContentResponse {
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{
				Role:  string(genai.RoleModel),
				Parts: []*genai.Part{{Text: text}},
			},
		}},
	}
}

func imageResponse(data []byte, mime string) *genai.GenerateImagesResponse {
	return &genai.GenerateImagesResponse{
		GeneratedImages: []*genai.GeneratedImage{{
			Image: &genai.Image{ImageBytes: data, MIMEType: mime},
		}},
	}
}

// fakeJPEG は http.DetectContentType が image/jpeg と判定する最小のバイト列です。
var fakeJPEG = []byte{0xFF, 0xD8, 0xFF, 0xE0, 0x00, 0x10, 'J', 'F', 'I', 'F'}
