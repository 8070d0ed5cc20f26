package chat

import (
	"context"
	"sync"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"google.golang.org/genai"
)

// --- Mocks ---

type responseStep struct {
	reply string
	err   error
}

// mockResponder は呼び出しごとに steps を順に返し、受け取った履歴を記録します。
type mockResponder struct {
	mu        sync.Mutex
	steps     []responseStep
	histories [][]domain.ChatTurn
	messages  []string

	started chan struct{}
	block   chan struct{}
}

func (m *mockResponder) Respond(ctx context.Context, history []domain.ChatTurn, message string) (string, error) {
	m.mu.Lock()
	n := len(m.messages)
	m.histories = append(m.histories, history)
	m.messages = append(m.messages, message)
	m.mu.Unlock()

	if m.block != nil {
		m.started <- struct{}{}
		<-m.block
	}

	if n < len(m.steps) {
		return m.steps[n].reply, m.steps[n].err
	}
	return "reply", nil
}

func (m *mockResponder) callCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.messages)
}

type mockContentClient struct {
	lastModel    string
	lastContents []*genai.Content
	lastConfig   *genai.GenerateContentConfig

	respText string
	err      error
}

func (m *mockContentClient) GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	m.lastModel = model
	m.lastContents = contents
	m.lastConfig = config
	if m.err != nil {
		return nil, m.err
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{
			{Content: &genai.Content{Role: string(genai.RoleModel), Parts: []*genai.Part{{Text: m.respText}}}},
		},
	}, nil
}
