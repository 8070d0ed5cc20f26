package chat

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/shouni/go-storyboard-kit/pkg/domain"
)

var (
	// ErrEmptyMessage は空白のみのメッセージが送信されたことを表します。
	ErrEmptyMessage = errors.New("message is empty")
	// ErrSendInProgress は前の送信が完了する前に次の送信が行われたことを表します。
	ErrSendInProgress = errors.New("chat send already in progress")
)

const (
	DefaultGreeting = "こんにちは！今日はあなたの創作をどうお手伝いできますか？"
	sendFailedText  = "申し訳ありません、応答を取得できませんでした。もう一度お試しください。"
)

// Responder は会話の相手です。これまでの成立したやり取りと新しいメッセージから応答を1つ返します。
type Responder interface {
	Respond(ctx context.Context, history []domain.ChatTurn, message string) (string, error)
}

// ResponderFunc は関数を Responder として扱うためのアダプターです。
type ResponderFunc func(ctx context.Context, history []domain.ChatTurn, message string) (string, error)

func (f ResponderFunc) Respond(ctx context.Context, history []domain.ChatTurn, message string) (string, error) {
	return f(ctx, history, message)
}

// Option は Session の任意設定です。
type Option func(*Session)

// WithGreeting は最初のアシスタント発話を差し替えます。
func WithGreeting(text string) Option {
	return func(s *Session) {
		if strings.TrimSpace(text) != "" {
			s.greeting = text
		}
	}
}

// Session は1つの会話を保持します。会話ログは追記のみで、送信は同時に1件までです。
type Session struct {
	responder Responder
	greeting  string

	sending sync.Mutex

	mu      sync.RWMutex
	turns   []domain.ChatTurn
	history []domain.ChatTurn // 応答を得られたやり取りのみ
	lastErr string
}

// NewSession は挨拶ターンを1つ持つ Session を作成します。
func NewSession(responder Responder, opts ...Option) (*Session, error) {
	if responder == nil {
		return nil, fmt.Errorf("responder is required")
	}
	s := &Session{responder: responder, greeting: DefaultGreeting}
	for _, opt := range opts {
		opt(s)
	}
	s.turns = []domain.ChatTurn{{Speaker: domain.SpeakerAssistant, Text: s.greeting}}
	return s, nil
}

// Send はユーザー発話を追加し、応答を取得して追加します。
// 失敗時はユーザー発話だけが残り、LastError に利用者向けの文言が入ります。
func (s *Session) Send(ctx context.Context, text string) (domain.ChatTurn, error) {
	if strings.TrimSpace(text) == "" {
		return domain.ChatTurn{}, ErrEmptyMessage
	}
	if !s.sending.TryLock() {
		return domain.ChatTurn{}, ErrSendInProgress
	}
	defer s.sending.Unlock()

	userTurn := domain.ChatTurn{Speaker: domain.SpeakerUser, Text: text}
	s.mu.Lock()
	s.turns = append(s.turns, userTurn)
	s.lastErr = ""
	history := make([]domain.ChatTurn, len(s.history))
	copy(history, s.history)
	s.mu.Unlock()

	reply, err := s.responder.Respond(ctx, history, text)
	if err == nil && strings.TrimSpace(reply) == "" {
		err = fmt.Errorf("empty reply")
	}
	if err != nil {
		slog.ErrorContext(ctx, "チャットの応答取得に失敗しました", "error", err)
		s.mu.Lock()
		s.lastErr = sendFailedText
		s.mu.Unlock()
		return domain.ChatTurn{}, domain.NewError(domain.ErrChatSendFailed, sendFailedText, err)
	}

	botTurn := domain.ChatTurn{Speaker: domain.SpeakerAssistant, Text: reply}
	s.mu.Lock()
	s.turns = append(s.turns, botTurn)
	s.history = append(s.history, userTurn, botTurn)
	s.mu.Unlock()
	return botTurn, nil
}

// Turns は会話ログの複製を返します。
func (s *Session) Turns() []domain.ChatTurn {
	s.mu.RLock()
	defer s.mu.RUnlock()
	turns := make([]domain.ChatTurn, len(s.turns))
	copy(turns, s.turns)
	return turns
}

// LastError は直前の送信失敗の文言を返します。次の送信で消えます。
func (s *Session) LastError() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}
