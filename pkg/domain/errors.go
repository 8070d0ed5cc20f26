package domain

import "errors"

// エラー分類。すべてのリモート呼び出しの失敗は呼び出し地点でこのいずれかに変換されます。
var (
	ErrConfigMissing      = errors.New("configuration missing")
	ErrSegmentationFailed = errors.New("segmentation failed")
	ErrSynthesisFailed    = errors.New("synthesis failed")
	ErrChatSendFailed     = errors.New("chat send failed")
)

// defaultUserMessage は分類不明なエラーに対して表示する文言です。
const defaultUserMessage = "予期しないエラーが発生しました。もう一度お試しください。"

// Error は利用者向けメッセージと元のエラーを保持します。
// errors.Is は Kind と Err の両方に一致します。
type Error struct {
	Kind    error
	Message string
	Err     error
}

// NewError は分類・利用者向けメッセージ・原因から Error を作成します。
func NewError(kind error, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return e.Message
	}
	return e.Message + ": " + e.Err.Error()
}

func (e *Error) Unwrap() []error {
	var errs []error
	if e.Kind != nil {
		errs = append(errs, e.Kind)
	}
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	return errs
}

// UserMessage は利用者に表示してよい文言だけを取り出します。
// サービスの生のエラーは返しません。
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var de *Error
	if errors.As(err, &de) && de.Message != "" {
		return de.Message
	}
	return defaultUserMessage
}
