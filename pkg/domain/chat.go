package domain

// Speaker は会話ターンの話者です。
type Speaker string

const (
	SpeakerUser      Speaker = "user"
	SpeakerAssistant Speaker = "assistant"
)

// ChatTurn は追記のみの会話ログの1要素です。作成後に変更してはいけません。
type ChatTurn struct {
	Speaker Speaker
	Text    string
}
