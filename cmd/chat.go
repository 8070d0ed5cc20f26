package cmd

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"github.com/shouni/go-storyboard-kit/internal/view"
	"github.com/shouni/go-storyboard-kit/pkg/domain"
	"github.com/spf13/cobra"
)

var exitCommands = map[string]bool{"/exit": true, "/quit": true}

// chatCmd は創作アシスタントとの対話を開始します。
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "創作アシスタントと会話します。",
	Long:  `1行ずつメッセージを送信します。/exit で終了します。`,
	Args:  cobra.NoArgs,
	RunE:  chatCommand,
}

func chatCommand(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	session, err := appCtx.NewChatSession()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	renderer := view.NewReplyRenderer()
	for _, turn := range session.Turns() {
		printTurn(out, renderer, turn)
	}

	scanner := bufio.NewScanner(cmd.InOrStdin())
	for {
		fmt.Fprint(out, styles.Prompt.Render("> "))
		if !scanner.Scan() {
			fmt.Fprintln(out)
			break
		}
		line := strings.TrimSpace(scanner.Text())
		if exitCommands[line] {
			break
		}
		if line == "" {
			continue
		}

		turn, err := session.Send(ctx, line)
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			fmt.Fprintln(out, styles.Error.Render(session.LastError()))
			continue
		}
		printTurn(out, renderer, turn)
	}
	return scanner.Err()
}

func printTurn(w io.Writer, renderer *view.ReplyRenderer, turn domain.ChatTurn) {
	if turn.Speaker != domain.SpeakerAssistant {
		return
	}
	fmt.Fprintln(w, styles.Assistant.Render(renderer.Render(turn.Text)))
}
