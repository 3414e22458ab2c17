package relayruntime

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/vandi37/anonimus-bot/internal/relay"
	"github.com/vandi37/anonimus-bot/internal/retryutil"
	"github.com/vandi37/anonimus-bot/internal/telegramapi"
)

const floodRetryAttempts = 2

// API is the slice of the Bot API the relay runtime calls.
type API interface {
	GetMe(ctx context.Context) (*telegramapi.User, error)
	GetUpdates(ctx context.Context, offset int64, timeout time.Duration) ([]telegramapi.Update, int64, error)
	CopyMessage(ctx context.Context, req telegramapi.CopyMessageRequest) (int64, error)
	SendMessage(ctx context.Context, chatID int64, text string, threadID int64) error
	SetMyCommands(ctx context.Context, commands []telegramapi.BotCommand) error
}

type telegramTransport struct {
	api API
}

func NewTransport(api API) relay.Transport {
	return &telegramTransport{api: api}
}

func (t *telegramTransport) CopyMessage(ctx context.Context, req relay.CopyRequest) (int64, error) {
	var id int64
	err := retryutil.DoRetryAfter(ctx, floodRetryAttempts, retryAfter, func(ctx context.Context) error {
		var err error
		id, err = t.api.CopyMessage(ctx, telegramapi.CopyMessageRequest{
			ChatID:           req.ToChatID,
			FromChatID:       req.FromChatID,
			MessageID:        req.MessageID,
			ReplyToMessageID: req.ReplyToMessageID,
			MessageThreadID:  req.ThreadID,
		})
		return err
	})
	return id, err
}

func (t *telegramTransport) SendText(ctx context.Context, chatID int64, threadID int64, text string) error {
	return retryutil.DoRetryAfter(ctx, floodRetryAttempts, retryAfter, func(ctx context.Context) error {
		return t.api.SendMessage(ctx, chatID, text, threadID)
	})
}

func retryAfter(err error) (time.Duration, bool) {
	var reqErr *telegramapi.RequestError
	if !errors.As(err, &reqErr) || reqErr.RetryAfter <= 0 {
		return 0, false
	}
	return reqErr.RetryAfter, true
}

// messageFromTelegram extracts the routing fields of a Telegram message.
// Only forum topic messages carry a thread; message_thread_id on ordinary
// replies names the reply chain, not a topic.
func messageFromTelegram(msg *telegramapi.Message) relay.Message {
	out := relay.Message{
		MessageID: msg.MessageID,
		Text:      strings.TrimSpace(msg.Text),
	}
	if msg.Chat != nil {
		out.ChatID = msg.Chat.ID
	}
	if msg.IsTopicMessage && msg.MessageThreadID > 0 {
		out.ThreadID = msg.MessageThreadID
	}
	// Inside a forum topic every message implicitly replies to the topic's
	// root message.
	if msg.ReplyTo != nil && !(out.ThreadID > 0 && msg.ReplyTo.MessageID == out.ThreadID) {
		out.ReplyToMessageID = msg.ReplyTo.MessageID
	}
	if msg.From != nil {
		out.FromUserID = msg.From.ID
	}
	return out
}
