package relay

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/vandi37/anonimus-bot/internal/linkstore"
)

const DefaultCommandReply = "Write messages to this bot and they will be delivered to its owner anonymously."

type Options struct {
	Store          linkstore.Store
	Transport      Transport
	OperatorChatID int64
	BotUsername    string
	CommandReply   string
	Logger         *slog.Logger
}

// Relay moves messages between users and the operator chat.
type Relay struct {
	store          linkstore.Store
	transport      Transport
	operatorChatID int64
	botUsername    string
	commandReply   string
	logger         *slog.Logger
}

func New(opts Options) (*Relay, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("link store is required")
	}
	if opts.Transport == nil {
		return nil, fmt.Errorf("transport is required")
	}
	if opts.OperatorChatID == 0 {
		return nil, fmt.Errorf("operator chat id is required")
	}
	reply := strings.TrimSpace(opts.CommandReply)
	if reply == "" {
		reply = DefaultCommandReply
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Relay{
		store:          opts.Store,
		transport:      opts.Transport,
		operatorChatID: opts.OperatorChatID,
		botUsername:    strings.TrimPrefix(strings.TrimSpace(opts.BotUsername), "@"),
		commandReply:   reply,
		logger:         logger,
	}, nil
}

func (r *Relay) OperatorChatID() int64 {
	return r.operatorChatID
}

// Forward copies a user's message into the operator chat and records where
// it came from under the id of the copy.
func (r *Relay) Forward(ctx context.Context, msg Message) error {
	copyID, err := r.transport.CopyMessage(ctx, CopyRequest{
		ToChatID:   r.operatorChatID,
		FromChatID: msg.ChatID,
		MessageID:  msg.MessageID,
	})
	if err != nil {
		return fmt.Errorf("%w: copy to operator chat: %w", ErrTransport, err)
	}

	origin := linkstore.NewOrigin(msg.ChatID, msg.ThreadID, msg.MessageID)
	if err := r.store.Put(ctx, copyID, origin); err != nil {
		// The copy is already visible to the operator; replies to it will be
		// silently dropped.
		r.logger.Warn("relay_link_orphaned",
			"copy_id", copyID,
			"chat_id", msg.ChatID,
			"message_id", msg.MessageID,
			"error", err.Error(),
		)
		return err
	}
	r.logger.Info("relay_forwarded",
		"chat_id", msg.ChatID,
		"message_id", msg.MessageID,
		"thread_id", msg.ThreadID,
		"copy_id", copyID,
	)
	return nil
}

// Return delivers an operator's reply back to the chat the replied-to copy
// came from. Replies to messages the relay did not create are ignored.
func (r *Relay) Return(ctx context.Context, msg Message) error {
	if !msg.IsReply() {
		return nil
	}
	origin, ok, err := r.store.Get(ctx, msg.ReplyToMessageID)
	if err != nil {
		return err
	}
	if !ok {
		r.logger.Debug("relay_return_absent",
			"reply_to_message_id", msg.ReplyToMessageID,
			"message_id", msg.MessageID,
		)
		return nil
	}
	if _, err := r.transport.CopyMessage(ctx, CopyRequest{
		ToChatID:         origin.ChatID,
		FromChatID:       r.operatorChatID,
		MessageID:        msg.MessageID,
		ReplyToMessageID: origin.MessageID,
		ThreadID:         origin.Thread(),
	}); err != nil {
		return fmt.Errorf("%w: copy reply to chat %d: %w", ErrTransport, origin.ChatID, err)
	}
	r.logger.Info("relay_returned",
		"copy_id", msg.ReplyToMessageID,
		"chat_id", origin.ChatID,
		"reply_to_message_id", origin.MessageID,
		"thread_id", origin.Thread(),
	)
	return nil
}

// Command answers /help and /start with the configured reply text.
func (r *Relay) Command(ctx context.Context, msg Message) error {
	name, ok := ParseCommand(msg.Text, r.botUsername)
	if !ok {
		return nil
	}
	if err := r.transport.SendText(ctx, msg.ChatID, msg.ThreadID, r.commandReply); err != nil {
		return fmt.Errorf("%w: reply to /%s: %w", ErrTransport, name, err)
	}
	r.logger.Debug("relay_command_replied", "chat_id", msg.ChatID, "command", name)
	return nil
}
