package relay

import (
	"context"
	"errors"
)

var ErrTransport = errors.New("relay: transport failed")

// Message is the part of an inbound chat message the relay acts on.
type Message struct {
	ChatID    int64
	ThreadID  int64
	MessageID int64
	// ReplyToMessageID is 0 when the message is not a reply.
	ReplyToMessageID int64
	FromUserID       int64
	Text             string
}

func (m Message) IsReply() bool {
	return m.ReplyToMessageID > 0
}

type CopyRequest struct {
	ToChatID         int64
	FromChatID       int64
	MessageID        int64
	ReplyToMessageID int64
	ThreadID         int64
}

// Transport delivers messages on the chat platform.
type Transport interface {
	// CopyMessage copies a message without attribution and returns the id
	// assigned to the copy.
	CopyMessage(ctx context.Context, req CopyRequest) (int64, error)
	SendText(ctx context.Context, chatID int64, threadID int64, text string) error
}
