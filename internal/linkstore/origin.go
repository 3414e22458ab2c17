package linkstore

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
)

// Origin records where a relayed message came from so that a reply to its
// copy can be routed back.
type Origin struct {
	ChatID    int64
	ThreadID  *int64
	MessageID int64
}

func NewOrigin(chatID int64, threadID int64, messageID int64) Origin {
	o := Origin{ChatID: chatID, MessageID: messageID}
	if threadID > 0 {
		id := threadID
		o.ThreadID = &id
	}
	return o
}

// Thread returns the thread id, or 0 for a top-level message.
func (o Origin) Thread() int64 {
	if o.ThreadID == nil {
		return 0
	}
	return *o.ThreadID
}

func (o Origin) Equal(other Origin) bool {
	return o.ChatID == other.ChatID && o.MessageID == other.MessageID && o.Thread() == other.Thread()
}

func (o Origin) Validate() error {
	if o.ChatID == 0 {
		return fmt.Errorf("original_chat_id is required")
	}
	if o.MessageID <= 0 {
		return fmt.Errorf("original_message_id must be > 0")
	}
	if o.ThreadID != nil && *o.ThreadID <= 0 {
		return fmt.Errorf("original_thread_id must be > 0")
	}
	return nil
}

// The thread field keeps the "tread" spelling of data written by the first
// version of the bot. Both spellings are accepted on read.
type originWire struct {
	ChatID          *int64 `json:"original_chat_id"`
	LegacyThreadID  *int64 `json:"original_tread_id"`
	MessageID       *int64 `json:"original_message_id"`
	CorrectThreadID *int64 `json:"original_thread_id,omitempty"`
}

func EncodeOrigin(o Origin) (string, error) {
	if err := o.Validate(); err != nil {
		return "", fmt.Errorf("%w: %v", ErrSerialization, err)
	}
	chatID := o.ChatID
	messageID := o.MessageID
	wire := originWire{
		ChatID:    &chatID,
		MessageID: &messageID,
	}
	if o.ThreadID != nil {
		threadID := *o.ThreadID
		wire.LegacyThreadID = &threadID
	}
	raw, err := json.Marshal(wire)
	if err != nil {
		return "", fmt.Errorf("%w: marshal origin: %v", ErrSerialization, err)
	}
	return string(raw), nil
}

func DecodeOrigin(raw string) (Origin, error) {
	dec := json.NewDecoder(bytes.NewReader([]byte(raw)))
	var wire originWire
	if err := dec.Decode(&wire); err != nil {
		return Origin{}, fmt.Errorf("%w: invalid origin json: %v", ErrDeserialization, err)
	}
	var trailing any
	if err := dec.Decode(&trailing); err != io.EOF {
		return Origin{}, fmt.Errorf("%w: invalid origin json: trailing data", ErrDeserialization)
	}
	if wire.ChatID == nil {
		return Origin{}, fmt.Errorf("%w: original_chat_id is required", ErrDeserialization)
	}
	if wire.MessageID == nil {
		return Origin{}, fmt.Errorf("%w: original_message_id is required", ErrDeserialization)
	}
	o := Origin{ChatID: *wire.ChatID, MessageID: *wire.MessageID}
	switch {
	case wire.LegacyThreadID != nil:
		threadID := *wire.LegacyThreadID
		o.ThreadID = &threadID
	case wire.CorrectThreadID != nil:
		threadID := *wire.CorrectThreadID
		o.ThreadID = &threadID
	}
	if err := o.Validate(); err != nil {
		return Origin{}, fmt.Errorf("%w: %v", ErrDeserialization, err)
	}
	return o, nil
}
