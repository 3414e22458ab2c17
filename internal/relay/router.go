package relay

import "context"

type Kind string

const (
	KindCommand       Kind = "command"
	KindOperatorReply Kind = "operator_reply"
	KindUserMessage   Kind = "user_message"
	KindUnhandled     Kind = "unhandled"
)

// Router picks the flow for an inbound message. The first matching rule
// wins: commands, then operator replies, then messages from any other chat.
type Router struct {
	relay *Relay
}

func NewRouter(r *Relay) *Router {
	return &Router{relay: r}
}

func (rt *Router) Classify(msg Message) Kind {
	if _, ok := ParseCommand(msg.Text, rt.relay.botUsername); ok {
		return KindCommand
	}
	if msg.ChatID == rt.relay.operatorChatID {
		if msg.IsReply() {
			return KindOperatorReply
		}
		return KindUnhandled
	}
	return KindUserMessage
}

// Route runs the flow for msg and reports which one ran.
func (rt *Router) Route(ctx context.Context, msg Message) (Kind, error) {
	kind := rt.Classify(msg)
	switch kind {
	case KindCommand:
		return kind, rt.relay.Command(ctx, msg)
	case KindOperatorReply:
		return kind, rt.relay.Return(ctx, msg)
	case KindUserMessage:
		return kind, rt.relay.Forward(ctx, msg)
	default:
		rt.relay.logger.Debug("relay_unhandled_message",
			"chat_id", msg.ChatID,
			"message_id", msg.MessageID,
			"from_user_id", msg.FromUserID,
		)
		return kind, nil
	}
}
