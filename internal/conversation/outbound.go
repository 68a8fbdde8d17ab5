package conversation

import "context"

// OutboundReply is a single message to deliver to a user.
type OutboundReply struct {
	From string
	To   string
	Body string
}

// ReplyMessenger delivers outbound replies over the messaging provider.
type ReplyMessenger interface {
	SendReply(ctx context.Context, msg OutboundReply) error
}
