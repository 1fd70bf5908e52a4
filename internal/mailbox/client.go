package mailbox

import "context"

// Client is the narrow mailbox surface required by the auto-reply engine.
// MarkHandled is idempotent: marking the same message twice is a no-op.
type Client interface {
	Search(ctx context.Context, query string, pageToken string, pageSize int) (SearchPage, error)
	Send(ctx context.Context, msg TransportMessage) (MessageID, error)
	MarkHandled(ctx context.Context, id MessageID) error
	IsHandled(ctx context.Context, id MessageID) (bool, error)
}
