package mailbox

import (
	"context"
	"fmt"
	"time"

	"replyflow/internal/cache"

	"golang.org/x/oauth2"
	"google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"
)

const (
	labelCacheTTL  = time.Hour
	defaultTimeout = 30 * time.Second
)

// GmailClient adapts the Gmail API to the Client interface. The handled
// label acts as the idempotency marker: IsHandled and MarkHandled read
// and write it, and the search query excludes it. Every provider call is
// bounded by the configured timeout.
type GmailClient struct {
	svc          *gmail.Service
	handledLabel string
	timeout      time.Duration
	labels       *cache.Cache
}

// NewGmailService builds a Gmail API service from an already-valid OAuth
// access token. Token refresh is the caller's concern.
func NewGmailService(ctx context.Context, accessToken string) (*gmail.Service, error) {
	if accessToken == "" {
		return nil, fmt.Errorf("gmail access token not configured")
	}
	ts := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: accessToken})
	svc, err := gmail.NewService(ctx, option.WithTokenSource(ts))
	if err != nil {
		return nil, fmt.Errorf("failed to create gmail service: %w", err)
	}
	return svc, nil
}

// NewGmailClient wraps a Gmail service. handledLabel names the label used
// as the idempotency marker; it is created on first use if missing.
func NewGmailClient(svc *gmail.Service, handledLabel string, timeout time.Duration) *GmailClient {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &GmailClient{
		svc:          svc,
		handledLabel: handledLabel,
		timeout:      timeout,
		labels:       cache.New(),
	}
}

// bound derives a per-call deadline from the surrounding context so no
// provider call blocks indefinitely.
func (g *GmailClient) bound(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, g.timeout)
}

// Search lists messages matching the query and fetches metadata for each.
func (g *GmailClient) Search(ctx context.Context, query string, pageToken string, pageSize int) (SearchPage, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	call := g.svc.Users.Messages.List("me").Q(query).MaxResults(int64(pageSize))
	if pageToken != "" {
		call = call.PageToken(pageToken)
	}
	res, err := call.Context(ctx).Do()
	if err != nil {
		return SearchPage{}, fmt.Errorf("gmail list: %w", err)
	}

	page := SearchPage{NextPageToken: res.NextPageToken}
	for _, m := range res.Messages {
		msg, err := g.svc.Users.Messages.Get("me", m.Id).
			Format("metadata").
			MetadataHeaders("From", "To", "Subject", "Message-Id").
			Context(ctx).Do()
		if err != nil {
			return SearchPage{}, fmt.Errorf("gmail get %s: %w", m.Id, err)
		}

		headers := map[string]string{}
		if msg.Payload != nil {
			for _, h := range msg.Payload.Headers {
				headers[h.Name] = h.Value
			}
		}
		page.Messages = append(page.Messages, CandidateMessage{
			ID:       MessageID(msg.Id),
			ThreadID: msg.ThreadId,
			Sender:   headers["From"],
			Subject:  headers["Subject"],
			Snippet:  msg.Snippet,
			Headers:  headers,
		})
	}
	return page, nil
}

// Send submits the composed reply on the source message's thread.
func (g *GmailClient) Send(ctx context.Context, msg TransportMessage) (MessageID, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	res, err := g.svc.Users.Messages.Send("me", &gmail.Message{
		Raw:      msg.Raw,
		ThreadId: msg.ThreadID,
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("gmail send: %w", err)
	}
	return MessageID(res.Id), nil
}

// MarkHandled applies the idempotency marker label. Gmail treats adding
// an already-present label as a no-op, so repeated calls are safe.
func (g *GmailClient) MarkHandled(ctx context.Context, id MessageID) error {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	labelID, err := g.handledLabelID(ctx)
	if err != nil {
		return err
	}
	_, err = g.svc.Users.Messages.Modify("me", string(id), &gmail.ModifyMessageRequest{
		AddLabelIds: []string{labelID},
	}).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("gmail modify %s: %w", id, err)
	}
	return nil
}

// IsHandled reports whether the message already carries the marker label.
func (g *GmailClient) IsHandled(ctx context.Context, id MessageID) (bool, error) {
	ctx, cancel := g.bound(ctx)
	defer cancel()

	labelID, err := g.handledLabelID(ctx)
	if err != nil {
		return false, err
	}
	msg, err := g.svc.Users.Messages.Get("me", string(id)).Format("minimal").Context(ctx).Do()
	if err != nil {
		return false, fmt.Errorf("gmail get %s: %w", id, err)
	}
	for _, l := range msg.LabelIds {
		if l == labelID {
			return true, nil
		}
	}
	return false, nil
}

// HandledLabel returns the label name used as the idempotency marker.
func (g *GmailClient) HandledLabel() string {
	return g.handledLabel
}

// handledLabelID resolves the marker label name to its ID, creating the
// label when absent. Resolutions are cached to avoid a Labels.List per
// candidate.
func (g *GmailClient) handledLabelID(ctx context.Context) (string, error) {
	if id, ok := g.labels.Get(g.handledLabel); ok {
		return id, nil
	}

	lr, err := g.svc.Users.Labels.List("me").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("gmail list labels: %w", err)
	}
	for _, l := range lr.Labels {
		if l.Name == g.handledLabel {
			g.labels.Set(g.handledLabel, l.Id, labelCacheTTL)
			return l.Id, nil
		}
	}

	created, err := g.svc.Users.Labels.Create("me", &gmail.Label{
		Name:                  g.handledLabel,
		LabelListVisibility:   "labelShow",
		MessageListVisibility: "show",
	}).Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("create label %q: %w", g.handledLabel, err)
	}
	g.labels.Set(g.handledLabel, created.Id, labelCacheTTL)
	return created.Id, nil
}

var _ Client = (*GmailClient)(nil)
