package autoreply

import (
	"context"
	"fmt"
	"strings"

	"replyflow/internal/mailbox"
	"replyflow/internal/models"
)

// BuildQuery forms the provider search expression for one run: unread
// inbox mail without the idempotency marker, narrowed by the rule's
// matcher verbatim. The provider's query grammar is authoritative; no
// local parsing happens here.
func BuildQuery(rule *models.RuleConfig, handledLabel string) string {
	parts := []string{"in:inbox", "is:unread", fmt.Sprintf("-label:%q", handledLabel)}
	if m := strings.TrimSpace(rule.Matcher); m != "" {
		parts = append(parts, m)
	}
	return strings.Join(parts, " ")
}

// SelectCandidates fetches every message matching the run's query,
// paginating internally to a finite slice. Order is provider-defined and
// only stable within one run. Any provider failure wraps as FetchError.
func SelectCandidates(ctx context.Context, client mailbox.Client, rule *models.RuleConfig, handledLabel string, pageSize int) ([]mailbox.CandidateMessage, error) {
	query := BuildQuery(rule, handledLabel)

	var all []mailbox.CandidateMessage
	pageToken := ""
	for {
		page, err := client.Search(ctx, query, pageToken, pageSize)
		if err != nil {
			return nil, &FetchError{Err: err}
		}
		all = append(all, page.Messages...)
		if page.NextPageToken == "" {
			return all, nil
		}
		pageToken = page.NextPageToken
	}
}
