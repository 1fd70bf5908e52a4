package autoreply

import (
	"encoding/base64"
	"fmt"
	"net/mail"
	"strings"

	"replyflow/internal/mailbox"
	"replyflow/internal/models"
)

// DefaultSnippetMax bounds the quoted snippet appended to a reply body.
const DefaultSnippetMax = 500

// Compose builds a transport-ready reply to source from the rule's
// template. The In-Reply-To and References headers carry the source
// message identifier so the recipient's client threads the conversation;
// Raw is the assembled MIME text encoded as URL-safe base64.
//
// The reply body is plain text: any emphasis markup in the template
// passes through literally.
func Compose(rule *models.RuleConfig, source mailbox.CandidateMessage, snippetMax int) (mailbox.TransportMessage, error) {
	if snippetMax <= 0 {
		snippetMax = DefaultSnippetMax
	}

	recipient, err := senderAddress(source)
	if err != nil {
		return mailbox.TransportMessage{}, err
	}

	ref := threadingID(source)

	var body strings.Builder
	body.WriteString(rule.ReplyBody)
	if rule.IncludeOriginalThread && source.Snippet != "" {
		body.WriteString("\r\n\r\n--- Original message ---\r\n")
		body.WriteString(quoteSnippet(source.Snippet, snippetMax))
	}

	var msg strings.Builder
	fmt.Fprintf(&msg, "To: %s\r\n", recipient)
	fmt.Fprintf(&msg, "Subject: %s\r\n", rule.ReplySubject)
	fmt.Fprintf(&msg, "In-Reply-To: %s\r\n", ref)
	fmt.Fprintf(&msg, "References: %s\r\n", ref)
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body.String())

	return mailbox.TransportMessage{
		To:        recipient,
		Subject:   rule.ReplySubject,
		InReplyTo: ref,
		ThreadID:  source.ThreadID,
		Raw:       base64.RawURLEncoding.EncodeToString([]byte(msg.String())),
	}, nil
}

// senderAddress extracts the reply recipient from the source's From
// header. A missing or unparseable address is a per-candidate skip, not
// a run failure.
func senderAddress(source mailbox.CandidateMessage) (string, error) {
	raw := strings.TrimSpace(source.Sender)
	if raw == "" {
		return "", &ComposeError{Reason: models.SkipNoSenderAddress}
	}
	addr, err := mail.ParseAddress(raw)
	if err != nil {
		return "", &ComposeError{Reason: models.SkipNoSenderAddress}
	}
	return addr.Address, nil
}

// threadingID prefers the RFC 5322 Message-Id header of the source,
// falling back to the provider's message id.
func threadingID(source mailbox.CandidateMessage) string {
	if id, ok := source.Headers["Message-Id"]; ok && id != "" {
		return id
	}
	if id, ok := source.Headers["Message-ID"]; ok && id != "" {
		return id
	}
	return string(source.ID)
}

// quoteSnippet prefixes the snippet as a quoted block, truncated to max
// runes so an oversized original never inflates the reply payload.
func quoteSnippet(snippet string, max int) string {
	runes := []rune(snippet)
	if len(runes) > max {
		snippet = string(runes[:max])
	}
	lines := strings.Split(snippet, "\n")
	for i, l := range lines {
		lines[i] = "> " + strings.TrimRight(l, "\r")
	}
	return strings.Join(lines, "\r\n")
}
