package autoreply

import (
	"encoding/base64"
	"errors"
	"strings"
	"testing"

	"replyflow/internal/mailbox"
	"replyflow/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func decodeRaw(t *testing.T, raw string) string {
	t.Helper()
	decoded, err := base64.RawURLEncoding.DecodeString(raw)
	require.NoError(t, err, "raw payload must be URL-safe base64")
	return string(decoded)
}

func TestCompose_ReplyPayload(t *testing.T) {
	rule := &models.RuleConfig{
		ReplySubject:          "Re: Inquiry",
		ReplyBody:             "Hello",
		IncludeOriginalThread: true,
	}
	source := mailbox.CandidateMessage{
		ID:       "msg-1",
		ThreadID: "thread-1",
		Sender:   "Example Sender <example@acme.com>",
		Snippet:  "Need details",
		Headers:  map[string]string{"Message-Id": "<msg-1>"},
	}

	msg, err := Compose(rule, source, DefaultSnippetMax)
	require.NoError(t, err)

	assert.Equal(t, "example@acme.com", msg.To)
	assert.Equal(t, "Re: Inquiry", msg.Subject)
	assert.Equal(t, "<msg-1>", msg.InReplyTo)
	assert.Equal(t, "thread-1", msg.ThreadID)

	decoded := decodeRaw(t, msg.Raw)
	assert.Contains(t, decoded, "To: example@acme.com\r\n")
	assert.Contains(t, decoded, "Subject: Re: Inquiry\r\n")
	assert.Contains(t, decoded, "In-Reply-To: <msg-1>\r\n")
	assert.Contains(t, decoded, "References: <msg-1>\r\n")
	assert.Contains(t, decoded, "Hello")
	assert.Contains(t, decoded, "Need details")
}

func TestCompose_HeadersPrecedeBody(t *testing.T) {
	rule := &models.RuleConfig{ReplySubject: "Re: Hi", ReplyBody: "Thanks!"}
	source := mailbox.CandidateMessage{ID: "abc", Sender: "a@b.com"}

	msg, err := Compose(rule, source, DefaultSnippetMax)
	require.NoError(t, err)

	decoded := decodeRaw(t, msg.Raw)
	parts := strings.SplitN(decoded, "\r\n\r\n", 2)
	require.Len(t, parts, 2, "message must have a header block and a body")

	headers := strings.Split(parts[0], "\r\n")
	assert.Contains(t, headers, "To: a@b.com")
	assert.Contains(t, headers, "Subject: Re: Hi")
	assert.Contains(t, headers, "In-Reply-To: abc")
	assert.Contains(t, headers, "MIME-Version: 1.0")
	assert.Equal(t, "Thanks!", parts[1])
}

func TestCompose_SenderExtraction(t *testing.T) {
	tests := []struct {
		name    string
		sender  string
		want    string
		wantErr bool
	}{
		{name: "bare address", sender: "user@example.com", want: "user@example.com"},
		{name: "display name", sender: `"Jo Smith" <jo@example.com>`, want: "jo@example.com"},
		{name: "empty sender", sender: "", wantErr: true},
		{name: "whitespace only", sender: "   ", wantErr: true},
		{name: "unparseable", sender: "not an address", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := &models.RuleConfig{ReplySubject: "Re:", ReplyBody: "ok"}
			source := mailbox.CandidateMessage{ID: "m1", Sender: tt.sender}

			msg, err := Compose(rule, source, DefaultSnippetMax)
			if tt.wantErr {
				var ce *ComposeError
				require.True(t, errors.As(err, &ce))
				assert.Equal(t, models.SkipNoSenderAddress, ce.Reason)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, msg.To)
		})
	}
}

func TestCompose_SnippetHandling(t *testing.T) {
	tests := []struct {
		name          string
		include       bool
		snippet       string
		snippetMax    int
		wantQuoted    string
		wantNoSnippet bool
	}{
		{
			name:       "snippet quoted when enabled",
			include:    true,
			snippet:    "original text",
			snippetMax: 500,
			wantQuoted: "> original text",
		},
		{
			name:          "snippet omitted when disabled",
			include:       false,
			snippet:       "original text",
			snippetMax:    500,
			wantNoSnippet: true,
		},
		{
			name:       "oversized snippet truncated, composition succeeds",
			include:    true,
			snippet:    strings.Repeat("x", 2000),
			snippetMax: 500,
			wantQuoted: "> " + strings.Repeat("x", 500),
		},
		{
			name:       "multiline snippet quoted per line",
			include:    true,
			snippet:    "line one\nline two",
			snippetMax: 500,
			wantQuoted: "> line one\r\n> line two",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := &models.RuleConfig{
				ReplySubject:          "Re:",
				ReplyBody:             "body",
				IncludeOriginalThread: tt.include,
			}
			source := mailbox.CandidateMessage{ID: "m1", Sender: "a@b.com", Snippet: tt.snippet}

			msg, err := Compose(rule, source, tt.snippetMax)
			require.NoError(t, err)

			decoded := decodeRaw(t, msg.Raw)
			if tt.wantNoSnippet {
				assert.NotContains(t, decoded, "Original message")
				return
			}
			assert.Contains(t, decoded, "--- Original message ---")
			assert.Contains(t, decoded, tt.wantQuoted)
			if tt.snippetMax < len(tt.snippet) {
				assert.NotContains(t, decoded, strings.Repeat("x", tt.snippetMax+1))
			}
		})
	}
}

func TestCompose_MarkupPassesThroughLiterally(t *testing.T) {
	rule := &models.RuleConfig{ReplySubject: "Re:", ReplyBody: "Thanks for *reaching out*, we _will_ reply."}
	source := mailbox.CandidateMessage{ID: "m1", Sender: "a@b.com"}

	msg, err := Compose(rule, source, DefaultSnippetMax)
	require.NoError(t, err)

	decoded := decodeRaw(t, msg.Raw)
	assert.Contains(t, decoded, "Thanks for *reaching out*, we _will_ reply.")
}

func TestThreadingID_FallsBackToProviderID(t *testing.T) {
	tests := []struct {
		name    string
		headers map[string]string
		want    string
	}{
		{name: "Message-Id header", headers: map[string]string{"Message-Id": "<rfc-id>"}, want: "<rfc-id>"},
		{name: "Message-ID header", headers: map[string]string{"Message-ID": "<rfc-id-2>"}, want: "<rfc-id-2>"},
		{name: "no header", headers: nil, want: "prov-1"},
		{name: "empty header value", headers: map[string]string{"Message-Id": ""}, want: "prov-1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			source := mailbox.CandidateMessage{ID: "prov-1", Headers: tt.headers}
			assert.Equal(t, tt.want, threadingID(source))
		})
	}
}
