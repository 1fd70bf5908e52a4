package autoreply

import (
	"context"
	"errors"
	"testing"

	"replyflow/internal/mailbox"
	"replyflow/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildQuery(t *testing.T) {
	tests := []struct {
		name    string
		matcher string
		want    string
	}{
		{
			name:    "empty matcher selects all unread inbox mail",
			matcher: "",
			want:    `in:inbox is:unread -label:"auto-replied"`,
		},
		{
			name:    "matcher appended verbatim",
			matcher: "from:billing@acme.com subject:invoice",
			want:    `in:inbox is:unread -label:"auto-replied" from:billing@acme.com subject:invoice`,
		},
		{
			name:    "matcher whitespace trimmed",
			matcher: "  is:starred  ",
			want:    `in:inbox is:unread -label:"auto-replied" is:starred`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rule := &models.RuleConfig{Matcher: tt.matcher}
			assert.Equal(t, tt.want, BuildQuery(rule, "auto-replied"))
		})
	}
}

func TestSelectCandidates_Paginates(t *testing.T) {
	client := &fakeClient{
		pages: []mailbox.SearchPage{
			{Messages: []mailbox.CandidateMessage{{ID: "m1"}, {ID: "m2"}}, NextPageToken: "tok-1"},
			{Messages: []mailbox.CandidateMessage{{ID: "m3"}}},
		},
	}

	got, err := SelectCandidates(context.Background(), client, &models.RuleConfig{}, "auto-replied", 2)
	require.NoError(t, err)

	require.Len(t, got, 3)
	assert.Equal(t, mailbox.MessageID("m1"), got[0].ID)
	assert.Equal(t, mailbox.MessageID("m3"), got[2].ID)
	assert.Equal(t, []string{"", "tok-1"}, client.pageTokens)
	require.Len(t, client.queries, 2)
	assert.Equal(t, `in:inbox is:unread -label:"auto-replied"`, client.queries[0])
}

func TestSelectCandidates_EmptyMailbox(t *testing.T) {
	client := &fakeClient{}

	got, err := SelectCandidates(context.Background(), client, &models.RuleConfig{}, "auto-replied", 100)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestSelectCandidates_ProviderErrorIsFetchError(t *testing.T) {
	client := &fakeClient{searchErr: errors.New("quota exceeded")}

	_, err := SelectCandidates(context.Background(), client, &models.RuleConfig{}, "auto-replied", 100)
	require.Error(t, err)

	var fe *FetchError
	require.True(t, errors.As(err, &fe))
	assert.Contains(t, fe.Error(), "quota exceeded")
}
