package mailbox

// MessageID is a provider-assigned message identifier, unique per mailbox.
type MessageID string

// CandidateMessage is an unread source message fetched from the mailbox.
// Immutable once fetched within a run.
type CandidateMessage struct {
	ID       MessageID
	ThreadID string
	Sender   string // raw From header value
	Subject  string
	Snippet  string
	Headers  map[string]string
}

// TransportMessage is a fully composed reply, ready for provider submission.
// Raw holds the MIME text of the message encoded as URL-safe base64.
type TransportMessage struct {
	To        string
	Subject   string
	InReplyTo string
	ThreadID  string
	Raw       string
}

// SearchPage is one page of a mailbox search.
type SearchPage struct {
	Messages      []CandidateMessage
	NextPageToken string
}
