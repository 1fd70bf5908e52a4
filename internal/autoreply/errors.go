package autoreply

// FetchError indicates the candidate search failed before any candidate
// was known. It is fatal for the whole run and is the only error class
// that surfaces to the caller of Run.
type FetchError struct {
	Err error
}

func (e *FetchError) Error() string {
	return "fetch candidates: " + e.Err.Error()
}

func (e *FetchError) Unwrap() error {
	return e.Err
}

// ComposeError indicates a reply could not be built for one candidate.
// The runner records it as a skip; it never aborts the run.
type ComposeError struct {
	Reason string
}

func (e *ComposeError) Error() string {
	return "compose reply: " + e.Reason
}
