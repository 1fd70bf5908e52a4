package models

// Outcome of processing a single candidate message.
const (
	OutcomeReplied = "replied"
	OutcomeSkipped = "skipped"
	OutcomeFailed  = "failed"
)

// Reasons attached to skipped candidates.
const (
	SkipAlreadyHandled     = "already-handled"
	SkipNoSenderAddress    = "no-sender-address"
	SkipRuleDisabledMidRun = "rule-disabled-mid-run"
)

// RunResult is the outcome of processing one candidate message within a run.
type RunResult struct {
	MessageID string `json:"messageId"`
	Outcome   string `json:"outcome"`
	Reason    string `json:"reason,omitempty"` // skip reason or send failure description
}

// RunError identifies a candidate whose reply could not be sent.
type RunError struct {
	MessageID string `json:"messageId" example:"18f2a7b9c0d1"`
	Reason    string `json:"reason" example:"gmail send: quota exceeded"`
}

// RunSummary aggregates one complete auto-reply run
// @Description Aggregate outcome of one auto-reply run
type RunSummary struct {
	Processed          int        `json:"processed" example:"2"`          // Count of replies sent
	Skipped            int        `json:"skipped" example:"1"`            // Count of candidates skipped
	SlackNotifications int        `json:"slackNotifications" example:"1"` // 0 or 1
	Errors             []RunError `json:"errors"`                         // Per-candidate send failures, in processing order
}

// Record folds a single candidate result into the summary.
func (s *RunSummary) Record(r RunResult) {
	switch r.Outcome {
	case OutcomeReplied:
		s.Processed++
	case OutcomeSkipped:
		s.Skipped++
	case OutcomeFailed:
		s.Errors = append(s.Errors, RunError{MessageID: r.MessageID, Reason: r.Reason})
	}
}
