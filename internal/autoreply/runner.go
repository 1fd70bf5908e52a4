package autoreply

import (
	"context"
	"errors"
	"fmt"

	"replyflow/internal/mailbox"
	"replyflow/internal/models"

	"github.com/rs/zerolog"
)

// DefaultPageSize is the mailbox search page size used when none is set.
const DefaultPageSize = 100

// RuleStore loads the per-user rule configuration. Implemented by
// rulestore.Store; substituted by fakes in tests.
type RuleStore interface {
	GetOrCreate(ctx context.Context, userID string) (*models.RuleConfig, error)
}

// Notifier posts a run summary to the team channel. Enabled reports
// whether a delivery endpoint is configured at all.
type Notifier interface {
	Enabled() bool
	Notify(ctx context.Context, summary *models.RunSummary, channel *string) error
}

// Runner orchestrates one auto-reply run: load config, fetch candidates,
// reply and mark each one sequentially, then notify and summarize.
type Runner struct {
	Store        RuleStore
	Client       mailbox.Client
	Notifier     Notifier
	Logger       zerolog.Logger
	HandledLabel string
	PageSize     int
	SnippetMax   int
}

// NewRunner wires a runner with defaults for page size and snippet cap.
func NewRunner(store RuleStore, client mailbox.Client, notifier Notifier, handledLabel string, logger zerolog.Logger) *Runner {
	return &Runner{
		Store:        store,
		Client:       client,
		Notifier:     notifier,
		Logger:       logger,
		HandledLabel: handledLabel,
		PageSize:     DefaultPageSize,
		SnippetMax:   DefaultSnippetMax,
	}
}

// Run executes one complete auto-reply run for userID.
//
// Candidates are processed strictly sequentially: each reply is sent and
// its idempotency marker applied before the next candidate is examined,
// which both bounds the outbound request rate and keeps marker state
// consistent for later checks. Per-candidate failures land in the
// summary; only a fetch failure (or cancellation) aborts the run with an
// error and no summary.
func (r *Runner) Run(ctx context.Context, userID string) (*models.RunSummary, error) {
	rule, err := r.Store.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("load rule config: %w", err)
	}

	summary := &models.RunSummary{Errors: []models.RunError{}}

	if !rule.Enabled {
		r.Logger.Debug().Str("user_id", userID).Msg("Auto-reply rule disabled, skipping run")
		runsTotal.Inc()
		return summary, nil
	}

	if r.Client == nil {
		return nil, errors.New("mailbox client not configured")
	}

	candidates, err := SelectCandidates(ctx, r.Client, rule, r.HandledLabel, r.pageSize())
	if err != nil {
		return nil, err
	}

	for _, cand := range candidates {
		if ctx.Err() != nil {
			return nil, fmt.Errorf("run canceled: %w", ctx.Err())
		}
		result := r.processCandidate(ctx, rule, cand)
		summary.Record(result)
	}

	r.notify(ctx, rule, summary)

	runsTotal.Inc()
	repliesSentTotal.Add(float64(summary.Processed))
	r.Logger.Info().
		Str("user_id", userID).
		Int("candidates", len(candidates)).
		Int("processed", summary.Processed).
		Int("skipped", summary.Skipped).
		Int("errors", len(summary.Errors)).
		Msg("Auto-reply run complete")

	return summary, nil
}

// processCandidate walks one candidate through the idempotency check,
// compose, send and mark-handled steps.
func (r *Runner) processCandidate(ctx context.Context, rule *models.RuleConfig, cand mailbox.CandidateMessage) models.RunResult {
	id := string(cand.ID)

	// Defensive: the rule is read-only for the run's duration, but a
	// disabled rule must never produce a reply.
	if !rule.Enabled {
		candidatesSkippedTotal.WithLabelValues(models.SkipRuleDisabledMidRun).Inc()
		return models.RunResult{MessageID: id, Outcome: models.OutcomeSkipped, Reason: models.SkipRuleDisabledMidRun}
	}

	handled, err := r.Client.IsHandled(ctx, cand.ID)
	if err != nil {
		// Without a readable marker a reply could duplicate; fail the
		// candidate rather than risk it.
		sendFailuresTotal.Inc()
		return models.RunResult{MessageID: id, Outcome: models.OutcomeFailed, Reason: fmt.Sprintf("idempotency check: %v", err)}
	}
	if handled {
		r.Logger.Debug().Str("message_id", id).Msg("Candidate already handled, skipping")
		candidatesSkippedTotal.WithLabelValues(models.SkipAlreadyHandled).Inc()
		return models.RunResult{MessageID: id, Outcome: models.OutcomeSkipped, Reason: models.SkipAlreadyHandled}
	}

	reply, err := Compose(rule, cand, r.snippetMax())
	if err != nil {
		var ce *ComposeError
		if errors.As(err, &ce) {
			r.Logger.Debug().Str("message_id", id).Str("reason", ce.Reason).Msg("Candidate not composable, skipping")
			candidatesSkippedTotal.WithLabelValues(ce.Reason).Inc()
			return models.RunResult{MessageID: id, Outcome: models.OutcomeSkipped, Reason: ce.Reason}
		}
		sendFailuresTotal.Inc()
		return models.RunResult{MessageID: id, Outcome: models.OutcomeFailed, Reason: err.Error()}
	}

	if _, err := r.Client.Send(ctx, reply); err != nil {
		r.Logger.Error().Err(err).Str("message_id", id).Msg("Failed to send reply")
		sendFailuresTotal.Inc()
		return models.RunResult{MessageID: id, Outcome: models.OutcomeFailed, Reason: err.Error()}
	}

	if err := r.Client.MarkHandled(ctx, cand.ID); err != nil {
		// The reply is already out; the candidate stays Replied. A
		// future run may re-process this message because the marker
		// write failed.
		r.Logger.Warn().Err(err).Str("message_id", id).
			Msg("Reply sent but marking handled failed; message may be re-processed")
	}

	return models.RunResult{MessageID: id, Outcome: models.OutcomeReplied}
}

// notify posts the summary to Slack at most once per run, after every
// candidate has been processed. Delivery failure is logged and otherwise
// ignored; it never alters the processed/skipped/error counts.
func (r *Runner) notify(ctx context.Context, rule *models.RuleConfig, summary *models.RunSummary) {
	if !rule.SendSlackNotification || r.Notifier == nil || !r.Notifier.Enabled() {
		return
	}
	if err := r.Notifier.Notify(ctx, summary, rule.SlackChannel); err != nil {
		r.Logger.Warn().Err(err).Msg("Slack notification failed")
		return
	}
	summary.SlackNotifications = 1
	notificationsSentTotal.Inc()
}

func (r *Runner) pageSize() int {
	if r.PageSize > 0 {
		return r.PageSize
	}
	return DefaultPageSize
}

func (r *Runner) snippetMax() int {
	if r.SnippetMax > 0 {
		return r.SnippetMax
	}
	return DefaultSnippetMax
}
