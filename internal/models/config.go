package models

import "time"

// Field limits enforced when a rule is written. Mirrors the dashboard form.
const (
	MaxMatcherLen      = 200
	MaxReplySubjectLen = 120
	MaxReplyBodyLen    = 2000
	MaxSlackChannelLen = 100
)

// RuleConfig is the per-user auto-reply rule
// @Description Per-user auto-reply rule configuration
type RuleConfig struct {
	UserID                string    `db:"user_id" json:"userId" example:"user-1"`                      // Owner of the rule
	Enabled               bool      `db:"enabled" json:"enabled" example:"true"`                       // Run is a no-op when false
	Matcher               string    `db:"matcher" json:"matcher" example:"from:billing@acme.com"`      // Provider-native search expression; empty means all unread inbox mail
	ReplySubject          string    `db:"reply_subject" json:"replySubject" example:"Re: Your email"`  // Subject used verbatim on replies
	ReplyBody             string    `db:"reply_body" json:"replyBody" example:"Thanks, we are on it."` // Reply template body, plain text
	IncludeOriginalThread bool      `db:"include_original_thread" json:"includeOriginalThread"`        // Append a quoted snippet of the source message
	SendSlackNotification bool      `db:"send_slack_notification" json:"sendSlackNotification"`       // Post a run summary to Slack
	SlackChannel          *string   `db:"slack_channel" json:"slackChannel"`                           // Optional channel hint for the webhook
	CreatedAt             time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt             time.Time `db:"updated_at" json:"updatedAt"`
}

// UpdateRuleRequest is the payload accepted by PUT /api/config
// @Description Rule configuration update payload
type UpdateRuleRequest struct {
	Enabled               bool    `json:"enabled"`
	Matcher               string  `json:"matcher"`
	ReplySubject          string  `json:"replySubject"`
	ReplyBody             string  `json:"replyBody"`
	IncludeOriginalThread bool    `json:"includeOriginalThread"`
	SendSlackNotification bool    `json:"sendSlackNotification"`
	SlackChannel          *string `json:"slackChannel"`
}

// FieldError describes a single invalid field in an update request
type FieldError struct {
	Field   string `json:"field" example:"replySubject"`
	Message string `json:"message" example:"must not be empty"`
}

// Validate checks the update request against the rule field limits.
// Subject and body must be non-empty whenever the rule is enabled.
func (r *UpdateRuleRequest) Validate() []FieldError {
	var errs []FieldError

	if len(r.Matcher) > MaxMatcherLen {
		errs = append(errs, FieldError{Field: "matcher", Message: "must be at most 200 characters"})
	}
	if r.Enabled && r.ReplySubject == "" {
		errs = append(errs, FieldError{Field: "replySubject", Message: "must not be empty"})
	}
	if len(r.ReplySubject) > MaxReplySubjectLen {
		errs = append(errs, FieldError{Field: "replySubject", Message: "must be at most 120 characters"})
	}
	if r.Enabled && r.ReplyBody == "" {
		errs = append(errs, FieldError{Field: "replyBody", Message: "must not be empty"})
	}
	if len(r.ReplyBody) > MaxReplyBodyLen {
		errs = append(errs, FieldError{Field: "replyBody", Message: "must be at most 2000 characters"})
	}
	if r.SlackChannel != nil && len(*r.SlackChannel) > MaxSlackChannelLen {
		errs = append(errs, FieldError{Field: "slackChannel", Message: "must be at most 100 characters"})
	}

	return errs
}
