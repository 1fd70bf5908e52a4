package rulestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"replyflow/internal/models"

	"github.com/jmoiron/sqlx"
)

// ValidationError is returned by Update when the request violates the
// rule field constraints. The write is rejected before persisting.
type ValidationError struct {
	Fields []models.FieldError
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid rule configuration (%d fields)", len(e.Fields))
}

// Store persists per-user auto-reply rules. It is the only writer of
// RuleConfig records; rules are created once per user and never deleted.
type Store struct {
	db *sqlx.DB
}

// New creates a rule store over an existing database connection.
func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

const schema = `
CREATE TABLE IF NOT EXISTS auto_reply_configs (
	user_id                 VARCHAR(64)   NOT NULL,
	enabled                 BOOLEAN       NOT NULL,
	matcher                 VARCHAR(200)  NOT NULL,
	reply_subject           VARCHAR(120)  NOT NULL,
	reply_body              VARCHAR(2000) NOT NULL,
	include_original_thread BOOLEAN       NOT NULL,
	send_slack_notification BOOLEAN       NOT NULL,
	slack_channel           VARCHAR(100)  NULL,
	created_at              TIMESTAMP     NOT NULL,
	updated_at              TIMESTAMP     NOT NULL,
	PRIMARY KEY (user_id)
)`

// EnsureSchema creates the backing table when it does not exist yet.
func (s *Store) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("ensure auto_reply_configs schema: %w", err)
	}
	return nil
}

const selectByUser = `
SELECT user_id, enabled, matcher, reply_subject, reply_body,
       include_original_thread, send_slack_notification, slack_channel,
       created_at, updated_at
FROM auto_reply_configs WHERE user_id = ?`

const insertDefault = `
INSERT INTO auto_reply_configs
	(user_id, enabled, matcher, reply_subject, reply_body,
	 include_original_thread, send_slack_notification, slack_channel,
	 created_at, updated_at)
VALUES (?, FALSE, '', '', '', FALSE, FALSE, NULL, ?, ?)`

const updateByUser = `
UPDATE auto_reply_configs
SET enabled = ?, matcher = ?, reply_subject = ?, reply_body = ?,
    include_original_thread = ?, send_slack_notification = ?,
    slack_channel = ?, updated_at = ?
WHERE user_id = ?`

// GetOrCreate returns the user's rule, creating the disabled default
// record on first access. Concurrent first calls for the same user race
// on the primary key; the loser of that race falls through to re-read
// the winner's row, so no duplicates are ever created.
func (s *Store) GetOrCreate(ctx context.Context, userID string) (*models.RuleConfig, error) {
	cfg, err := s.get(ctx, userID)
	if err == nil {
		return cfg, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("load rule for %s: %w", userID, err)
	}

	now := time.Now().UTC()
	if _, err := s.db.ExecContext(ctx, s.db.Rebind(insertDefault), userID, now, now); err != nil {
		// Likely a unique violation from a concurrent create; the
		// re-read below settles it either way.
		if cfg, gerr := s.get(ctx, userID); gerr == nil {
			return cfg, nil
		}
		return nil, fmt.Errorf("create default rule for %s: %w", userID, err)
	}

	cfg, err = s.get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reload rule for %s: %w", userID, err)
	}
	return cfg, nil
}

// Update validates and persists a full rule update, returning the stored
// row. The record is created first when the user has none yet.
func (s *Store) Update(ctx context.Context, userID string, req *models.UpdateRuleRequest) (*models.RuleConfig, error) {
	if fields := req.Validate(); len(fields) > 0 {
		return nil, &ValidationError{Fields: fields}
	}

	if _, err := s.GetOrCreate(ctx, userID); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	_, err := s.db.ExecContext(ctx, s.db.Rebind(updateByUser),
		req.Enabled, req.Matcher, req.ReplySubject, req.ReplyBody,
		req.IncludeOriginalThread, req.SendSlackNotification,
		req.SlackChannel, now, userID)
	if err != nil {
		return nil, fmt.Errorf("update rule for %s: %w", userID, err)
	}

	cfg, err := s.get(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("reload rule for %s: %w", userID, err)
	}
	return cfg, nil
}

func (s *Store) get(ctx context.Context, userID string) (*models.RuleConfig, error) {
	var cfg models.RuleConfig
	if err := s.db.GetContext(ctx, &cfg, s.db.Rebind(selectByUser), userID); err != nil {
		return nil, err
	}
	return &cfg, nil
}
