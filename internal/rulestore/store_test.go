package rulestore

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"replyflow/internal/models"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return New(sqlx.NewDb(db, "sqlmock")), mock
}

func ruleRows() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"user_id", "enabled", "matcher", "reply_subject", "reply_body",
		"include_original_thread", "send_slack_notification", "slack_channel",
		"created_at", "updated_at",
	})
}

func TestGetOrCreate_ReturnsExistingRule(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT user_id, enabled").
		WithArgs("user-1").
		WillReturnRows(ruleRows().AddRow(
			"user-1", true, "from:billing@acme.com", "Re: Inquiry", "On it.",
			true, false, nil, now, now,
		))

	cfg, err := store.GetOrCreate(context.Background(), "user-1")
	require.NoError(t, err)

	assert.Equal(t, "user-1", cfg.UserID)
	assert.True(t, cfg.Enabled)
	assert.Equal(t, "from:billing@acme.com", cfg.Matcher)
	assert.Nil(t, cfg.SlackChannel)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrCreate_CreatesDisabledDefault(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT user_id, enabled").
		WithArgs("user-2").
		WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO auto_reply_configs").
		WithArgs("user-2", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT user_id, enabled").
		WithArgs("user-2").
		WillReturnRows(ruleRows().AddRow(
			"user-2", false, "", "", "", false, false, nil, now, now,
		))

	cfg, err := store.GetOrCreate(context.Background(), "user-2")
	require.NoError(t, err)

	assert.False(t, cfg.Enabled)
	assert.Empty(t, cfg.ReplySubject)
	assert.Empty(t, cfg.ReplyBody)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrCreate_ConcurrentCreateFallsBackToRead(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()

	mock.ExpectQuery("SELECT user_id, enabled").
		WithArgs("user-3").
		WillReturnError(sql.ErrNoRows)
	// A concurrent first call already inserted the row.
	mock.ExpectExec("INSERT INTO auto_reply_configs").
		WithArgs("user-3", sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnError(errors.New("duplicate key value violates unique constraint"))
	mock.ExpectQuery("SELECT user_id, enabled").
		WithArgs("user-3").
		WillReturnRows(ruleRows().AddRow(
			"user-3", false, "", "", "", false, false, nil, now, now,
		))

	cfg, err := store.GetOrCreate(context.Background(), "user-3")
	require.NoError(t, err)
	assert.Equal(t, "user-3", cfg.UserID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetOrCreate_QueryErrorPropagates(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("SELECT user_id, enabled").
		WithArgs("user-4").
		WillReturnError(sql.ErrConnDone)

	_, err := store.GetOrCreate(context.Background(), "user-4")
	require.Error(t, err)
	assert.ErrorIs(t, err, sql.ErrConnDone)
}

func TestUpdate_RejectsInvalidRequestBeforePersisting(t *testing.T) {
	store, mock := newMockStore(t)

	req := &models.UpdateRuleRequest{
		Enabled:      true,
		ReplySubject: "",
		ReplyBody:    "body",
	}

	_, err := store.Update(context.Background(), "user-1", req)
	require.Error(t, err)

	var ve *ValidationError
	require.True(t, errors.As(err, &ve))
	require.Len(t, ve.Fields, 1)
	assert.Equal(t, "replySubject", ve.Fields[0].Field)
	assert.NoError(t, mock.ExpectationsWereMet(), "validation failures never reach the database")
}

func TestUpdate_PersistsAndReturnsStoredRow(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now().UTC()
	channel := "#support"

	// Update ensures the row exists before writing.
	mock.ExpectQuery("SELECT user_id, enabled").
		WithArgs("user-1").
		WillReturnRows(ruleRows().AddRow(
			"user-1", false, "", "", "", false, false, nil, now, now,
		))
	mock.ExpectExec("UPDATE auto_reply_configs").
		WithArgs(true, "from:ops@acme.com", "Re: Ops", "Acknowledged.",
			true, true, "#support", sqlmock.AnyArg(), "user-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery("SELECT user_id, enabled").
		WithArgs("user-1").
		WillReturnRows(ruleRows().AddRow(
			"user-1", true, "from:ops@acme.com", "Re: Ops", "Acknowledged.",
			true, true, "#support", now, now,
		))

	req := &models.UpdateRuleRequest{
		Enabled:               true,
		Matcher:               "from:ops@acme.com",
		ReplySubject:          "Re: Ops",
		ReplyBody:             "Acknowledged.",
		IncludeOriginalThread: true,
		SendSlackNotification: true,
		SlackChannel:          &channel,
	}

	cfg, err := store.Update(context.Background(), "user-1", req)
	require.NoError(t, err)

	assert.True(t, cfg.Enabled)
	assert.Equal(t, "Re: Ops", cfg.ReplySubject)
	require.NotNil(t, cfg.SlackChannel)
	assert.Equal(t, "#support", *cfg.SlackChannel)
	assert.NoError(t, mock.ExpectationsWereMet())
}
