package main

import (
	"context"
	"time"

	"replyflow/internal/autoreply"
	"replyflow/internal/config"
	"replyflow/internal/database"
	"replyflow/internal/mailbox"
	"replyflow/internal/notify"
	"replyflow/internal/rulestore"
	"replyflow/internal/server"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Setup logger
	logger := cfg.SetupLogger()

	// Initialize rule store
	db, err := database.New(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("Database connection failed")
	}
	store := rulestore.New(db)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := store.EnsureSchema(ctx); err != nil {
		logger.Fatal().Err(err).Msg("Rule store schema setup failed")
	}

	// Mailbox client; the OAuth token is injected, its refresh lifecycle
	// lives outside this service
	var client mailbox.Client
	if cfg.GoogleAccessToken != "" {
		svc, err := mailbox.NewGmailService(ctx, cfg.GoogleAccessToken)
		if err != nil {
			logger.Fatal().Err(err).Msg("Gmail client setup failed")
		}
		client = mailbox.NewGmailClient(svc, cfg.HandledLabel, time.Duration(cfg.MailboxTimeout)*time.Second)
	} else {
		logger.Warn().Msg("GOOGLE_ACCESS_TOKEN not set, auto-reply runs will fail until configured")
	}

	// Slack dispatcher; disabled when no webhook is configured
	slack := notify.NewSlack(cfg.SlackWebhookURL, time.Duration(cfg.NotifyTimeout)*time.Second)
	if !slack.Enabled() {
		logger.Info().Msg("Slack webhook not configured, notifications disabled")
	}

	runner := autoreply.NewRunner(store, client, slack, cfg.HandledLabel, logger)
	runner.PageSize = cfg.GmailPageSize
	runner.SnippetMax = cfg.SnippetMax

	// Create and initialize server
	srv := server.New(cfg, db, store, runner, logger)
	srv.Initialize()

	// Start server
	if err := srv.Start(); err != nil {
		logger.Fatal().Err(err).Msg("Server failed to start")
	}
}
