package config

import (
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

// Config holds all configuration for the application
type Config struct {
	Port              string
	DatabaseURL       string // Rule configuration store (postgres or mysql)
	Version           string
	LogLevel          string
	GoogleAccessToken string // Injected OAuth access token for the mailbox account
	HandledLabel      string // Mailbox label used as the idempotency marker
	GmailPageSize     int    // Mailbox search page size
	SnippetMax        int    // Cap on the quoted snippet appended to replies
	SlackWebhookURL   string // Slack incoming webhook; empty disables notifications
	MailboxTimeout    int    // Mailbox API timeout in seconds
	NotifyTimeout     int    // Slack webhook timeout in seconds
	APITokens         string // Bearer token to user id map, "token:user,token:user"
}

// Load initializes and returns application configuration
func Load() *Config {
	// Load environment variables from .env file
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		Port:              getEnv("PORT", "8080"),
		DatabaseURL:       os.Getenv("DATABASE_URL"),
		Version:           getEnv("VERSION", "1.0.0"),
		LogLevel:          getEnv("LOG_LEVEL", "info"),
		GoogleAccessToken: os.Getenv("GOOGLE_ACCESS_TOKEN"),
		HandledLabel:      getEnv("HANDLED_LABEL", "auto-replied"),
		GmailPageSize:     getEnvInt("GMAIL_PAGE_SIZE", 100),
		SnippetMax:        getEnvInt("SNIPPET_MAX", 500),
		SlackWebhookURL:   os.Getenv("SLACK_WEBHOOK_URL"),
		MailboxTimeout:    getEnvInt("MAILBOX_TIMEOUT", 30),
		NotifyTimeout:     getEnvInt("NOTIFY_TIMEOUT", 10),
		APITokens:         os.Getenv("API_TOKENS"),
	}
}

// SlackConfigured reports whether the Slack webhook endpoint is set.
func (c *Config) SlackConfigured() bool {
	return c.SlackWebhookURL != ""
}

// getEnv gets an environment variable with a default fallback
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an environment variable as integer with a default fallback
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

// SetupLogger configures zerolog with JSON output and single-line format
func (c *Config) SetupLogger() zerolog.Logger {
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix

	logger := zerolog.New(os.Stdout).With().
		Timestamp().
		Str("service", "replyflow").
		Str("version", c.Version).
		Logger()

	level, err := zerolog.ParseLevel(strings.ToLower(c.LogLevel))
	if err != nil {
		level = zerolog.InfoLevel
	}
	return logger.Level(level)
}
