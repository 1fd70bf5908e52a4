package models

import "time"

// HealthResponse represents a basic health check response
// @Description Health check response
type HealthResponse struct {
	Status    string    `json:"status" example:"healthy"`                 // Health status
	Timestamp time.Time `json:"timestamp" example:"2023-01-01T00:00:00Z"` // Timestamp of the check
	Version   string    `json:"version" example:"1.0.0"`                  // Application version
}

// DBHealthResponse represents a database health check response
// @Description Database health check response
type DBHealthResponse struct {
	Status    string        `json:"status" example:"healthy"`                   // Health status
	Timestamp time.Time     `json:"timestamp" example:"2023-01-01T00:00:00Z"`   // Timestamp of the check
	Connected bool          `json:"connected" example:"true"`                   // Database connection status
	Latency   time.Duration `json:"latency" swaggertype:"string" example:"1ms"` // Database ping latency
	Error     string        `json:"error,omitempty" example:""`                 // Error message if any
}

// ErrorResponse is the generic error envelope returned by the API
// @Description Error envelope
type ErrorResponse struct {
	Error string `json:"error" example:"Unauthorized"`
}

// ValidationErrorResponse is returned when a config update fails validation
// @Description Validation failure envelope
type ValidationErrorResponse struct {
	Error  string       `json:"error" example:"validation failed"`
	Fields []FieldError `json:"fields"`
}

// ConfigResponse wraps the rule configuration for the dashboard, including
// whether the Slack webhook is configured server-side.
// @Description Rule configuration with Slack availability hint
type ConfigResponse struct {
	RuleConfig
	SlackConfigured bool `json:"slackConfigured" example:"true"`
}
