package auth

import (
	"net/http"
	"strings"

	"replyflow/internal/models"

	"github.com/labstack/echo/v4"
)

// ContextUserKey is the echo context key holding the authenticated user id.
const ContextUserKey = "user_id"

// Manager resolves static bearer API tokens to user ids. Token issuance
// and session handling live outside this service; the map is injected
// at startup.
type Manager struct {
	tokens map[string]string // token -> user id
}

// NewManager parses a "token:user,token:user" specification, as supplied
// by the API_TOKENS environment variable. Malformed pairs are skipped.
func NewManager(spec string) *Manager {
	tokens := make(map[string]string)
	for _, part := range strings.Split(spec, ",") {
		part = strings.TrimSpace(part)
		if part == "" {
			continue
		}
		kv := strings.SplitN(part, ":", 2)
		if len(kv) != 2 || kv[0] == "" || kv[1] == "" {
			continue
		}
		tokens[kv[0]] = kv[1]
	}
	return &Manager{tokens: tokens}
}

// Resolve returns the user id bound to a token.
func (m *Manager) Resolve(token string) (string, bool) {
	userID, ok := m.tokens[token]
	return userID, ok
}

// Middleware authenticates requests with a bearer token and stores the
// resolved user id in the echo context.
func Middleware(m *Manager) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Get token from Authorization header or query parameter
			token := c.Request().Header.Get("Authorization")
			if token != "" {
				if len(token) > 7 && strings.EqualFold(token[:7], "Bearer ") {
					token = token[7:]
				}
			} else {
				token = c.QueryParam("token")
			}

			userID, ok := m.Resolve(token)
			if token == "" || !ok {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{Error: "Unauthorized"})
			}

			c.Set(ContextUserKey, userID)
			return next(c)
		}
	}
}
