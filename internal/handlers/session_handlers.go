package handlers

import (
	"net/http"

	"sandwichworks/internal/caching"
	"sandwichworks/internal/common"

	"github.com/labstack/echo/v4"
)

// SessionHandlers manages the server-side session records backing the JWT
// middleware.
type SessionHandlers struct {
	cache caching.CacheService
}

func NewSessionHandlers(cache caching.CacheService) *SessionHandlers {
	return &SessionHandlers{cache: cache}
}

// EndSession handles DELETE /session. Drops the caller's session record so
// later orders are no longer attributed to it; the token itself stays valid
// until it expires.
func (h *SessionHandlers) EndSession(c echo.Context) error {
	ctx := c.Request().Context()

	sessionID, ok := common.GetSessionIDFromContext(ctx)
	if !ok {
		return echo.NewHTTPError(http.StatusUnauthorized, "Missing session")
	}

	if err := h.cache.DeleteSession(ctx, sessionID.String()); err != nil {
		return common.SendServerError(c, "Failed to end session")
	}
	return c.NoContent(http.StatusNoContent)
}
