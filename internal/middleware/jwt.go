package middleware

import (
	"context"
	"log"
	"net/http"
	"time"

	"sandwichworks/internal/caching"
	"sandwichworks/internal/common"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

const sessionTTL = 24 * time.Hour

// SessionMiddleware copies the session ID out of an already-validated
// JWT into the request context and refreshes the server-side session
// record in redis. Runs after echojwt, which stores the parsed token
// under the "user" key.
func SessionMiddleware(cacheSvc caching.CacheService) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := c.Get("user").(*jwt.Token)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing token")
			}

			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid claims")
			}

			sub, ok := claims["sub"].(string)
			if !ok || sub == "" {
				return echo.NewHTTPError(http.StatusUnauthorized, "Missing session in token")
			}

			sessionID, err := uuid.Parse(sub)
			if err != nil {
				return echo.NewHTTPError(http.StatusUnauthorized, "Invalid session format")
			}

			ctx := c.Request().Context()

			// The customer display name travels as an optional claim; the
			// session record lets order creation attribute orders to it
			// without re-reading the token.
			customerRef, _ := claims["name"].(string)
			if err := cacheSvc.SetSession(ctx, sessionID.String(), customerRef, sessionTTL); err != nil {
				log.Printf("Failed to record session %s: %v", sessionID.String(), err)
			}

			ctx = context.WithValue(ctx, common.SessionIDKey, sessionID)
			c.SetRequest(c.Request().WithContext(ctx))

			return next(c)
		}
	}
}
