// Package middleware provides HTTP middleware functions.
package middleware

import (
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
)

// CORSMiddleware returns a CORS middleware that allows requests from the
// configured origins, localhost and CloudFront domains.
func CORSMiddleware(allowedOrigins ...string) echo.MiddlewareFunc {
	allow := OriginChecker(allowedOrigins...)

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			origin := c.Request().Header.Get("Origin")

			// Check if origin is allowed
			if allow(origin) {
				h := c.Response().Header()
				h.Set("Access-Control-Allow-Origin", origin)
				h.Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
				h.Set("Access-Control-Allow-Headers", "Content-Type")
				h.Set("Access-Control-Allow-Credentials", "true")
				h.Add("Vary", "Origin")
			}

			// Handle preflight requests
			if c.Request().Method == http.MethodOptions {
				return c.NoContent(http.StatusNoContent)
			}

			return next(c)
		}
	}
}

// OriginChecker returns a function reporting whether an origin may call the
// API. It is shared by CORS and the WebSocket upgrader.
func OriginChecker(allowedOrigins ...string) func(origin string) bool {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, o := range allowedOrigins {
		if o = strings.TrimSuffix(strings.TrimSpace(o), "/"); o != "" {
			allowed[o] = true
		}
	}

	return func(origin string) bool {
		return allowed[origin] || isAllowedOrigin(origin)
	}
}

// isAllowedOrigin checks the origins that are always allowed.
func isAllowedOrigin(origin string) bool {
	if origin == "" {
		return false
	}

	// Allow localhost for development
	if strings.HasPrefix(origin, "http://localhost:") {
		return true
	}

	// Allow CloudFront domains
	if strings.HasPrefix(origin, "https://") && strings.HasSuffix(origin, ".cloudfront.net") {
		return true
	}

	return false
}
