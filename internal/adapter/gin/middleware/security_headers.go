package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
)

const (
	defaultCSP = "default-src 'none'; frame-ancestors 'none'"
	// Swagger UI needs its own assets and an inline bootstrap script.
	docsCSP = "default-src 'self'; base-uri 'self'; frame-ancestors 'none'; object-src 'none'; img-src 'self' data: https:; style-src 'self' 'unsafe-inline'; script-src 'self' 'unsafe-inline'"
)

// SecurityHeaders sets the usual hardening headers on every response.
// Paths under docsPrefix get a CSP that lets the Swagger UI render.
func SecurityHeaders(docsPrefix string) gin.HandlerFunc {
	return func(c *gin.Context) {
		h := c.Writer.Header()
		h.Set("X-Content-Type-Options", "nosniff")
		h.Set("X-Frame-Options", "SAMEORIGIN")
		h.Set("Referrer-Policy", "no-referrer")
		h.Set("X-XSS-Protection", "0")
		h.Set("X-DNS-Prefetch-Control", "off")
		h.Set("X-Download-Options", "noopen")
		h.Set("X-Permitted-Cross-Domain-Policies", "none")
		h.Set("Cross-Origin-Opener-Policy", "same-origin")
		h.Set("Cross-Origin-Resource-Policy", "same-origin")
		h.Set("Origin-Agent-Cluster", "?1")
		h.Set("Strict-Transport-Security", "max-age=15552000; includeSubDomains")

		if docsPrefix != "" && strings.HasPrefix(c.Request.URL.Path, docsPrefix) {
			h.Set("Content-Security-Policy", docsCSP)
		} else {
			h.Set("Content-Security-Policy", defaultCSP)
		}
		c.Next()
	}
}
