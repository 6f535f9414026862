package ui

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// multipartOverhead is allowed on top of the file size for form boundaries and headers
const multipartOverhead = 1 << 20

// limitBody caps the request body at the upload limit
func (s *Server) limitBody() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.maxUploadBytes > 0 {
			c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, s.maxUploadBytes+multipartOverhead)
		}
		c.Next()
	}
}

// requireSearchConsole rejects requests when no OAuth client is configured
func (s *Server) requireSearchConsole() gin.HandlerFunc {
	return func(c *gin.Context) {
		if s.searchConsole == nil || !s.searchConsole.Configured() {
			c.AbortWithStatusJSON(http.StatusServiceUnavailable, gin.H{
				"error": "Google Search Console is not configured",
				"code":  "NOT_CONFIGURED",
				"help":  "/help/google-client",
			})
			return
		}
		c.Next()
	}
}
