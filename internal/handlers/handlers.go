// Package handlers wires the HTTP surface: the public comparison and
// account endpoints plus the admin content API. Every JSON response uses
// the `{"status": "success"|"error", ...}` envelope.
package handlers

import (
	"github.com/gin-gonic/gin"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// respondError writes the uniform error envelope. Messages are always
// server-owned strings; upstream response text never reaches clients.
func respondError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{
		"status":  statusError,
		"message": message,
	})
}
