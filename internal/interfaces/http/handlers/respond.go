package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "aegis/internal/shared/errors"
)

// respondError renders an AppError with its mapped status code. Anything else
// becomes a plain 500 so internal details never leak to the client.
func respondError(c *gin.Context, err error) {
	if appErr, ok := apperrors.AsAppError(err); ok {
		c.JSON(appErr.Code, gin.H{"error": appErr.Message, "type": appErr.Type})
		return
	}
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
