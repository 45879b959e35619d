package api

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/archadvisor/archadvisor/pkg/session"
)

func errorBody(code, message string) gin.H {
	return gin.H{"error": code, "message": message}
}

// respondStoreError maps session store failures onto 404/500 responses.
func respondStoreError(c *gin.Context, sessionID string, err error) {
	if errors.Is(err, session.ErrNotFound) {
		c.JSON(http.StatusNotFound, errorBody("not_found", fmt.Sprintf("Session %s not found", sessionID)))
		return
	}
	slog.Error("Session store error", "session_id", sessionID, "error", err)
	c.JSON(http.StatusInternalServerError, errorBody("internal_server_error",
		"An unexpected error occurred. Please try again."))
}

func respondConflict(c *gin.Context, message string) {
	c.JSON(http.StatusConflict, errorBody("conflict", message))
}

func respondValidationError(c *gin.Context, err error) {
	c.JSON(http.StatusUnprocessableEntity, errorBody("validation_error", err.Error()))
}
