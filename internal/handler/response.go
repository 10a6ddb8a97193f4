package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "pomodoro/pomod/internal/errors"
	"pomodoro/pomod/internal/service"
)

// writeState answers with the session state wrapped in a "state" envelope.
func writeState(c *gin.Context, state *service.StateView) {
	c.JSON(http.StatusOK, gin.H{"state": state})
}

func writeError(c *gin.Context, apiErr *apperrors.APIError) {
	if apiErr == nil {
		apiErr = apperrors.Internal("")
	}

	body := gin.H{
		"code":    apiErr.Code,
		"message": apiErr.Message,
	}
	if apiErr.Details != nil {
		body["details"] = apiErr.Details
	}
	c.AbortWithStatusJSON(apiErr.Status, gin.H{"error": body})
}
