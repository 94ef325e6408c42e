package handler

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/Benediks/Sidaya/internal/audit"
	"github.com/Benediks/Sidaya/internal/inventory"
	"github.com/Benediks/Sidaya/internal/middleware"
	"github.com/Benediks/Sidaya/internal/models"
	"github.com/Benediks/Sidaya/internal/promo"
	"github.com/Benediks/Sidaya/internal/util"

	"github.com/gin-gonic/gin"
)

// currentUser fetches the authenticated user or writes a 401.
func currentUser(c *gin.Context) (*models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthorized")
		return nil, false
	}
	return user, true
}

// actorOf describes the caller for the activity log.
func actorOf(c *gin.Context) audit.Actor {
	actor := audit.Actor{
		IP:        c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	}
	if user, ok := middleware.CurrentUser(c); ok {
		id := user.ID
		actor.UserID = &id
	}
	return actor
}

// writeServiceError maps service errors onto the response envelope.
// Unexpected errors are attached to the context for the request log.
func writeServiceError(c *gin.Context, err error, what string) {
	var verr *util.ValidationError
	switch {
	case errors.As(err, &verr):
		util.Invalid(c, "Validation failed", verr.Fields)
	case errors.Is(err, inventory.ErrNotFound), errors.Is(err, promo.ErrNotFound):
		util.Error(c, http.StatusNotFound, util.CodeNotFound, fmt.Sprintf("%s not found", what))
	case errors.Is(err, inventory.ErrEmptyBatch):
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "File is empty or invalid format")
	default:
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Internal server error")
	}
}

func sendFile(c *gin.Context, fileName, contentType string, body []byte) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", fileName))
	c.Data(http.StatusOK, contentType, body)
}
