package handler

import (
	"github.com/Benediks/Sidaya/internal/models"
	"github.com/Benediks/Sidaya/internal/util"

	"github.com/gin-gonic/gin"
)

func userView(u *models.User) gin.H {
	return gin.H{
		"id":           u.ID,
		"username":     u.Username,
		"display_name": u.DisplayName,
		"role":         u.Role,
		"created_at":   u.CreatedAt,
	}
}

// GetMe returns the current user (AuthMiddleware required).
func GetMe(c *gin.Context) {
	user, ok := currentUser(c)
	if !ok {
		return
	}
	util.Success(c, util.Response{"user": userView(user)})
}
