package middleware

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/Benediks/Sidaya/internal/models"
	"github.com/Benediks/Sidaya/internal/util"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
)

// CurrentUserKey is the gin context key holding the authenticated *models.User.
const CurrentUserKey = "currentUser"

// AuthMiddleware verifies the JWT and puts the current user in the context.
func AuthMiddleware(jwtSecret string, db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		var tokenStr string

		// 1) Header: Authorization: Bearer xxx
		authHeader := c.GetHeader("Authorization")
		if authHeader != "" {
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
				tokenStr = strings.TrimSpace(parts[1])
			}
		}

		// 2) ?token=xxx for downloads that cannot set headers
		if tokenStr == "" {
			tokenStr = c.Query("token")
		}

		// 3) cookie
		if tokenStr == "" {
			if cookie, err := c.Cookie("sidaya_token"); err == nil {
				tokenStr = cookie
			}
		}

		if tokenStr == "" {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthorized")
			c.Abort()
			return
		}

		claims, err := util.ParseToken(jwtSecret, tokenStr)
		if err != nil || claims.ExpiresAt == nil || claims.ExpiresAt.Before(time.Now()) {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Session expired, please log in again")
			c.Abort()
			return
		}

		var user models.User
		if err := db.WithContext(c.Request.Context()).First(&user, claims.UserID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				util.Error(c, http.StatusUnauthorized, util.CodeAuth, "User not found")
			} else {
				util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load user")
			}
			c.Abort()
			return
		}

		c.Set(CurrentUserKey, &user)
		c.Next()
	}
}

// CurrentUser returns the user set by AuthMiddleware.
func CurrentUser(c *gin.Context) (*models.User, bool) {
	v, ok := c.Get(CurrentUserKey)
	if !ok {
		return nil, false
	}
	user, ok := v.(*models.User)
	return user, ok && user != nil
}

// RequireRole lets only users with one of roles through. It must run after
// AuthMiddleware.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		user, ok := CurrentUser(c)
		if !ok {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Unauthorized")
			c.Abort()
			return
		}
		for _, r := range roles {
			if user.Role == r {
				c.Next()
				return
			}
		}
		util.Error(c, http.StatusForbidden, util.CodeForbidden, "Only "+strings.Join(roles, " or ")+" may do this")
		c.Abort()
	}
}
