package handler

import (
	"errors"
	"net/http"
	"regexp"
	"strings"
	"time"

	"github.com/Benediks/Sidaya/internal/models"
	"github.com/Benediks/Sidaya/internal/util"

	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	bcryptCost       = 12
	maxFailedLogins  = 5
	loginLockoutTime = 10 * time.Minute
)

var usernameRe = regexp.MustCompile(`^[A-Za-z0-9_]{3,20}$`)

// AuthHandler serves registration and login.
type AuthHandler struct {
	DB        *gorm.DB
	JWTSecret string
	Issuer    string
	TokenTTL  time.Duration
}

func NewAuthHandler(db *gorm.DB, jwtSecret, issuer string, ttlHours int) *AuthHandler {
	if ttlHours <= 0 {
		ttlHours = 24
	}
	return &AuthHandler{
		DB:        db,
		JWTSecret: jwtSecret,
		Issuer:    issuer,
		TokenTTL:  time.Duration(ttlHours) * time.Hour,
	}
}

// ---------- register ----------

type registerReq struct {
	Username        string `json:"username" binding:"required"`
	Password        string `json:"password" binding:"required"`
	ConfirmPassword string `json:"confirm_password" binding:"required"`
	DisplayName     string `json:"display_name" binding:"max=64"`
}

// Register creates an account. The first account becomes the owner; every
// later one is staff.
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	if !usernameRe.MatchString(req.Username) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Username must be 3-20 letters, digits or underscores")
		return
	}
	if !isStrongPassword(req.Password) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Password must be 8-32 characters with upper case, lower case and digits")
		return
	}
	if req.Password != req.ConfirmPassword {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Passwords do not match")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcryptCost)
	if err != nil {
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to hash password")
		return
	}

	user := models.User{
		Username:     req.Username,
		PasswordHash: string(hash),
		DisplayName:  req.DisplayName,
	}
	errTaken := errors.New("username taken")
	err = h.DB.WithContext(c.Request.Context()).Transaction(func(tx *gorm.DB) error {
		// usernames are unique ignoring case
		var taken int64
		if err := tx.Model(&models.User{}).Where("LOWER(username) = LOWER(?)", req.Username).Count(&taken).Error; err != nil {
			return err
		}
		if taken > 0 {
			return errTaken
		}

		var users int64
		if err := tx.Model(&models.User{}).Count(&users).Error; err != nil {
			return err
		}
		user.Role = models.RoleStaff
		if users == 0 {
			user.Role = models.RoleOwner
		}
		return tx.Create(&user).Error
	})
	if errors.Is(err, errTaken) {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Username already exists")
		return
	}
	if err != nil {
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to create user")
		return
	}

	util.Created(c, util.Response{
		"message": "Registered",
		"user":    userView(&user),
	})
}

// isStrongPassword: 8-32 characters with upper, lower and a digit.
func isStrongPassword(pwd string) bool {
	if len(pwd) < 8 || len(pwd) > 32 {
		return false
	}
	var hasUpper, hasLower, hasDigit bool
	for _, ch := range pwd {
		switch {
		case ch >= 'A' && ch <= 'Z':
			hasUpper = true
		case ch >= 'a' && ch <= 'z':
			hasLower = true
		case ch >= '0' && ch <= '9':
			hasDigit = true
		}
	}
	return hasUpper && hasLower && hasDigit
}

// ---------- login ----------

type loginReq struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req loginReq
	if err := c.ShouldBindJSON(&req); err != nil {
		util.Error(c, http.StatusBadRequest, util.CodeInvalidParam, "Invalid request body")
		return
	}

	req.Username = strings.TrimSpace(req.Username)
	db := h.DB.WithContext(c.Request.Context())

	var user models.User
	if err := db.Where("LOWER(username) = LOWER(?)", req.Username).First(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Wrong username or password")
		} else {
			_ = c.Error(err)
			util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to load user")
		}
		return
	}

	now := time.Now()
	if user.LockedUntil != nil && now.Before(*user.LockedUntil) {
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Account locked, try again later")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		// lock for a while after too many misses
		user.FailedLoginAttempts++
		if user.FailedLoginAttempts >= maxFailedLogins {
			lockUntil := now.Add(loginLockoutTime)
			user.LockedUntil = &lockUntil
			user.FailedLoginAttempts = 0
		}
		_ = db.Save(&user).Error
		util.Error(c, http.StatusUnauthorized, util.CodeAuth, "Wrong username or password")
		return
	}

	user.FailedLoginAttempts = 0
	user.LockedUntil = nil
	user.LastLoginIP = c.ClientIP()
	user.LastLoginAt = &now
	_ = db.Save(&user).Error

	token, err := util.GenerateToken(h.JWTSecret, h.Issuer, user.ID, user.Role, h.TokenTTL)
	if err != nil {
		_ = c.Error(err)
		util.Error(c, http.StatusInternalServerError, util.CodeServerErr, "Failed to issue token")
		return
	}

	util.Success(c, util.Response{
		"token": token,
		"user":  userView(&user),
	})
}
