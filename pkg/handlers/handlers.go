package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/calebreyes/staffing-api-go/pkg/auth"
	"github.com/calebreyes/staffing-api-go/pkg/database"
	"github.com/calebreyes/staffing-api-go/pkg/engine"
)

// Handler contains dependencies for the route handlers
type Handler struct {
	DB     *gorm.DB
	Engine *engine.Engine
	Log    *zap.Logger
}

// AuthMiddleware verifies the JWT token and stores the caller's claims.
func (h *Handler) AuthMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.GetHeader("Authorization")
		if token == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Authorization header required"})
			c.Abort()
			return
		}

		// Strip "Bearer " if present
		if len(token) > 7 && token[:7] == "Bearer " {
			token = token[7:]
		}

		claims, err := auth.VerifyToken(token)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid token"})
			c.Abort()
			return
		}

		c.Set("claims", claims)
		c.Next()
	}
}

// RequireAdmin rejects callers without the admin role. Runs after
// AuthMiddleware.
func (h *Handler) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims := h.claims(c); claims == nil || claims.Role != auth.RoleAdmin {
			c.JSON(http.StatusForbidden, gin.H{"error": "admin role required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// RequireVolunteer rejects callers whose token carries no volunteer scope.
func (h *Handler) RequireVolunteer() gin.HandlerFunc {
	return func(c *gin.Context) {
		if claims := h.claims(c); claims == nil || claims.VolunteerID == 0 {
			c.JSON(http.StatusForbidden, gin.H{"error": "volunteer token required"})
			c.Abort()
			return
		}
		c.Next()
	}
}

// DeviceKeyMiddleware verifies the HMAC device key used by sync clients.
func (h *Handler) DeviceKeyMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.GetHeader("Authorization")
		if key == "" {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Device key required"})
			c.Abort()
			return
		}

		if len(key) > 7 && key[:7] == "Bearer " {
			key = key[7:]
		}

		deviceID, err := auth.VerifyDeviceKey(key)
		if err != nil {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid device key signature"})
			c.Abort()
			return
		}

		c.Set("deviceID", deviceID)
		c.Next()
	}
}

func (h *Handler) claims(c *gin.Context) *auth.Claims {
	raw, exists := c.Get("claims")
	if !exists {
		return nil
	}
	claims, _ := raw.(*auth.Claims)
	return claims
}

// respondError maps an engine error kind to an HTTP status; anything else is
// logged and reported as a 500.
func (h *Handler) respondError(c *gin.Context, err error) {
	if e, ok := err.(*engine.Error); ok {
		status := http.StatusInternalServerError
		switch e.Kind {
		case engine.KindNotFound:
			status = http.StatusNotFound
		case engine.KindConflict:
			status = http.StatusConflict
		case engine.KindValidation:
			status = http.StatusBadRequest
		case engine.KindUnavailable:
			status = http.StatusUnprocessableEntity
		}
		c.JSON(status, gin.H{"error": e})
		return
	}

	h.Log.Error("request failed",
		zap.String("path", c.FullPath()),
		zap.Error(err))
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}

// Login handles admin and volunteer logins.
func (h *Handler) Login(c *gin.Context) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var user database.MasterUser
	if err := h.DB.Where("username = ?", req.Username).First(&user).Error; err != nil {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	if !auth.CheckPasswordHash(req.Password, user.PasswordHash) {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Invalid credentials"})
		return
	}

	var volunteerID uint
	if user.VolunteerID != nil {
		volunteerID = *user.VolunteerID
	}
	token, err := auth.CreateToken(user.Username, user.Role, volunteerID)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Could not create token"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"access_token": token, "token_type": "bearer"})
}
