package middleware

import (
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
	apperrors "github.com/jungianjournals/journals-backend/errors"
	"github.com/jungianjournals/journals-backend/internal/auth"
	"github.com/jungianjournals/journals-backend/logger"
)

// AuthMiddleware requires a valid Supabase access token and stores the
// member's identity on the context.
func AuthMiddleware(validator Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			_ = c.Error(apperrors.Unauthorized("missing_token", "Authorization required"))
			c.Abort()
			return
		}

		identity, err := validator.Validate(c.Request.Context(), token)
		if err != nil {
			logger.GetLogger().Warnw("Invalid access token",
				"error", err,
				"path", c.Request.URL.Path,
				"client_ip", c.ClientIP())
			_ = c.Error(tokenError(err))
			c.Abort()
			return
		}

		setIdentity(c, identity)
		c.Next()
	}
}

// OptionalAuthMiddleware resolves the viewer when a valid token is present
// and lets anonymous requests through. An invalid token is treated as
// anonymous except when it has expired, so clients know to refresh.
func OptionalAuthMiddleware(validator Validator) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		identity, err := validator.Validate(c.Request.Context(), token)
		if err != nil {
			if errors.Is(err, ErrTokenExpired) {
				_ = c.Error(tokenError(err))
				c.Abort()
				return
			}
			logger.GetLogger().Debugw("Ignoring invalid optional token", "error", err)
			c.Next()
			return
		}

		setIdentity(c, identity)
		c.Next()
	}
}

// AdminAuthMiddleware requires an admin session token. Browsers cannot set
// headers on websocket upgrades, so those may pass it as ?token=.
func AdminAuthMiddleware(secret string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := bearerToken(c)
		if token == "" && isWebSocketUpgrade(c) {
			token = c.Query("token")
		}
		if token == "" {
			_ = c.Error(apperrors.Unauthorized("missing_token", "Admin authorization required"))
			c.Abort()
			return
		}

		claims, err := auth.ValidateAdminToken(token, secret)
		if err != nil {
			logger.GetLogger().Warnw("Rejected admin token",
				"error", err,
				"path", c.Request.URL.Path,
				"client_ip", c.ClientIP())
			_ = c.Error(err)
			c.Abort()
			return
		}

		c.Set(string(AdminIDKey), claims.Subject)
		c.Next()
	}
}

// GetUserID returns the authenticated member id, or "" for anonymous requests.
func GetUserID(c *gin.Context) string {
	return c.GetString(string(UserIDKey))
}

// GetIdentity returns the resolved identity, or nil for anonymous requests.
func GetIdentity(c *gin.Context) *Identity {
	v, ok := c.Get(string(IdentityKey))
	if !ok {
		return nil
	}
	identity, _ := v.(*Identity)
	return identity
}

// GetAdminID returns the admin id set by AdminAuthMiddleware.
func GetAdminID(c *gin.Context) string {
	return c.GetString(string(AdminIDKey))
}

func setIdentity(c *gin.Context, identity *Identity) {
	c.Set(string(UserIDKey), identity.UserID)
	c.Set(string(IdentityKey), identity)
}

func bearerToken(c *gin.Context) string {
	header := c.GetHeader("Authorization")
	if len(header) > 7 && strings.EqualFold(header[:7], "Bearer ") {
		return strings.TrimSpace(header[7:])
	}
	return ""
}

func isWebSocketUpgrade(c *gin.Context) bool {
	return strings.Contains(strings.ToLower(c.GetHeader("Connection")), "upgrade") &&
		strings.EqualFold(c.GetHeader("Upgrade"), "websocket")
}

func tokenError(err error) *apperrors.AppError {
	if errors.Is(err, ErrTokenExpired) {
		return apperrors.Unauthorized("token_expired", "Your session has expired")
	}
	return apperrors.Unauthorized("invalid_token", "Invalid authentication token")
}
