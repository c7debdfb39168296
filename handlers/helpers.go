package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"
	apperrors "github.com/jungianjournals/journals-backend/errors"
	"github.com/jungianjournals/journals-backend/middleware"
	"github.com/jungianjournals/journals-backend/types"
)

func getUserIDFromContext(c *gin.Context) string {
	return middleware.GetUserID(c)
}

// viewerFromContext builds the content viewer from an optional identity.
func viewerFromContext(c *gin.Context) types.Viewer {
	identity := middleware.GetIdentity(c)
	if identity == nil {
		return types.Viewer{}
	}
	return types.Viewer{UserID: identity.UserID, MetadataPremium: identity.MetadataPremium}
}

// requireIdentity returns the member identity or records a 401.
func requireIdentity(c *gin.Context) (*middleware.Identity, bool) {
	identity := middleware.GetIdentity(c)
	if identity == nil || identity.UserID == "" {
		_ = c.Error(apperrors.Unauthorized("not_authenticated", "user not authenticated"))
		return nil, false
	}
	return identity, true
}

// bindJSONOrError binds JSON request body and sets validation error if binding fails.
// Returns true if binding succeeded, false if error was set (caller should return).
func bindJSONOrError(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return false
	}
	return true
}

func bindPagination(c *gin.Context) (types.PaginationParams, bool) {
	var p types.PaginationParams
	if err := c.ShouldBindQuery(&p); err != nil {
		_ = c.Error(apperrors.ValidationFailed("invalid_pagination", err.Error()))
		return p, false
	}
	return p, true
}

// queryInt reads an optional integer query parameter.
func queryInt(c *gin.Context, name string, fallback int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		_ = c.Error(apperrors.ValidationFailed("invalid_"+name, name+" must be an integer"))
		return 0, false
	}
	return n, true
}
