package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jungianjournals/journals-backend/types"
)

// codeVerifierCookie is set by the frontend before starting the OAuth flow.
const codeVerifierCookie = "sb-code-verifier"

// AuthHandler serves the Supabase OAuth callback, session refresh and the
// admin login.
type AuthHandler struct {
	auth AuthServiceInterface
}

func NewAuthHandler(auth AuthServiceInterface) *AuthHandler {
	return &AuthHandler{auth: auth}
}

// CallbackHandler godoc
// @Summary OAuth callback
// @Description Exchanges the PKCE code and redirects to the frontend.
// @Tags auth
// @Param code query string true "Authorization code"
// @Param next query string false "Path to continue to"
// @Success 302
// @Router /auth/callback [get]
func (h *AuthHandler) CallbackHandler(c *gin.Context) {
	verifier := c.Query("code_verifier")
	if verifier == "" {
		verifier, _ = c.Cookie(codeVerifierCookie)
	}
	target, session := h.auth.CallbackRedirect(c.Request.Context(), c.Query("code"), verifier, c.Query("next"))
	if session != nil {
		c.SetSameSite(http.SameSiteLaxMode)
		c.SetCookie("sb-access-token", session.AccessToken, session.ExpiresIn, "/", "", true, true)
		c.SetCookie("sb-refresh-token", session.RefreshToken, 0, "/", "", true, true)
	}
	c.Redirect(http.StatusFound, target)
}

// RefreshHandler godoc
// @Summary Refresh a session
// @Tags auth
// @Accept json
// @Produce json
// @Param request body types.RefreshRequest true "Refresh token"
// @Success 200 {object} types.AuthSession
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 429 {object} middleware.ErrorResponse
// @Router /auth/refresh [post]
func (h *AuthHandler) RefreshHandler(c *gin.Context) {
	var req types.RefreshRequest
	if !bindJSONOrError(c, &req) {
		return
	}
	session, err := h.auth.Refresh(c.Request.Context(), req.RefreshToken)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, session)
}

// AdminLoginHandler godoc
// @Summary Admin login
// @Tags admin
// @Accept json
// @Produce json
// @Param request body types.AdminLoginRequest true "Admin credentials"
// @Success 200 {object} types.AdminLoginResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Failure 429 {object} middleware.ErrorResponse
// @Router /admin/login [post]
func (h *AuthHandler) AdminLoginHandler(c *gin.Context) {
	var req types.AdminLoginRequest
	if !bindJSONOrError(c, &req) {
		return
	}
	resp, err := h.auth.AdminLogin(req)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, resp)
}
