package services

import (
	"context"
	"net/url"
	"strings"
	"time"

	"github.com/jungianjournals/journals-backend/config"
	apperrors "github.com/jungianjournals/journals-backend/errors"
	"github.com/jungianjournals/journals-backend/internal/auth"
	"github.com/jungianjournals/journals-backend/logger"
	"github.com/jungianjournals/journals-backend/types"
	"go.uber.org/zap"
)

const defaultAdminSessionHours = 24

// AuthService handles the Supabase OAuth round trip and the admin login.
type AuthService struct {
	directory   UserDirectory
	admin       config.AdminConfig
	frontendURL string
	logger      *zap.SugaredLogger
}

func NewAuthService(directory UserDirectory, admin config.AdminConfig, frontendURL string) *AuthService {
	if admin.SessionHours <= 0 {
		admin.SessionHours = defaultAdminSessionHours
	}
	return &AuthService{
		directory:   directory,
		admin:       admin,
		frontendURL: strings.TrimRight(frontendURL, "/"),
		logger:      logger.GetLogger().Named("auth"),
	}
}

// SanitizeNext keeps only same-site absolute paths so the callback cannot be
// turned into an open redirect.
func SanitizeNext(next string) string {
	next = strings.TrimSpace(next)
	if next == "" || !strings.HasPrefix(next, "/") || strings.HasPrefix(next, "//") || strings.Contains(next, `\`) {
		return "/"
	}
	u, err := url.Parse(next)
	if err != nil || u.Host != "" || u.Scheme != "" {
		return "/"
	}
	return next
}

// CallbackRedirect exchanges an OAuth code and returns where the browser
// goes next together with the new session. Failures redirect to the front
// page with error=auth and a nil session.
func (s *AuthService) CallbackRedirect(ctx context.Context, code, codeVerifier, next string) (string, *types.AuthSession) {
	failure := s.frontendURL + "/?error=auth"
	if code == "" {
		return failure, nil
	}
	session, err := s.directory.ExchangeCode(ctx, code, codeVerifier)
	if err != nil {
		s.logger.Warnw("OAuth code exchange failed", "error", err)
		return failure, nil
	}
	s.logger.Infow("User signed in", "userID", session.UserID)
	return s.frontendURL + SanitizeNext(next), session
}

// Refresh trades a refresh token for a new session.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*types.AuthSession, error) {
	if strings.TrimSpace(refreshToken) == "" {
		return nil, apperrors.ValidationFailed("missing_refresh_token", "refresh_token is required")
	}
	session, err := s.directory.RefreshSession(ctx, refreshToken)
	if err != nil {
		s.logger.Debugw("Session refresh rejected", "error", err)
		return nil, apperrors.Unauthorized("invalid_refresh_token", "Refresh token is invalid or expired")
	}
	return session, nil
}

// AdminLogin checks the configured credentials and issues an admin token.
func (s *AuthService) AdminLogin(req types.AdminLoginRequest) (*types.AdminLoginResponse, error) {
	if !auth.CheckAdminCredentials(s.admin.ID, s.admin.PasswordHash, req.AdminID, req.Password) {
		s.logger.Warnw("Admin login rejected", "adminID", req.AdminID)
		return nil, apperrors.Unauthorized("invalid_credentials", "Invalid admin credentials")
	}
	ttl := time.Duration(s.admin.SessionHours) * time.Hour
	token, expiresAt, err := auth.GenerateAdminToken(req.AdminID, s.admin.TokenSecret, ttl)
	if err != nil {
		s.logger.Errorw("Failed to sign admin token", "error", err)
		return nil, apperrors.InternalServerError("failed to create admin session")
	}
	s.logger.Infow("Admin signed in", "adminID", req.AdminID)
	return &types.AdminLoginResponse{Token: token, ExpiresAt: expiresAt}, nil
}
