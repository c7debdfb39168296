package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jungianjournals/journals-backend/config"
	"github.com/jungianjournals/journals-backend/logger"
	"github.com/jungianjournals/journals-backend/types"
	"github.com/supabase-community/gotrue-go"
	gotruetypes "github.com/supabase-community/gotrue-go/types"
	"github.com/supabase-community/supabase-go"
	"go.uber.org/zap"
)

const (
	matchVideosRPC       = "match_videos"
	supabaseCallTimeout  = 15 * time.Second
	grantTypePKCE        = "pkce"
	errSupabaseNoContext = "supabase request aborted"
)

// ErrRPCFailed is returned when a PostgREST function call fails.
var ErrRPCFailed = errors.New("supabase rpc failed")

// SupabaseService talks to the hosted Supabase project: Auth for the admin
// user list, metadata updates and session exchange, and PostgREST for the
// match_videos function.
type SupabaseService struct {
	client *supabase.Client
	auth   gotrue.Client
	admin  gotrue.Client
	logger *zap.SugaredLogger
}

var (
	_ UserDirectory = (*SupabaseService)(nil)
	_ VideoMatcher  = (*SupabaseService)(nil)
)

// NewSupabaseService creates a service authenticated with the service role key.
func NewSupabaseService(cfg *config.SupabaseConfig) (*SupabaseService, error) {
	key := cfg.ServiceKey
	if key == "" {
		key = cfg.AnonKey
	}
	client, err := supabase.NewClient(strings.TrimRight(cfg.URL, "/"), key, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create supabase client: %w", err)
	}

	httpClient := http.Client{Timeout: supabaseCallTimeout}
	auth := client.Auth.WithClient(httpClient)
	return &SupabaseService{
		client: client,
		auth:   auth,
		admin:  auth.WithToken(cfg.ServiceKey),
		logger: logger.GetLogger().Named("supabase"),
	}, nil
}

// ListUsers returns the first page of Supabase Auth users.
func (s *SupabaseService) ListUsers(ctx context.Context) ([]types.AuthUser, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", errSupabaseNoContext, err)
	}
	resp, err := s.admin.AdminListUsers()
	if err != nil {
		s.logger.Errorw("Failed to list users", "error", err)
		return nil, fmt.Errorf("list users: %w", err)
	}

	users := make([]types.AuthUser, 0, len(resp.Users))
	for _, u := range resp.Users {
		users = append(users, toAuthUser(u))
	}
	return users, nil
}

// UpdateAppMetadata merges metadata into the user's app_metadata.
func (s *SupabaseService) UpdateAppMetadata(ctx context.Context, userID string, metadata map[string]interface{}) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", errSupabaseNoContext, err)
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		return fmt.Errorf("invalid user id %q: %w", userID, err)
	}
	if _, err := s.admin.AdminUpdateUser(gotruetypes.AdminUpdateUserRequest{
		UserID:      id,
		AppMetadata: metadata,
	}); err != nil {
		s.logger.Errorw("Failed to update app metadata", "userID", userID, "error", err)
		return fmt.Errorf("update app metadata: %w", err)
	}
	return nil
}

// ExchangeCode trades an OAuth PKCE code for a session.
func (s *SupabaseService) ExchangeCode(ctx context.Context, code, codeVerifier string) (*types.AuthSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", errSupabaseNoContext, err)
	}
	resp, err := s.auth.Token(gotruetypes.TokenRequest{
		GrantType:    grantTypePKCE,
		Code:         code,
		CodeVerifier: codeVerifier,
	})
	if err != nil {
		return nil, fmt.Errorf("exchange code: %w", err)
	}
	return toAuthSession(resp.Session), nil
}

// RefreshSession issues a new session from a refresh token.
func (s *SupabaseService) RefreshSession(ctx context.Context, refreshToken string) (*types.AuthSession, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", errSupabaseNoContext, err)
	}
	resp, err := s.auth.RefreshToken(refreshToken)
	if err != nil {
		return nil, fmt.Errorf("refresh session: %w", err)
	}
	return toAuthSession(resp.Session), nil
}

type matchVideosParams struct {
	QueryEmbedding []float32 `json:"query_embedding"`
	MatchCount     int       `json:"match_count"`
	CurrentVideoID string    `json:"current_video_id"`
}

type postgrestError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details string `json:"details"`
}

// MatchVideos calls the match_videos function, ordered by similarity.
func (s *SupabaseService) MatchVideos(ctx context.Context, embedding []float32, count int, excludeID string) ([]types.Video, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", errSupabaseNoContext, err)
	}
	body := s.client.Rpc(matchVideosRPC, "", matchVideosParams{
		QueryEmbedding: embedding,
		MatchCount:     count,
		CurrentVideoID: excludeID,
	})
	return decodeRPCVideos(body)
}

// decodeRPCVideos parses a PostgREST rpc body. The client reports transport
// failures as an empty body and database errors as a JSON object.
func decodeRPCVideos(body string) ([]types.Video, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return nil, fmt.Errorf("%w: empty response", ErrRPCFailed)
	}
	if strings.HasPrefix(body, "{") {
		var pgErr postgrestError
		if err := json.Unmarshal([]byte(body), &pgErr); err == nil && pgErr.Message != "" {
			return nil, fmt.Errorf("%w: %s (%s)", ErrRPCFailed, pgErr.Message, pgErr.Code)
		}
		return nil, fmt.Errorf("%w: unexpected object response", ErrRPCFailed)
	}

	var videos []types.Video
	if err := json.Unmarshal([]byte(body), &videos); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrRPCFailed, err)
	}
	return videos, nil
}

func toAuthUser(u gotruetypes.User) types.AuthUser {
	return types.AuthUser{
		ID:           u.ID.String(),
		Email:        u.Email,
		CreatedAt:    u.CreatedAt,
		LastSignInAt: u.LastSignInAt,
		UserMetadata: u.UserMetadata,
		AppMetadata:  u.AppMetadata,
	}
}

func toAuthSession(s gotruetypes.Session) *types.AuthSession {
	session := &types.AuthSession{
		AccessToken:  s.AccessToken,
		RefreshToken: s.RefreshToken,
		TokenType:    s.TokenType,
		ExpiresIn:    s.ExpiresIn,
		UserID:       s.User.ID.String(),
		Email:        s.User.Email,
	}
	if s.ExpiresAt > 0 {
		session.ExpiresAt = time.Unix(s.ExpiresAt, 0).UTC()
	} else if s.ExpiresIn > 0 {
		session.ExpiresAt = time.Now().Add(time.Duration(s.ExpiresIn) * time.Second).UTC()
	}
	return session
}
