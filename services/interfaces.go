package services

import (
	"context"

	"github.com/jungianjournals/journals-backend/types"
)

// UserDirectory is the account side of Supabase Auth.
type UserDirectory interface {
	ListUsers(ctx context.Context) ([]types.AuthUser, error)
	UpdateAppMetadata(ctx context.Context, userID string, metadata map[string]interface{}) error
	ExchangeCode(ctx context.Context, code, codeVerifier string) (*types.AuthSession, error)
	RefreshSession(ctx context.Context, refreshToken string) (*types.AuthSession, error)
}

// VideoMatcher finds videos close to an embedding.
type VideoMatcher interface {
	MatchVideos(ctx context.Context, embedding []float32, count int, excludeID string) ([]types.Video, error)
}

// PremiumChecker decides whether a viewer may see premium content.
type PremiumChecker interface {
	IsPremium(ctx context.Context, userID string, metadataPremium bool) (bool, error)
}
