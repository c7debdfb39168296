package handlers

import (
	"context"
	"io"

	"github.com/jungianjournals/journals-backend/types"
)

// ContentServiceInterface is what the content and admin handlers need.
type ContentServiceInterface interface {
	ListVideos(ctx context.Context, filter types.ContentFilter, viewer types.Viewer) (*types.ContentList[types.Video], error)
	GetVideo(ctx context.Context, id string, viewer types.Viewer) (*types.Video, error)
	CreateVideo(ctx context.Context, input types.VideoInput) (*types.Video, error)
	UpdateVideo(ctx context.Context, id string, update types.VideoUpdate) (*types.Video, error)
	DeleteVideo(ctx context.Context, id string) error
	KeywordIndex(ctx context.Context, category types.ContentCategory) (*types.KeywordIndex, error)
	ListBlogs(ctx context.Context, filter types.ContentFilter, viewer types.Viewer) (*types.ContentList[types.Blog], error)
	GetBlog(ctx context.Context, id string, viewer types.Viewer) (*types.Blog, error)
	CreateBlog(ctx context.Context, input types.BlogInput) (*types.Blog, error)
	UpdateBlog(ctx context.Context, id string, update types.BlogUpdate) (*types.Blog, error)
	DeleteBlog(ctx context.Context, id string) error
	RecordView(ctx context.Context, kind types.ContentKind, id string, viewer types.Viewer) (int64, error)
	UploadBlogImage(ctx context.Context, r io.Reader) (*types.UploadedImage, error)
	ApplyVideoPaywall(ctx context.Context, viewer types.Viewer, videos []types.Video)
}

// RecommendationServiceInterface serves similar and personalized videos.
type RecommendationServiceInterface interface {
	Similar(ctx context.Context, videoID string, embedding []float32, limit int) ([]types.Video, error)
	Personalized(ctx context.Context, userID string, limit int) ([]types.Video, error)
}

// SubscriptionServiceInterface is the member subscription surface.
type SubscriptionServiceInterface interface {
	View(ctx context.Context, userID string, metadataPremium bool) (*types.SubscriptionView, error)
	CancelCurrent(ctx context.Context, userID string) (*types.Subscription, error)
}

// PaymentServiceInterface covers checkout and the admin payment views.
type PaymentServiceInterface interface {
	PrepareCheckout(ctx context.Context, userID string) (*types.CheckoutSession, error)
	ConfirmPayment(ctx context.Context, userID, email string, req types.ConfirmPaymentRequest) (*types.PaymentResult, error)
	FailPayment(ctx context.Context, userID string, req types.FailPaymentRequest) error
	ListPayments(ctx context.Context, filter types.PaymentFilter) (*types.ContentList[types.Payment], error)
	Stats(ctx context.Context) (*types.PaymentStats, error)
}

// AuthServiceInterface covers the OAuth callback, refresh and admin login.
type AuthServiceInterface interface {
	CallbackRedirect(ctx context.Context, code, codeVerifier, next string) (string, *types.AuthSession)
	Refresh(ctx context.Context, refreshToken string) (*types.AuthSession, error)
	AdminLogin(req types.AdminLoginRequest) (*types.AdminLoginResponse, error)
}

// AnalyticsServiceInterface backs the admin dashboard.
type AnalyticsServiceInterface interface {
	Overview(ctx context.Context, periodDays int) (*types.AnalyticsOverview, error)
	Users(ctx context.Context, filter types.UserFilter) (*types.AdminUserList, error)
}

// HealthServiceInterface reports dependency health.
type HealthServiceInterface interface {
	CheckHealth(ctx context.Context) types.HealthCheck
	Ready(ctx context.Context) bool
}
