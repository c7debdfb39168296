package handlers

import (
	"context"
	"io"

	"github.com/jungianjournals/journals-backend/types"
	"github.com/stretchr/testify/mock"
)

type MockContentService struct {
	mock.Mock
}

func (m *MockContentService) ListVideos(ctx context.Context, filter types.ContentFilter, viewer types.Viewer) (*types.ContentList[types.Video], error) {
	args := m.Called(ctx, filter, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ContentList[types.Video]), args.Error(1)
}

func (m *MockContentService) KeywordIndex(ctx context.Context, category types.ContentCategory) (*types.KeywordIndex, error) {
	args := m.Called(ctx, category)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.KeywordIndex), args.Error(1)
}

func (m *MockContentService) GetVideo(ctx context.Context, id string, viewer types.Viewer) (*types.Video, error) {
	args := m.Called(ctx, id, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Video), args.Error(1)
}

func (m *MockContentService) CreateVideo(ctx context.Context, input types.VideoInput) (*types.Video, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Video), args.Error(1)
}

func (m *MockContentService) UpdateVideo(ctx context.Context, id string, update types.VideoUpdate) (*types.Video, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Video), args.Error(1)
}

func (m *MockContentService) DeleteVideo(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockContentService) ListBlogs(ctx context.Context, filter types.ContentFilter, viewer types.Viewer) (*types.ContentList[types.Blog], error) {
	args := m.Called(ctx, filter, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ContentList[types.Blog]), args.Error(1)
}

func (m *MockContentService) GetBlog(ctx context.Context, id string, viewer types.Viewer) (*types.Blog, error) {
	args := m.Called(ctx, id, viewer)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Blog), args.Error(1)
}

func (m *MockContentService) CreateBlog(ctx context.Context, input types.BlogInput) (*types.Blog, error) {
	args := m.Called(ctx, input)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Blog), args.Error(1)
}

func (m *MockContentService) UpdateBlog(ctx context.Context, id string, update types.BlogUpdate) (*types.Blog, error) {
	args := m.Called(ctx, id, update)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Blog), args.Error(1)
}

func (m *MockContentService) DeleteBlog(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockContentService) RecordView(ctx context.Context, kind types.ContentKind, id string, viewer types.Viewer) (int64, error) {
	args := m.Called(ctx, kind, id, viewer)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockContentService) UploadBlogImage(ctx context.Context, r io.Reader) (*types.UploadedImage, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.UploadedImage), args.Error(1)
}

func (m *MockContentService) ApplyVideoPaywall(ctx context.Context, viewer types.Viewer, videos []types.Video) {
	m.Called(ctx, viewer, videos)
}

type MockRecommendationService struct {
	mock.Mock
}

func (m *MockRecommendationService) Similar(ctx context.Context, videoID string, embedding []float32, limit int) ([]types.Video, error) {
	args := m.Called(ctx, videoID, embedding, limit)
	videos, _ := args.Get(0).([]types.Video)
	return videos, args.Error(1)
}

func (m *MockRecommendationService) Personalized(ctx context.Context, userID string, limit int) ([]types.Video, error) {
	args := m.Called(ctx, userID, limit)
	videos, _ := args.Get(0).([]types.Video)
	return videos, args.Error(1)
}

type MockSubscriptionService struct {
	mock.Mock
}

func (m *MockSubscriptionService) View(ctx context.Context, userID string, metadataPremium bool) (*types.SubscriptionView, error) {
	args := m.Called(ctx, userID, metadataPremium)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.SubscriptionView), args.Error(1)
}

func (m *MockSubscriptionService) CancelCurrent(ctx context.Context, userID string) (*types.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Subscription), args.Error(1)
}

type MockPaymentService struct {
	mock.Mock
}

func (m *MockPaymentService) PrepareCheckout(ctx context.Context, userID string) (*types.CheckoutSession, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.CheckoutSession), args.Error(1)
}

func (m *MockPaymentService) ConfirmPayment(ctx context.Context, userID, email string, req types.ConfirmPaymentRequest) (*types.PaymentResult, error) {
	args := m.Called(ctx, userID, email, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.PaymentResult), args.Error(1)
}

func (m *MockPaymentService) FailPayment(ctx context.Context, userID string, req types.FailPaymentRequest) error {
	return m.Called(ctx, userID, req).Error(0)
}

func (m *MockPaymentService) ListPayments(ctx context.Context, filter types.PaymentFilter) (*types.ContentList[types.Payment], error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.ContentList[types.Payment]), args.Error(1)
}

func (m *MockPaymentService) Stats(ctx context.Context) (*types.PaymentStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.PaymentStats), args.Error(1)
}

type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) CallbackRedirect(ctx context.Context, code, codeVerifier, next string) (string, *types.AuthSession) {
	args := m.Called(ctx, code, codeVerifier, next)
	session, _ := args.Get(1).(*types.AuthSession)
	return args.String(0), session
}

func (m *MockAuthService) Refresh(ctx context.Context, refreshToken string) (*types.AuthSession, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.AuthSession), args.Error(1)
}

func (m *MockAuthService) AdminLogin(req types.AdminLoginRequest) (*types.AdminLoginResponse, error) {
	args := m.Called(req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.AdminLoginResponse), args.Error(1)
}

type MockAnalyticsService struct {
	mock.Mock
}

func (m *MockAnalyticsService) Overview(ctx context.Context, periodDays int) (*types.AnalyticsOverview, error) {
	args := m.Called(ctx, periodDays)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.AnalyticsOverview), args.Error(1)
}

func (m *MockAnalyticsService) Users(ctx context.Context, filter types.UserFilter) (*types.AdminUserList, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.AdminUserList), args.Error(1)
}

type MockHealthService struct {
	mock.Mock
}

func (m *MockHealthService) CheckHealth(ctx context.Context) types.HealthCheck {
	return m.Called(ctx).Get(0).(types.HealthCheck)
}

func (m *MockHealthService) Ready(ctx context.Context) bool {
	return m.Called(ctx).Bool(0)
}
