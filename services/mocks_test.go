package services

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/jungianjournals/journals-backend/internal/payments/toss"
	"github.com/jungianjournals/journals-backend/types"
	"github.com/stretchr/testify/mock"
)

type MockVideoStore struct {
	mock.Mock
}

func (m *MockVideoStore) GetVideo(ctx context.Context, id string) (*types.Video, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Video), args.Error(1)
}

func (m *MockVideoStore) ListVideos(ctx context.Context, filter types.ContentFilter) ([]types.Video, int, error) {
	args := m.Called(ctx, filter)
	videos, _ := args.Get(0).([]types.Video)
	return videos, args.Int(1), args.Error(2)
}

func (m *MockVideoStore) ListKeywords(ctx context.Context, category types.ContentCategory) ([]types.KeywordCount, error) {
	args := m.Called(ctx, category)
	counts, _ := args.Get(0).([]types.KeywordCount)
	return counts, args.Error(1)
}

func (m *MockVideoStore) ListCandidates(ctx context.Context, excludeID string, limit int) ([]types.Video, error) {
	args := m.Called(ctx, excludeID, limit)
	videos, _ := args.Get(0).([]types.Video)
	return videos, args.Error(1)
}

func (m *MockVideoStore) GetVideosByIDs(ctx context.Context, ids []string) ([]types.Video, error) {
	args := m.Called(ctx, ids)
	videos, _ := args.Get(0).([]types.Video)
	return videos, args.Error(1)
}

func (m *MockVideoStore) ListPopular(ctx context.Context, limit int) ([]types.Video, error) {
	args := m.Called(ctx, limit)
	videos, _ := args.Get(0).([]types.Video)
	return videos, args.Error(1)
}

func (m *MockVideoStore) ListPreferred(ctx context.Context, excludeIDs, categories, keywords []string, limit int) ([]types.Video, error) {
	args := m.Called(ctx, excludeIDs, categories, keywords, limit)
	videos, _ := args.Get(0).([]types.Video)
	return videos, args.Error(1)
}

func (m *MockVideoStore) CreateVideo(ctx context.Context, video *types.Video) error {
	return m.Called(ctx, video).Error(0)
}

func (m *MockVideoStore) UpdateVideo(ctx context.Context, video *types.Video) error {
	return m.Called(ctx, video).Error(0)
}

func (m *MockVideoStore) DeleteVideo(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockVideoStore) IncrementViews(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockVideoStore) TotalViews(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockVideoStore) TopByViews(ctx context.Context, limit int) ([]types.TopContent, error) {
	args := m.Called(ctx, limit)
	top, _ := args.Get(0).([]types.TopContent)
	return top, args.Error(1)
}

type MockBlogStore struct {
	mock.Mock
}

func (m *MockBlogStore) GetBlog(ctx context.Context, id string) (*types.Blog, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Blog), args.Error(1)
}

func (m *MockBlogStore) ListBlogs(ctx context.Context, filter types.ContentFilter) ([]types.Blog, int, error) {
	args := m.Called(ctx, filter)
	blogs, _ := args.Get(0).([]types.Blog)
	return blogs, args.Int(1), args.Error(2)
}

func (m *MockBlogStore) CreateBlog(ctx context.Context, blog *types.Blog) error {
	return m.Called(ctx, blog).Error(0)
}

func (m *MockBlogStore) UpdateBlog(ctx context.Context, blog *types.Blog) error {
	return m.Called(ctx, blog).Error(0)
}

func (m *MockBlogStore) DeleteBlog(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *MockBlogStore) IncrementViews(ctx context.Context, id string) (int64, error) {
	args := m.Called(ctx, id)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBlogStore) TotalViews(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockBlogStore) TopByViews(ctx context.Context, limit int) ([]types.TopContent, error) {
	args := m.Called(ctx, limit)
	top, _ := args.Get(0).([]types.TopContent)
	return top, args.Error(1)
}

type MockViewHistoryStore struct {
	mock.Mock
}

func (m *MockViewHistoryStore) RecordView(ctx context.Context, userID, videoID string, at time.Time) error {
	return m.Called(ctx, userID, videoID, at).Error(0)
}

func (m *MockViewHistoryStore) RecentVideoIDs(ctx context.Context, userID string, limit int) ([]string, error) {
	args := m.Called(ctx, userID, limit)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *MockViewHistoryStore) VisitsByDate(ctx context.Context, since time.Time) ([]types.DailyCount, error) {
	args := m.Called(ctx, since)
	counts, _ := args.Get(0).([]types.DailyCount)
	return counts, args.Error(1)
}

type MockSubscriptionStore struct {
	mock.Mock
}

func (m *MockSubscriptionStore) GetLatestByUser(ctx context.Context, userID string) (*types.Subscription, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Subscription), args.Error(1)
}

func (m *MockSubscriptionStore) GetSubscription(ctx context.Context, id string) (*types.Subscription, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Subscription), args.Error(1)
}

func (m *MockSubscriptionStore) CreateSubscription(ctx context.Context, sub *types.Subscription) error {
	return m.Called(ctx, sub).Error(0)
}

func (m *MockSubscriptionStore) UpdateStatus(ctx context.Context, id string, status types.SubscriptionStatus) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *MockSubscriptionStore) ExpireDue(ctx context.Context, now time.Time) ([]string, error) {
	args := m.Called(ctx, now)
	ids, _ := args.Get(0).([]string)
	return ids, args.Error(1)
}

func (m *MockSubscriptionStore) ActiveUntil(ctx context.Context, now time.Time) (map[string]time.Time, error) {
	args := m.Called(ctx, now)
	active, _ := args.Get(0).(map[string]time.Time)
	return active, args.Error(1)
}

type MockPaymentStore struct {
	mock.Mock
}

func (m *MockPaymentStore) CreatePayment(ctx context.Context, payment *types.Payment) error {
	return m.Called(ctx, payment).Error(0)
}

func (m *MockPaymentStore) GetByOrderID(ctx context.Context, orderID string) (*types.Payment, error) {
	args := m.Called(ctx, orderID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.Payment), args.Error(1)
}

func (m *MockPaymentStore) Complete(ctx context.Context, orderID string, completion types.PaymentCompletion, sub *types.Subscription) error {
	return m.Called(ctx, orderID, completion, sub).Error(0)
}

func (m *MockPaymentStore) MarkFailed(ctx context.Context, orderID, code, reason string) error {
	return m.Called(ctx, orderID, code, reason).Error(0)
}

func (m *MockPaymentStore) ListPayments(ctx context.Context, filter types.PaymentFilter) ([]types.Payment, int, error) {
	args := m.Called(ctx, filter)
	payments, _ := args.Get(0).([]types.Payment)
	return payments, args.Int(1), args.Error(2)
}

func (m *MockPaymentStore) Stats(ctx context.Context) (*types.PaymentStats, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.PaymentStats), args.Error(1)
}

type MockUserDirectory struct {
	mock.Mock
}

func (m *MockUserDirectory) ListUsers(ctx context.Context) ([]types.AuthUser, error) {
	args := m.Called(ctx)
	users, _ := args.Get(0).([]types.AuthUser)
	return users, args.Error(1)
}

func (m *MockUserDirectory) UpdateAppMetadata(ctx context.Context, userID string, metadata map[string]interface{}) error {
	return m.Called(ctx, userID, metadata).Error(0)
}

func (m *MockUserDirectory) ExchangeCode(ctx context.Context, code, codeVerifier string) (*types.AuthSession, error) {
	args := m.Called(ctx, code, codeVerifier)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.AuthSession), args.Error(1)
}

func (m *MockUserDirectory) RefreshSession(ctx context.Context, refreshToken string) (*types.AuthSession, error) {
	args := m.Called(ctx, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*types.AuthSession), args.Error(1)
}

type MockVideoMatcher struct {
	mock.Mock
}

func (m *MockVideoMatcher) MatchVideos(ctx context.Context, embedding []float32, count int, excludeID string) ([]types.Video, error) {
	args := m.Called(ctx, embedding, count, excludeID)
	videos, _ := args.Get(0).([]types.Video)
	return videos, args.Error(1)
}

type MockPaymentGateway struct {
	mock.Mock
}

func (m *MockPaymentGateway) Confirm(ctx context.Context, req toss.ConfirmRequest) (*toss.Payment, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*toss.Payment), args.Error(1)
}

type MockEmailService struct {
	mock.Mock
}

func (m *MockEmailService) SendPaymentReceipt(ctx context.Context, receipt types.PaymentReceipt) error {
	return m.Called(ctx, receipt).Error(0)
}

type MockFileStorage struct {
	mock.Mock
}

func (m *MockFileStorage) Save(ctx context.Context, key string, r io.Reader, size int64, contentType string) error {
	return m.Called(ctx, key, r, size, contentType).Error(0)
}

func (m *MockFileStorage) Delete(ctx context.Context, key string) error {
	return m.Called(ctx, key).Error(0)
}

func (m *MockFileStorage) URL(ctx context.Context, key string) (string, error) {
	args := m.Called(ctx, key)
	return args.String(0), args.Error(1)
}

// inlineJobs runs submitted jobs synchronously.
type inlineJobs struct {
	mu   sync.Mutex
	jobs []string
}

func (j *inlineJobs) Submit(job Job) bool {
	j.mu.Lock()
	j.jobs = append(j.jobs, job.Name)
	j.mu.Unlock()
	_ = job.Execute(context.Background())
	return true
}

func (j *inlineJobs) names() []string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return append([]string(nil), j.jobs...)
}
