package services

import (
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/jungianjournals/journals-backend/errors"
	"github.com/jungianjournals/journals-backend/internal/events"
	"github.com/jungianjournals/journals-backend/internal/store"
	"github.com/jungianjournals/journals-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var subNow = time.Date(2024, 1, 31, 9, 0, 0, 0, time.UTC)

func newTestSubscriptionService(subs *MockSubscriptionStore, dir *MockUserDirectory, pub types.ActivityPublisher) *SubscriptionService {
	var directory UserDirectory
	if dir != nil {
		directory = dir
	}
	svc := NewSubscriptionService(subs, directory, pub)
	svc.now = func() time.Time { return subNow }
	return svc
}

func requireAppErrorType(t *testing.T, err error, want apperrors.ErrorType) {
	t.Helper()
	var appErr *apperrors.AppError
	require.True(t, errors.As(err, &appErr), "expected AppError, got %v", err)
	assert.Equal(t, want, appErr.Type)
}

func TestNewSubscription(t *testing.T) {
	tests := []struct {
		months  int
		wantEnd time.Time
	}{
		{1, time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)},
		{0, time.Date(2024, 3, 2, 9, 0, 0, 0, time.UTC)},
		{12, time.Date(2025, 1, 31, 9, 0, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		sub := NewSubscription("user-1", nil, tt.months, subNow)
		assert.Equal(t, types.SubscriptionStatusActive, sub.Status)
		assert.Equal(t, subNow, sub.StartDate)
		assert.Equal(t, tt.wantEnd, sub.EndDate, "months=%d", tt.months)
	}
}

func TestSubscriptionService_GetUserSubscription(t *testing.T) {
	subs := &MockSubscriptionStore{}
	subs.On("GetLatestByUser", mock.Anything, "nobody").Return(nil, store.ErrNotFound)
	subs.On("GetLatestByUser", mock.Anything, "broken").Return(nil, errors.New("conn reset"))

	svc := newTestSubscriptionService(subs, nil, nil)

	sub, err := svc.GetUserSubscription(context.Background(), "nobody")
	require.NoError(t, err)
	assert.Nil(t, sub)

	_, err = svc.GetUserSubscription(context.Background(), "broken")
	requireAppErrorType(t, err, apperrors.DatabaseError)
}

func TestSubscriptionService_IsPremium(t *testing.T) {
	subs := &MockSubscriptionStore{}
	subs.On("GetLatestByUser", mock.Anything, "active").Return(&types.Subscription{
		Status: types.SubscriptionStatusActive, EndDate: subNow.Add(time.Hour),
	}, nil)
	subs.On("GetLatestByUser", mock.Anything, "lapsed").Return(&types.Subscription{
		Status: types.SubscriptionStatusActive, EndDate: subNow,
	}, nil)

	svc := newTestSubscriptionService(subs, nil, nil)
	ctx := context.Background()

	ok, err := svc.IsPremium(ctx, "", true)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsPremium(ctx, "active", false)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.IsPremium(ctx, "lapsed", false)
	require.NoError(t, err)
	assert.False(t, ok)

	ok, err = svc.IsPremium(ctx, "", false)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestSubscriptionService_View(t *testing.T) {
	subs := &MockSubscriptionStore{}
	subs.On("GetLatestByUser", mock.Anything, "lapsed").Return(&types.Subscription{
		Status: types.SubscriptionStatusActive, EndDate: subNow.Add(-time.Hour),
	}, nil)
	subs.On("GetLatestByUser", mock.Anything, "new").Return(nil, store.ErrNotFound)

	svc := newTestSubscriptionService(subs, nil, nil)

	view, err := svc.View(context.Background(), "lapsed", false)
	require.NoError(t, err)
	assert.Equal(t, types.SubscriptionStatusExpired, view.Status)
	assert.False(t, view.IsPremium)

	view, err = svc.View(context.Background(), "new", false)
	require.NoError(t, err)
	assert.Equal(t, types.SubscriptionStatusNone, view.Status)
	assert.Nil(t, view.Subscription)
}

func TestSubscriptionService_Cancel(t *testing.T) {
	active := func() *types.Subscription {
		return &types.Subscription{ID: "sub-1", UserID: "owner", Status: types.SubscriptionStatusActive, EndDate: subNow.AddDate(0, 1, 0)}
	}

	t.Run("owner cancels", func(t *testing.T) {
		subs := &MockSubscriptionStore{}
		subs.On("GetSubscription", mock.Anything, "sub-1").Return(active(), nil)
		subs.On("UpdateStatus", mock.Anything, "sub-1", types.SubscriptionStatusCanceled).Return(nil)
		dir := &MockUserDirectory{}
		dir.On("UpdateAppMetadata", mock.Anything, "owner", map[string]interface{}{MetadataPremiumKey: false}).Return(nil)
		pub := events.NewMockPublisher()

		svc := newTestSubscriptionService(subs, dir, pub)
		sub, err := svc.Cancel(context.Background(), "sub-1", "owner")
		require.NoError(t, err)
		assert.Equal(t, types.SubscriptionStatusCanceled, sub.Status)

		published := pub.Published()
		require.Len(t, published, 1)
		assert.Equal(t, types.ActivitySubscriptionCanceled, published[0].Type)
		subs.AssertExpectations(t)
		dir.AssertExpectations(t)
	})

	t.Run("someone else", func(t *testing.T) {
		subs := &MockSubscriptionStore{}
		subs.On("GetSubscription", mock.Anything, "sub-1").Return(active(), nil)

		svc := newTestSubscriptionService(subs, nil, nil)
		_, err := svc.Cancel(context.Background(), "sub-1", "intruder")
		requireAppErrorType(t, err, apperrors.ForbiddenError)
		subs.AssertNotCalled(t, "UpdateStatus", mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("already canceled", func(t *testing.T) {
		canceled := active()
		canceled.Status = types.SubscriptionStatusCanceled
		subs := &MockSubscriptionStore{}
		subs.On("GetSubscription", mock.Anything, "sub-1").Return(canceled, nil)

		svc := newTestSubscriptionService(subs, nil, nil)
		_, err := svc.Cancel(context.Background(), "sub-1", "owner")
		requireAppErrorType(t, err, apperrors.ConflictError)
	})

	t.Run("missing", func(t *testing.T) {
		subs := &MockSubscriptionStore{}
		subs.On("GetSubscription", mock.Anything, "nope").Return(nil, store.ErrNotFound)

		svc := newTestSubscriptionService(subs, nil, nil)
		_, err := svc.Cancel(context.Background(), "nope", "owner")
		requireAppErrorType(t, err, apperrors.NotFoundError)
	})
}

func TestSubscriptionService_ExpiryJob(t *testing.T) {
	subs := &MockSubscriptionStore{}
	subs.On("ExpireDue", mock.Anything, subNow).Return([]string{"u1", "u2"}, nil)
	dir := &MockUserDirectory{}
	dir.On("UpdateAppMetadata", mock.Anything, "u1", mock.Anything).Return(nil)
	dir.On("UpdateAppMetadata", mock.Anything, "u2", mock.Anything).Return(errors.New("supabase down"))
	pub := events.NewMockPublisher()

	svc := newTestSubscriptionService(subs, dir, pub)
	job := svc.ExpiryJob()
	require.NoError(t, job.Execute(context.Background()))

	assert.Len(t, pub.Published(), 2)
	dir.AssertExpectations(t)
}
