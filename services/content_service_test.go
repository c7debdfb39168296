package services

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	apperrors "github.com/jungianjournals/journals-backend/errors"
	"github.com/jungianjournals/journals-backend/internal/events"
	"github.com/jungianjournals/journals-backend/internal/recommend"
	"github.com/jungianjournals/journals-backend/internal/store"
	"github.com/jungianjournals/journals-backend/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var contentNow = time.Date(2024, 5, 10, 8, 30, 0, 0, time.UTC)

type stubPremium struct {
	premium bool
	calls   int
}

func (s *stubPremium) IsPremium(_ context.Context, _ string, metadataPremium bool) (bool, error) {
	s.calls++
	return s.premium || metadataPremium, nil
}

type countingInvalidator struct{ calls int }

func (c *countingInvalidator) InvalidateCache(context.Context) { c.calls++ }

type contentFixture struct {
	videos    *MockVideoStore
	blogs     *MockBlogStore
	history   *MockViewHistoryStore
	files     *MockFileStorage
	premium   *stubPremium
	cache     *countingInvalidator
	publisher *events.MockPublisher
	svc       *ContentService
}

func newContentFixture() *contentFixture {
	f := &contentFixture{
		videos:    &MockVideoStore{},
		blogs:     &MockBlogStore{},
		history:   &MockViewHistoryStore{},
		files:     &MockFileStorage{},
		premium:   &stubPremium{},
		cache:     &countingInvalidator{},
		publisher: events.NewMockPublisher(),
	}
	f.svc = NewContentService(ContentServiceDeps{
		Videos:    f.videos,
		Blogs:     f.blogs,
		History:   f.history,
		Premium:   f.premium,
		Files:     f.files,
		Publisher: f.publisher,
		Cache:     f.cache,
	}, 1024)
	f.svc.now = func() time.Time { return contentNow }
	return f
}

func TestContentService_ListVideos_Paywall(t *testing.T) {
	rows := func() []types.Video {
		return []types.Video{
			{ID: "free", Title: "Shadow work", YouTubeURL: "https://youtu.be/dQw4w9WgXcQ"},
			{ID: "paid", Title: "Anima", YouTubeURL: "https://www.youtube.com/watch?v=abcdefghijk", IsPremium: true},
		}
	}

	t.Run("free viewer sees locked premium card", func(t *testing.T) {
		f := newContentFixture()
		f.videos.On("ListVideos", mock.Anything, types.ContentFilter{Limit: 20}).Return(rows(), 2, nil)

		page, err := f.svc.ListVideos(context.Background(), types.ContentFilter{}, types.Viewer{UserID: "u1"})
		require.NoError(t, err)
		require.Len(t, page.Items, 2)
		assert.Equal(t, 2, page.Pagination.Total)

		free, paid := page.Items[0], page.Items[1]
		assert.False(t, free.Locked)
		assert.Equal(t, "https://youtu.be/dQw4w9WgXcQ", free.YouTubeURL)

		assert.True(t, paid.Locked)
		assert.Empty(t, paid.YouTubeURL)
		assert.Empty(t, paid.YouTubeID)
		assert.Equal(t, recommend.PlaceholderThumbnail, paid.Thumbnail)
		assert.NotContains(t, paid.Thumbnail, "abcdefghijk")
		assert.Equal(t, 1, f.premium.calls)
	})

	t.Run("premium viewer sees everything", func(t *testing.T) {
		f := newContentFixture()
		f.premium.premium = true
		f.videos.On("ListVideos", mock.Anything, types.ContentFilter{Limit: 20}).Return(rows(), 2, nil)

		page, err := f.svc.ListVideos(context.Background(), types.ContentFilter{}, types.Viewer{UserID: "u1"})
		require.NoError(t, err)
		assert.False(t, page.Items[1].Locked)
		assert.NotEmpty(t, page.Items[1].YouTubeURL)
	})

	t.Run("anonymous viewer skips the lookup", func(t *testing.T) {
		f := newContentFixture()
		f.videos.On("ListVideos", mock.Anything, types.ContentFilter{Limit: 20}).Return(rows(), 2, nil)

		page, err := f.svc.ListVideos(context.Background(), types.ContentFilter{}, types.Viewer{})
		require.NoError(t, err)
		assert.True(t, page.Items[1].Locked)
		assert.Zero(t, f.premium.calls)
	})

	t.Run("locked card keeps an uploaded image", func(t *testing.T) {
		f := newContentFixture()
		videos := rows()
		videos[1].ImageURL = "https://cdn.jungianjournals.com/anima.png"
		f.videos.On("ListVideos", mock.Anything, types.ContentFilter{Limit: 20}).Return(videos, 2, nil)

		page, err := f.svc.ListVideos(context.Background(), types.ContentFilter{}, types.Viewer{})
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.jungianjournals.com/anima.png", page.Items[1].Thumbnail)
	})

	t.Run("already decorated recommendations lose the still", func(t *testing.T) {
		f := newContentFixture()
		videos := []types.Video{{ID: "paid", IsPremium: true, YouTubeID: "abcdefghijk",
			Thumbnail: "https://img.youtube.com/vi/abcdefghijk/maxresdefault.jpg"}}

		f.svc.ApplyVideoPaywall(context.Background(), types.Viewer{}, videos)
		assert.True(t, videos[0].Locked)
		assert.Empty(t, videos[0].YouTubeID)
		assert.Equal(t, recommend.PlaceholderThumbnail, videos[0].Thumbnail)
	})
}

func TestContentService_ListVideos_TrimsKeyword(t *testing.T) {
	f := newContentFixture()
	f.videos.On("ListVideos", mock.Anything, types.ContentFilter{Keyword: "Anima", Search: "self", Limit: 20}).
		Return([]types.Video{}, 0, nil)

	_, err := f.svc.ListVideos(context.Background(), types.ContentFilter{Keyword: " Anima ", Search: " self"}, types.Viewer{})
	require.NoError(t, err)
	f.videos.AssertExpectations(t)
}

func TestBuildKeywordIndex(t *testing.T) {
	idx := BuildKeywordIndex(types.CategoryBooks, []types.KeywordCount{
		{Keyword: "shadow", Count: 2},
		{Keyword: "Anima", Count: 3},
		{Keyword: "animus", Count: 1},
		{Keyword: "무의식", Count: 4},
		{Keyword: "1920s", Count: 1},
		{Keyword: "Self-realization", Count: 1},
	})

	assert.Equal(t, types.CategoryBooks, idx.Category)
	assert.Len(t, idx.Letters, 26)
	assert.Equal(t, []types.KeywordCount{{Keyword: "Anima", Count: 3}, {Keyword: "animus", Count: 1}}, idx.Letters["A"])
	assert.Equal(t, []types.KeywordCount{{Keyword: "Self-realization", Count: 1}, {Keyword: "shadow", Count: 2}}, idx.Letters["S"])
	assert.Empty(t, idx.Letters["Z"])
	assert.NotNil(t, idx.Letters["Z"])
}

func TestContentService_KeywordIndex(t *testing.T) {
	f := newContentFixture()
	f.videos.On("ListKeywords", mock.Anything, types.CategoryJournals).
		Return([]types.KeywordCount{{Keyword: "Dreams", Count: 5}}, nil)

	idx, err := f.svc.KeywordIndex(context.Background(), types.CategoryJournals)
	require.NoError(t, err)
	assert.Equal(t, []types.KeywordCount{{Keyword: "Dreams", Count: 5}}, idx.Letters["D"])

	_, err = f.svc.KeywordIndex(context.Background(), "Poems")
	requireAppErrorType(t, err, apperrors.ValidationError)

	f.videos.On("ListKeywords", mock.Anything, types.ContentCategory("")).Return(nil, errors.New("boom"))
	_, err = f.svc.KeywordIndex(context.Background(), "")
	requireAppErrorType(t, err, apperrors.DatabaseError)
}

func TestContentService_ListVideos_InvalidCategory(t *testing.T) {
	f := newContentFixture()
	_, err := f.svc.ListVideos(context.Background(), types.ContentFilter{Category: "Poems"}, types.Viewer{})
	requireAppErrorType(t, err, apperrors.ValidationError)
	f.videos.AssertNotCalled(t, "ListVideos", mock.Anything, mock.Anything)
}

func TestContentService_GetBlog(t *testing.T) {
	f := newContentFixture()
	f.blogs.On("GetBlog", mock.Anything, "b1").Return(&types.Blog{ID: "b1", Content: "body", IsPremium: true}, nil)
	f.blogs.On("GetBlog", mock.Anything, "missing").Return(nil, store.ErrNotFound)

	blog, err := f.svc.GetBlog(context.Background(), "b1", types.Viewer{})
	require.NoError(t, err)
	assert.True(t, blog.Locked)
	assert.Empty(t, blog.Content)

	_, err = f.svc.GetBlog(context.Background(), "missing", types.Viewer{})
	requireAppErrorType(t, err, apperrors.NotFoundError)
}

func TestContentService_CreateVideo(t *testing.T) {
	f := newContentFixture()
	f.videos.On("CreateVideo", mock.Anything, mock.MatchedBy(func(v *types.Video) bool {
		return v.YouTubeID == "dQw4w9WgXcQ" && v.Title == "Individuation"
	})).Run(func(args mock.Arguments) {
		args.Get(1).(*types.Video).ID = "new-id"
	}).Return(nil)

	video, err := f.svc.CreateVideo(context.Background(), types.VideoInput{
		Title:      "  Individuation ",
		Category:   types.CategoryJournals,
		Keywords:   []string{"Self", " self ", "", "ego"},
		YouTubeURL: "https://www.youtube.com/embed/dQw4w9WgXcQ",
	})
	require.NoError(t, err)
	assert.Equal(t, "new-id", video.ID)
	assert.Equal(t, []string{"Self", "ego"}, video.Keywords)
	assert.Equal(t, contentNow, video.CreatedAt)
	assert.Equal(t, 1, f.cache.calls)

	published := f.publisher.Published()
	require.Len(t, published, 1)
	assert.Equal(t, types.ActivityContentCreated, published[0].Type)
	assert.Equal(t, types.ContentKindVideo, published[0].Kind)
}

func TestContentService_CreateVideo_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input types.VideoInput
	}{
		{"blank title", types.VideoInput{Title: " ", Category: types.CategoryBooks, YouTubeURL: "https://youtu.be/dQw4w9WgXcQ"}},
		{"bad category", types.VideoInput{Title: "t", Category: "Poems", YouTubeURL: "https://youtu.be/dQw4w9WgXcQ"}},
		{"not youtube", types.VideoInput{Title: "t", Category: types.CategoryBooks, YouTubeURL: "https://vimeo.com/1"}},
		{"short id", types.VideoInput{Title: "t", Category: types.CategoryBooks, YouTubeURL: "https://youtu.be/abc"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newContentFixture()
			_, err := f.svc.CreateVideo(context.Background(), tt.input)
			requireAppErrorType(t, err, apperrors.ValidationError)
			f.videos.AssertNotCalled(t, "CreateVideo", mock.Anything, mock.Anything)
			assert.Zero(t, f.cache.calls)
		})
	}
}

func TestContentService_UpdateBlog(t *testing.T) {
	f := newContentFixture()
	f.blogs.On("GetBlog", mock.Anything, "b1").Return(&types.Blog{
		ID: "b1", Title: "Old", Content: "text", Category: types.CategoryBooks,
	}, nil)
	f.blogs.On("UpdateBlog", mock.Anything, mock.AnythingOfType("*types.Blog")).Return(nil)

	title := "New"
	premium := true
	blog, err := f.svc.UpdateBlog(context.Background(), "b1", types.BlogUpdate{Title: &title, IsPremium: &premium})
	require.NoError(t, err)
	assert.Equal(t, "New", blog.Title)
	assert.True(t, blog.IsPremium)
	assert.Equal(t, contentNow, blog.UpdatedAt)
	assert.Zero(t, f.cache.calls, "blog edits leave recommendations alone")
	assert.Equal(t, types.ActivityContentUpdated, f.publisher.Published()[0].Type)
}

func TestContentService_DeleteVideo(t *testing.T) {
	f := newContentFixture()
	f.videos.On("DeleteVideo", mock.Anything, "v1").Return(nil)
	f.videos.On("DeleteVideo", mock.Anything, "gone").Return(store.ErrNotFound)

	require.NoError(t, f.svc.DeleteVideo(context.Background(), "v1"))
	assert.Equal(t, 1, f.cache.calls)

	err := f.svc.DeleteVideo(context.Background(), "gone")
	requireAppErrorType(t, err, apperrors.NotFoundError)
}

func TestContentService_RecordView(t *testing.T) {
	t.Run("signed-in video view writes history", func(t *testing.T) {
		f := newContentFixture()
		f.videos.On("IncrementViews", mock.Anything, "v1").Return(int64(42), nil)
		f.history.On("RecordView", mock.Anything, "u1", "v1", contentNow).Return(nil)

		views, err := f.svc.RecordView(context.Background(), types.ContentKindVideo, "v1", types.Viewer{UserID: "u1"})
		require.NoError(t, err)
		assert.Equal(t, int64(42), views)
		f.history.AssertExpectations(t)
		assert.Equal(t, types.ActivityVideoViewed, f.publisher.Published()[0].Type)
	})

	t.Run("history failure does not fail the view", func(t *testing.T) {
		f := newContentFixture()
		f.videos.On("IncrementViews", mock.Anything, "v1").Return(int64(1), nil)
		f.history.On("RecordView", mock.Anything, "u1", "v1", contentNow).Return(errors.New("fk violation"))

		_, err := f.svc.RecordView(context.Background(), types.ContentKindVideo, "v1", types.Viewer{UserID: "u1"})
		require.NoError(t, err)
	})

	t.Run("anonymous blog view", func(t *testing.T) {
		f := newContentFixture()
		f.blogs.On("IncrementViews", mock.Anything, "b1").Return(int64(7), nil)

		views, err := f.svc.RecordView(context.Background(), types.ContentKindBlog, "b1", types.Viewer{})
		require.NoError(t, err)
		assert.Equal(t, int64(7), views)
		f.history.AssertNotCalled(t, "RecordView", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("unknown kind", func(t *testing.T) {
		f := newContentFixture()
		_, err := f.svc.RecordView(context.Background(), "podcast", "x", types.Viewer{})
		requireAppErrorType(t, err, apperrors.ValidationError)
	})

	t.Run("missing video", func(t *testing.T) {
		f := newContentFixture()
		f.videos.On("IncrementViews", mock.Anything, "nope").Return(int64(0), store.ErrNotFound)
		_, err := f.svc.RecordView(context.Background(), types.ContentKindVideo, "nope", types.Viewer{})
		requireAppErrorType(t, err, apperrors.NotFoundError)
	})
}

var pngHeader = []byte{0x89, 'P', 'N', 'G', '\r', '\n', 0x1a, '\n', 0, 0, 0, 0x0d, 'I', 'H', 'D', 'R'}

func TestContentService_UploadBlogImage(t *testing.T) {
	t.Run("stores under dated key", func(t *testing.T) {
		f := newContentFixture()
		f.files.On("Save", mock.Anything, mock.MatchedBy(func(key string) bool {
			return len(key) > len("blog/2024/05/") && key[:len("blog/2024/05/")] == "blog/2024/05/" && key[len(key)-4:] == ".png"
		}), mock.Anything, int64(len(pngHeader)), "image/png").Return(nil)
		f.files.On("URL", mock.Anything, mock.AnythingOfType("string")).Return("https://cdn.example.com/blog/x.png", nil)

		img, err := f.svc.UploadBlogImage(context.Background(), bytes.NewReader(pngHeader))
		require.NoError(t, err)
		assert.Equal(t, "image/png", img.ContentType)
		assert.Equal(t, "https://cdn.example.com/blog/x.png", img.URL)
		f.files.AssertExpectations(t)
	})

	t.Run("rejects non images", func(t *testing.T) {
		f := newContentFixture()
		_, err := f.svc.UploadBlogImage(context.Background(), bytes.NewReader([]byte("#!/bin/sh\necho hi\n")))
		requireAppErrorType(t, err, apperrors.ValidationError)
		f.files.AssertNotCalled(t, "Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})

	t.Run("rejects oversized files", func(t *testing.T) {
		f := newContentFixture()
		big := append(append([]byte{}, pngHeader...), make([]byte, 2048)...)
		_, err := f.svc.UploadBlogImage(context.Background(), bytes.NewReader(big))
		requireAppErrorType(t, err, apperrors.ValidationError)
	})

	t.Run("storage outage", func(t *testing.T) {
		f := newContentFixture()
		f.files.On("Save", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Return(errors.New("503"))
		_, err := f.svc.UploadBlogImage(context.Background(), bytes.NewReader(pngHeader))
		requireAppErrorType(t, err, apperrors.ExternalServiceErr)
	})
}
