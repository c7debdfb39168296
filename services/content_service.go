package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"regexp"
	"sort"
	"strings"
	"time"

	apperrors "github.com/jungianjournals/journals-backend/errors"
	"github.com/jungianjournals/journals-backend/internal/events"
	"github.com/jungianjournals/journals-backend/internal/recommend"
	"github.com/jungianjournals/journals-backend/internal/storage"
	"github.com/jungianjournals/journals-backend/internal/store"
	"github.com/jungianjournals/journals-backend/logger"
	"github.com/jungianjournals/journals-backend/types"
	"go.uber.org/zap"
)

// CacheInvalidator drops derived data after a content change.
type CacheInvalidator interface {
	InvalidateCache(ctx context.Context)
}

// ContentService serves videos and blog posts behind the premium paywall
// and handles the admin edits.
type ContentService struct {
	videos    store.VideoStore
	blogs     store.BlogStore
	history   store.ViewHistoryStore
	premium   PremiumChecker
	files     storage.FileStorage
	publisher types.ActivityPublisher
	cache     CacheInvalidator
	maxUpload int64
	logger    *zap.SugaredLogger
	now       func() time.Time
}

// ContentServiceDeps groups the collaborators of ContentService. Files,
// Publisher and Cache are optional.
type ContentServiceDeps struct {
	Videos    store.VideoStore
	Blogs     store.BlogStore
	History   store.ViewHistoryStore
	Premium   PremiumChecker
	Files     storage.FileStorage
	Publisher types.ActivityPublisher
	Cache     CacheInvalidator
}

func NewContentService(deps ContentServiceDeps, maxUploadBytes int64) *ContentService {
	if maxUploadBytes <= 0 {
		maxUploadBytes = storage.DefaultMaxImageSize
	}
	return &ContentService{
		videos:    deps.Videos,
		blogs:     deps.Blogs,
		history:   deps.History,
		premium:   deps.Premium,
		files:     deps.Files,
		publisher: deps.Publisher,
		cache:     deps.Cache,
		maxUpload: maxUploadBytes,
		logger:    logger.GetLogger().Named("content"),
		now:       time.Now,
	}
}

func mapStoreError(err error, entity, id string) error {
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperrors.NotFound(entity, id)
	case errors.Is(err, store.ErrConflict):
		return apperrors.NewConflictError(entity+" already exists", id)
	default:
		return apperrors.NewDatabaseError(err)
	}
}

func normalizeFilter(filter types.ContentFilter) (types.ContentFilter, error) {
	if filter.Category != "" && !filter.Category.IsValid() {
		return filter, apperrors.ValidationFailed("invalid_category", fmt.Sprintf("unknown category %q", filter.Category))
	}
	filter.Limit, filter.Offset = clampPage(filter.Limit, filter.Offset)
	filter.Search = strings.TrimSpace(filter.Search)
	filter.Keyword = strings.TrimSpace(filter.Keyword)
	return filter, nil
}

// indexableKeyword matches the keywords listed in the A-Z browser.
var indexableKeyword = regexp.MustCompile(`^[a-zA-Z0-9\s\-_]+$`)

// BuildKeywordIndex groups keywords under the upper-cased first letter.
// Keywords with characters outside ASCII letters, digits, spaces, '-' and
// '_' are left out, as are keywords that start with a digit.
func BuildKeywordIndex(category types.ContentCategory, counts []types.KeywordCount) *types.KeywordIndex {
	idx := &types.KeywordIndex{Category: category, Letters: make(map[string][]types.KeywordCount, 26)}
	for l := 'A'; l <= 'Z'; l++ {
		idx.Letters[string(l)] = []types.KeywordCount{}
	}
	for _, kc := range counts {
		if !indexableKeyword.MatchString(kc.Keyword) {
			continue
		}
		letter := strings.ToUpper(kc.Keyword[:1])
		if bucket, ok := idx.Letters[letter]; ok {
			idx.Letters[letter] = append(bucket, kc)
		}
	}
	for _, bucket := range idx.Letters {
		sort.SliceStable(bucket, func(i, j int) bool { return bucket[i].Keyword < bucket[j].Keyword })
	}
	return idx
}

// KeywordIndex returns the A-Z keyword browser for a category, or for all
// videos when category is empty.
func (s *ContentService) KeywordIndex(ctx context.Context, category types.ContentCategory) (*types.KeywordIndex, error) {
	if category != "" && !category.IsValid() {
		return nil, apperrors.ValidationFailed("invalid_category", fmt.Sprintf("unknown category %q", category))
	}
	counts, err := s.videos.ListKeywords(ctx, category)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	return BuildKeywordIndex(category, counts), nil
}

// viewerPremium resolves premium access lazily: it is only consulted when
// the response actually contains premium items.
type viewerPremium struct {
	svc      *ContentService
	viewer   types.Viewer
	resolved bool
	premium  bool
}

func (p *viewerPremium) get(ctx context.Context) bool {
	if p.resolved {
		return p.premium
	}
	p.resolved = true
	if p.svc.premium == nil || (!p.viewer.Authenticated() && !p.viewer.MetadataPremium) {
		p.premium = p.viewer.MetadataPremium
		return p.premium
	}
	ok, err := p.svc.premium.IsPremium(ctx, p.viewer.UserID, p.viewer.MetadataPremium)
	if err != nil {
		p.svc.logger.Warnw("Premium lookup failed, treating viewer as free", "userID", p.viewer.UserID, "error", err)
	}
	p.premium = ok
	return p.premium
}

func lockVideo(v *types.Video) {
	v.Locked = true
	v.Thumbnail = recommend.LockedThumbnail(toRecommendVideo(*v))
	if v.Keywords == nil {
		v.Keywords = []string{}
	}
	v.YouTubeURL = ""
	v.YouTubeID = ""
}

func lockBlog(b *types.Blog) {
	b.Locked = true
	b.Content = ""
}

// ApplyVideoPaywall computes thumbnails and locks premium videos the viewer
// may not watch. Locked cards never carry a YouTube still.
func (s *ContentService) ApplyVideoPaywall(ctx context.Context, viewer types.Viewer, videos []types.Video) {
	access := &viewerPremium{svc: s, viewer: viewer}
	for i := range videos {
		if videos[i].IsPremium && !access.get(ctx) {
			lockVideo(&videos[i])
			continue
		}
		decorateVideo(&videos[i])
	}
}

// ListVideos returns a page of videos, newest first.
func (s *ContentService) ListVideos(ctx context.Context, filter types.ContentFilter, viewer types.Viewer) (*types.ContentList[types.Video], error) {
	filter, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}
	videos, total, err := s.videos.ListVideos(ctx, filter)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	if videos == nil {
		videos = []types.Video{}
	}
	s.ApplyVideoPaywall(ctx, viewer, videos)
	return &types.ContentList[types.Video]{
		Items:      videos,
		Pagination: types.Pagination{Limit: filter.Limit, Offset: filter.Offset, Total: total},
	}, nil
}

// GetVideo returns one video, locked when the viewer lacks premium access.
func (s *ContentService) GetVideo(ctx context.Context, id string, viewer types.Viewer) (*types.Video, error) {
	video, err := s.videos.GetVideo(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "video", id)
	}
	videos := []types.Video{*video}
	s.ApplyVideoPaywall(ctx, viewer, videos)
	return &videos[0], nil
}

func validateVideo(v *types.Video) error {
	v.Title = strings.TrimSpace(v.Title)
	if v.Title == "" {
		return apperrors.ValidationFailed("missing_title", "title is required")
	}
	if !v.Category.IsValid() {
		return apperrors.ValidationFailed("invalid_category", fmt.Sprintf("unknown category %q", v.Category))
	}
	v.YouTubeURL = strings.TrimSpace(v.YouTubeURL)
	id := recommend.ExtractYouTubeID(v.YouTubeURL)
	if id == "" {
		return apperrors.ValidationFailed("invalid_youtube_url", "a valid YouTube URL is required")
	}
	v.YouTubeID = id
	v.Keywords = types.NormalizeKeywords(v.Keywords)
	return nil
}

// CreateVideo validates and stores a new video.
func (s *ContentService) CreateVideo(ctx context.Context, input types.VideoInput) (*types.Video, error) {
	now := s.now().UTC()
	video := &types.Video{
		Title:       input.Title,
		Summary:     input.Summary,
		Description: input.Description,
		Category:    input.Category,
		Keywords:    input.Keywords,
		YouTubeURL:  input.YouTubeURL,
		Thumbnail:   input.Thumbnail,
		ImageURL:    input.ImageURL,
		IsPremium:   input.IsPremium,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := validateVideo(video); err != nil {
		return nil, err
	}
	if err := s.videos.CreateVideo(ctx, video); err != nil {
		return nil, mapStoreError(err, "video", video.Title)
	}
	s.contentChanged(ctx, types.ActivityContentCreated, types.ContentKindVideo, video.ID, video.Title)
	return video, nil
}

// UpdateVideo applies a partial update.
func (s *ContentService) UpdateVideo(ctx context.Context, id string, update types.VideoUpdate) (*types.Video, error) {
	video, err := s.videos.GetVideo(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "video", id)
	}
	if update.Title != nil {
		video.Title = *update.Title
	}
	if update.Summary != nil {
		video.Summary = *update.Summary
	}
	if update.Description != nil {
		video.Description = *update.Description
	}
	if update.Category != nil {
		video.Category = *update.Category
	}
	if update.Keywords != nil {
		video.Keywords = update.Keywords
	}
	if update.YouTubeURL != nil {
		video.YouTubeURL = *update.YouTubeURL
	}
	if update.Thumbnail != nil {
		video.Thumbnail = *update.Thumbnail
	}
	if update.ImageURL != nil {
		video.ImageURL = *update.ImageURL
	}
	if update.IsPremium != nil {
		video.IsPremium = *update.IsPremium
	}
	if err := validateVideo(video); err != nil {
		return nil, err
	}
	video.UpdatedAt = s.now().UTC()

	if err := s.videos.UpdateVideo(ctx, video); err != nil {
		return nil, mapStoreError(err, "video", id)
	}
	s.contentChanged(ctx, types.ActivityContentUpdated, types.ContentKindVideo, video.ID, video.Title)
	return video, nil
}

// DeleteVideo removes a video.
func (s *ContentService) DeleteVideo(ctx context.Context, id string) error {
	if err := s.videos.DeleteVideo(ctx, id); err != nil {
		return mapStoreError(err, "video", id)
	}
	s.contentChanged(ctx, types.ActivityContentDeleted, types.ContentKindVideo, id, "")
	return nil
}

// ListBlogs returns a page of blog posts, newest first. Content bodies of
// premium posts are stripped for free viewers.
func (s *ContentService) ListBlogs(ctx context.Context, filter types.ContentFilter, viewer types.Viewer) (*types.ContentList[types.Blog], error) {
	filter, err := normalizeFilter(filter)
	if err != nil {
		return nil, err
	}
	blogs, total, err := s.blogs.ListBlogs(ctx, filter)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	if blogs == nil {
		blogs = []types.Blog{}
	}
	access := &viewerPremium{svc: s, viewer: viewer}
	for i := range blogs {
		if blogs[i].IsPremium && !access.get(ctx) {
			lockBlog(&blogs[i])
		}
	}
	return &types.ContentList[types.Blog]{
		Items:      blogs,
		Pagination: types.Pagination{Limit: filter.Limit, Offset: filter.Offset, Total: total},
	}, nil
}

// GetBlog returns one post, locked when the viewer lacks premium access.
func (s *ContentService) GetBlog(ctx context.Context, id string, viewer types.Viewer) (*types.Blog, error) {
	blog, err := s.blogs.GetBlog(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "blog", id)
	}
	access := &viewerPremium{svc: s, viewer: viewer}
	if blog.IsPremium && !access.get(ctx) {
		lockBlog(blog)
	}
	return blog, nil
}

func validateBlog(b *types.Blog) error {
	b.Title = strings.TrimSpace(b.Title)
	if b.Title == "" {
		return apperrors.ValidationFailed("missing_title", "title is required")
	}
	if !b.Category.IsValid() {
		return apperrors.ValidationFailed("invalid_category", fmt.Sprintf("unknown category %q", b.Category))
	}
	if strings.TrimSpace(b.Content) == "" {
		return apperrors.ValidationFailed("missing_content", "content is required")
	}
	b.Keywords = types.NormalizeKeywords(b.Keywords)
	return nil
}

// CreateBlog validates and stores a new post.
func (s *ContentService) CreateBlog(ctx context.Context, input types.BlogInput) (*types.Blog, error) {
	now := s.now().UTC()
	blog := &types.Blog{
		Title:     input.Title,
		Summary:   input.Summary,
		Content:   input.Content,
		Category:  input.Category,
		Keywords:  input.Keywords,
		ImageURL:  input.ImageURL,
		IsPremium: input.IsPremium,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := validateBlog(blog); err != nil {
		return nil, err
	}
	if err := s.blogs.CreateBlog(ctx, blog); err != nil {
		return nil, mapStoreError(err, "blog", blog.Title)
	}
	s.contentChanged(ctx, types.ActivityContentCreated, types.ContentKindBlog, blog.ID, blog.Title)
	return blog, nil
}

// UpdateBlog applies a partial update.
func (s *ContentService) UpdateBlog(ctx context.Context, id string, update types.BlogUpdate) (*types.Blog, error) {
	blog, err := s.blogs.GetBlog(ctx, id)
	if err != nil {
		return nil, mapStoreError(err, "blog", id)
	}
	if update.Title != nil {
		blog.Title = *update.Title
	}
	if update.Summary != nil {
		blog.Summary = *update.Summary
	}
	if update.Content != nil {
		blog.Content = *update.Content
	}
	if update.Category != nil {
		blog.Category = *update.Category
	}
	if update.Keywords != nil {
		blog.Keywords = update.Keywords
	}
	if update.ImageURL != nil {
		blog.ImageURL = *update.ImageURL
	}
	if update.IsPremium != nil {
		blog.IsPremium = *update.IsPremium
	}
	if err := validateBlog(blog); err != nil {
		return nil, err
	}
	blog.UpdatedAt = s.now().UTC()

	if err := s.blogs.UpdateBlog(ctx, blog); err != nil {
		return nil, mapStoreError(err, "blog", id)
	}
	s.contentChanged(ctx, types.ActivityContentUpdated, types.ContentKindBlog, blog.ID, blog.Title)
	return blog, nil
}

// DeleteBlog removes a post.
func (s *ContentService) DeleteBlog(ctx context.Context, id string) error {
	if err := s.blogs.DeleteBlog(ctx, id); err != nil {
		return mapStoreError(err, "blog", id)
	}
	s.contentChanged(ctx, types.ActivityContentDeleted, types.ContentKindBlog, id, "")
	return nil
}

// RecordView counts a view and returns the new total. Signed-in video
// viewers also get a history row, which feeds personalized recommendations.
func (s *ContentService) RecordView(ctx context.Context, kind types.ContentKind, id string, viewer types.Viewer) (int64, error) {
	var (
		views        int64
		err          error
		activityType types.ActivityType
	)
	switch kind {
	case types.ContentKindVideo:
		views, err = s.videos.IncrementViews(ctx, id)
		activityType = types.ActivityVideoViewed
	case types.ContentKindBlog:
		views, err = s.blogs.IncrementViews(ctx, id)
		activityType = types.ActivityBlogViewed
	default:
		return 0, apperrors.ValidationFailed("invalid_kind", fmt.Sprintf("unknown content kind %q", kind))
	}
	if err != nil {
		return 0, mapStoreError(err, string(kind), id)
	}

	now := s.now().UTC()
	if kind == types.ContentKindVideo && viewer.Authenticated() && s.history != nil {
		if err := s.history.RecordView(ctx, viewer.UserID, id, now); err != nil {
			s.logger.Warnw("Failed to record view history", "userID", viewer.UserID, "videoID", id, "error", err)
		}
	}

	events.Emit(ctx, s.publisher, types.Activity{
		Type:      activityType,
		UserID:    viewer.UserID,
		ContentID: id,
		Kind:      kind,
		Timestamp: now,
		Metadata:  map[string]interface{}{"views": views},
	})
	return views, nil
}

// UploadBlogImage validates an image and stores it under
// blog/{yyyy}/{mm}/{uuid}.{ext}.
func (s *ContentService) UploadBlogImage(ctx context.Context, r io.Reader) (*types.UploadedImage, error) {
	if s.files == nil {
		return nil, apperrors.InternalServerError("file storage is not configured")
	}
	img, err := storage.ReadImage(r, s.maxUpload)
	if err != nil {
		return nil, err
	}

	key := storage.BlogImageKey(s.now(), img.Extension)
	if err := s.files.Save(ctx, key, img.Reader(), img.Size(), img.ContentType); err != nil {
		s.logger.Errorw("Failed to store image", "key", key, "error", err)
		return nil, apperrors.ExternalServiceError("file storage", err)
	}
	url, err := s.files.URL(ctx, key)
	if err != nil {
		return nil, apperrors.ExternalServiceError("file storage", err)
	}

	s.logger.Infow("Blog image uploaded", "key", key, "size", img.Size(), "contentType", img.ContentType)
	return &types.UploadedImage{
		Path:        key,
		URL:         url,
		ContentType: img.ContentType,
		Size:        img.Size(),
	}, nil
}

func (s *ContentService) contentChanged(ctx context.Context, activityType types.ActivityType, kind types.ContentKind, id, title string) {
	if kind == types.ContentKindVideo && s.cache != nil {
		s.cache.InvalidateCache(ctx)
	}
	events.Emit(ctx, s.publisher, types.Activity{
		Type:      activityType,
		ContentID: id,
		Kind:      kind,
		Title:     title,
		Timestamp: s.now().UTC(),
	})
}
