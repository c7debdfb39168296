package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/jungianjournals/journals-backend/config"
	apperrors "github.com/jungianjournals/journals-backend/errors"
	"github.com/jungianjournals/journals-backend/internal/recommend"
	"github.com/jungianjournals/journals-backend/internal/store"
	"github.com/jungianjournals/journals-backend/logger"
	"github.com/jungianjournals/journals-backend/types"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"go.uber.org/zap"
)

const (
	defaultCandidatePool = 50
	defaultHistorySize   = 10
	defaultMaxLimit      = 20

	pathVector       = "vector"
	pathKeyword      = "keyword"
	pathCached       = "cached"
	pathPersonalized = "personalized"
	pathPopular      = "popular"
)

type recommendationMetrics struct {
	latency   *prometheus.HistogramVec
	fallbacks *prometheus.CounterVec
}

var (
	recMetricsInstance *recommendationMetrics
	recMetricsOnce     sync.Once
	recDefaultRegistry = prometheus.DefaultRegisterer
)

func newRecommendationMetrics() *recommendationMetrics {
	recMetricsOnce.Do(func() {
		factory := promauto.With(recDefaultRegistry)
		recMetricsInstance = &recommendationMetrics{
			latency: factory.NewHistogramVec(prometheus.HistogramOpts{
				Name:    "recommendations_duration_seconds",
				Help:    "Time taken to build a recommendation list",
				Buckets: []float64{.005, .01, .025, .05, .1, .25, .5, 1},
			}, []string{"path"}),
			fallbacks: factory.NewCounterVec(prometheus.CounterOpts{
				Name: "recommendations_fallbacks_total",
				Help: "Recommendations served by a fallback path",
			}, []string{"reason"}),
		}
	})
	return recMetricsInstance
}

func resetRecommendationMetricsForTesting() *prometheus.Registry {
	reg := prometheus.NewRegistry()
	recDefaultRegistry = reg
	recMetricsInstance = nil
	recMetricsOnce = sync.Once{}
	return reg
}

// RecommendationService builds "more like this" and "for you" video lists.
type RecommendationService struct {
	videos  store.VideoStore
	history store.ViewHistoryStore
	matcher VideoMatcher
	cache   *RecommendationCache
	cfg     config.RecommendationConfig
	metrics *recommendationMetrics
	logger  *zap.SugaredLogger
	now     func() time.Time
}

// NewRecommendationService wires the service. matcher and cache may be nil.
func NewRecommendationService(videos store.VideoStore, history store.ViewHistoryStore, matcher VideoMatcher, cache *RecommendationCache, cfg config.RecommendationConfig) *RecommendationService {
	if cfg.CandidatePoolSize <= 0 {
		cfg.CandidatePoolSize = defaultCandidatePool
	}
	if cfg.DefaultLimit <= 0 {
		cfg.DefaultLimit = recommend.DefaultLimit
	}
	if cfg.MaxLimit <= 0 {
		cfg.MaxLimit = defaultMaxLimit
	}
	if cfg.HistorySize <= 0 {
		cfg.HistorySize = defaultHistorySize
	}
	return &RecommendationService{
		videos:  videos,
		history: history,
		matcher: matcher,
		cache:   cache,
		cfg:     cfg,
		metrics: newRecommendationMetrics(),
		logger:  logger.GetLogger().Named("recommend"),
		now:     time.Now,
	}
}

func (s *RecommendationService) normalizeLimit(limit int) int {
	if limit <= 0 {
		return s.cfg.DefaultLimit
	}
	if limit > s.cfg.MaxLimit {
		return s.cfg.MaxLimit
	}
	return limit
}

func (s *RecommendationService) observe(path string, start time.Time) {
	s.metrics.latency.WithLabelValues(path).Observe(time.Since(start).Seconds())
}

// Similar returns videos related to videoID. With an embedding the vector
// matcher is tried first; keyword ranking is the fallback and the only
// cached path.
func (s *RecommendationService) Similar(ctx context.Context, videoID string, embedding []float32, limit int) ([]types.Video, error) {
	start := time.Now()
	limit = s.normalizeLimit(limit)

	if len(embedding) > 0 {
		if videos, ok := s.vectorMatches(ctx, videoID, embedding, limit); ok {
			s.observe(pathVector, start)
			return videos, nil
		}
	} else if cached, ok := s.cache.GetSimilar(ctx, videoID, limit); ok {
		s.observe(pathCached, start)
		return cached, nil
	}

	current, err := s.videos.GetVideo(ctx, videoID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperrors.NotFound("video", videoID)
		}
		return nil, apperrors.NewDatabaseError(err)
	}

	pool, err := s.videos.ListCandidates(ctx, videoID, s.cfg.CandidatePoolSize)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	ranked := recommend.RankSimilar(toRecommendVideo(*current), toRecommendVideos(pool), limit, s.now())
	result := pickRanked(ranked, pool)

	if len(embedding) == 0 {
		s.cache.SetSimilar(ctx, videoID, limit, result)
	}
	s.observe(pathKeyword, start)
	return result, nil
}

func (s *RecommendationService) vectorMatches(ctx context.Context, videoID string, embedding []float32, limit int) ([]types.Video, bool) {
	if s.matcher == nil || !s.cfg.VectorEnabled {
		s.metrics.fallbacks.WithLabelValues("vector_disabled").Inc()
		return nil, false
	}
	matches, err := s.matcher.MatchVideos(ctx, embedding, limit, videoID)
	if err != nil {
		s.logger.Warnw("Vector match failed, falling back to keyword ranking", "videoID", videoID, "error", err)
		s.metrics.fallbacks.WithLabelValues("vector_error").Inc()
		return nil, false
	}
	if len(matches) == 0 {
		s.metrics.fallbacks.WithLabelValues("vector_empty").Inc()
		return nil, false
	}
	for i := range matches {
		decorateVideo(&matches[i])
	}
	return matches, true
}

// Personalized ranks unseen videos by the viewer's recent history. Viewers
// without history get the most viewed videos.
func (s *RecommendationService) Personalized(ctx context.Context, userID string, limit int) ([]types.Video, error) {
	start := time.Now()
	limit = s.normalizeLimit(limit)

	viewedIDs, err := s.history.RecentVideoIDs(ctx, userID, s.cfg.HistorySize)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	if len(viewedIDs) == 0 {
		s.metrics.fallbacks.WithLabelValues("no_history").Inc()
		return s.popular(ctx, limit, start)
	}

	viewed, err := s.videos.GetVideosByIDs(ctx, viewedIDs)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	prefs := recommend.BuildPreferences(toRecommendVideos(viewed))
	if prefs.Empty() {
		s.metrics.fallbacks.WithLabelValues("no_preferences").Inc()
		return s.popular(ctx, limit, start)
	}

	candidates, err := s.videos.ListPreferred(ctx, viewedIDs, prefs.TopCategories, prefs.TopKeywords, 2*limit)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	ranked := recommend.RankPersonalized(toRecommendVideos(candidates), prefs, limit)
	s.observe(pathPersonalized, start)
	return pickRanked(ranked, candidates), nil
}

func (s *RecommendationService) popular(ctx context.Context, limit int, start time.Time) ([]types.Video, error) {
	videos, err := s.videos.ListPopular(ctx, limit)
	if err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}
	for i := range videos {
		decorateVideo(&videos[i])
	}
	s.observe(pathPopular, start)
	return videos, nil
}

// InvalidateCache drops cached similar lists after a content change.
func (s *RecommendationService) InvalidateCache(ctx context.Context) {
	s.cache.Invalidate(ctx)
}

// pickRanked maps ranked scorer rows back to the full rows, in ranked order.
func pickRanked(ranked []recommend.Video, rows []types.Video) []types.Video {
	byID := make(map[string]types.Video, len(rows))
	for _, v := range rows {
		byID[v.ID] = v
	}
	out := make([]types.Video, 0, len(ranked))
	for _, r := range ranked {
		v, ok := byID[r.ID]
		if !ok {
			continue
		}
		decorateVideo(&v)
		out = append(out, v)
	}
	return out
}

// decorateVideo fills the computed thumbnail and normalizes keywords.
func decorateVideo(v *types.Video) {
	v.Thumbnail = recommend.Thumbnail(toRecommendVideo(*v))
	v.Keywords = recommend.ParseKeywords(v.Keywords)
	if v.Keywords == nil {
		v.Keywords = []string{}
	}
}

func toRecommendVideo(v types.Video) recommend.Video {
	rv := recommend.Video{
		ID:          v.ID,
		Title:       v.Title,
		Summary:     v.Summary,
		Description: v.Description,
		Keywords:    v.Keywords,
		Category:    string(v.Category),
		Tab:         v.Tab,
		YouTubeID:   v.YouTubeID,
		YouTubeURL:  v.YouTubeURL,
		Thumbnail:   v.Thumbnail,
		ImageURL:    v.ImageURL,
		IsPremium:   v.IsPremium,
	}
	if !v.CreatedAt.IsZero() {
		created := v.CreatedAt
		rv.CreatedAt = &created
	}
	views := v.ViewCount
	rv.ViewCount = &views
	return rv
}

func toRecommendVideos(videos []types.Video) []recommend.Video {
	out := make([]recommend.Video, len(videos))
	for i, v := range videos {
		out[i] = toRecommendVideo(v)
	}
	return out
}
