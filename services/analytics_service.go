package services

import (
	"context"
	"sort"
	"strings"
	"time"
	"unicode/utf8"

	apperrors "github.com/jungianjournals/journals-backend/errors"
	"github.com/jungianjournals/journals-backend/internal/store"
	"github.com/jungianjournals/journals-backend/logger"
	"github.com/jungianjournals/journals-backend/types"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const (
	topContentLimit     = 10
	topTitleMaxRunes    = 30
	recentActivityLimit = 5
	dayLayout           = "2006-01-02"
)

var localeCountries = map[string]string{
	"ko": "KR",
	"en": "US",
	"ja": "JP",
}

// AnalyticsService aggregates the admin dashboard figures.
type AnalyticsService struct {
	videos    store.VideoStore
	blogs     store.BlogStore
	history   store.ViewHistoryStore
	subs      store.SubscriptionStore
	directory UserDirectory
	publisher types.ActivityPublisher
	logger    *zap.SugaredLogger
	now       func() time.Time
}

func NewAnalyticsService(videos store.VideoStore, blogs store.BlogStore, history store.ViewHistoryStore,
	subs store.SubscriptionStore, directory UserDirectory, publisher types.ActivityPublisher) *AnalyticsService {
	return &AnalyticsService{
		videos:    videos,
		blogs:     blogs,
		history:   history,
		subs:      subs,
		directory: directory,
		publisher: publisher,
		logger:    logger.GetLogger().Named("analytics"),
		now:       time.Now,
	}
}

// ValidPeriod reports whether days is one of the dashboard periods.
func ValidPeriod(days int) bool {
	return days == 7 || days == 30 || days == 90
}

func startOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// Overview collects the dashboard numbers for the last periodDays days,
// today included. The user directory is best effort: when Supabase is
// unreachable the user figures are zero.
func (s *AnalyticsService) Overview(ctx context.Context, periodDays int) (*types.AnalyticsOverview, error) {
	if periodDays == 0 {
		periodDays = 7
	}
	if !ValidPeriod(periodDays) {
		return nil, apperrors.ValidationFailed("invalid_period", "period must be 7, 30 or 90 days")
	}

	now := s.now().UTC()
	since := startOfDay(now).AddDate(0, 0, -(periodDays - 1))
	overview := &types.AnalyticsOverview{PeriodDays: periodDays}

	var (
		visits    []types.DailyCount
		topVideos []types.TopContent
		topBlogs  []types.TopContent
		users     []types.AuthUser
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		overview.TotalVideoViews, err = s.videos.TotalViews(gctx)
		return err
	})
	g.Go(func() (err error) {
		overview.TotalBlogViews, err = s.blogs.TotalViews(gctx)
		return err
	})
	g.Go(func() (err error) {
		visits, err = s.history.VisitsByDate(gctx, since)
		return err
	})
	g.Go(func() (err error) {
		topVideos, err = s.videos.TopByViews(gctx, topContentLimit)
		return err
	})
	g.Go(func() (err error) {
		topBlogs, err = s.blogs.TopByViews(gctx, topContentLimit)
		return err
	})
	g.Go(func() error {
		if s.directory == nil {
			return nil
		}
		list, err := s.directory.ListUsers(gctx)
		if err != nil {
			s.logger.Warnw("User directory unavailable, reporting zero users", "error", err)
			return nil
		}
		users = list
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, apperrors.NewDatabaseError(err)
	}

	overview.TotalUsers = len(users)
	overview.VisitsByDate = fillDays(since, periodDays, visits)
	overview.TopContent = mergeTopContent(topVideos, topBlogs, topContentLimit)
	overview.UserGrowth = cumulativeGrowth(since, periodDays, users)
	overview.RecentActivities = s.recentActivities(ctx)
	return overview, nil
}

func (s *AnalyticsService) recentActivities(ctx context.Context) []types.Activity {
	if s.publisher == nil {
		return []types.Activity{}
	}
	recent, err := s.publisher.Recent(ctx, recentActivityLimit)
	if err != nil {
		s.logger.Warnw("Failed to load recent activities", "error", err)
		return []types.Activity{}
	}
	if recent == nil {
		recent = []types.Activity{}
	}
	return recent
}

// fillDays expands sparse per-day counts to one entry per day.
func fillDays(since time.Time, days int, counts []types.DailyCount) []types.DailyCount {
	byDate := make(map[string]int64, len(counts))
	for _, c := range counts {
		byDate[c.Date] += c.Count
	}
	out := make([]types.DailyCount, days)
	for i := range out {
		date := since.AddDate(0, 0, i).Format(dayLayout)
		out[i] = types.DailyCount{Date: date, Count: byDate[date]}
	}
	return out
}

// cumulativeGrowth counts, for each day of the period, the users that had
// signed up by the end of that day.
func cumulativeGrowth(since time.Time, days int, users []types.AuthUser) []types.DailyCount {
	out := make([]types.DailyCount, days)
	created := make([]time.Time, 0, len(users))
	for _, u := range users {
		created = append(created, u.CreatedAt.UTC())
	}
	sort.Slice(created, func(i, j int) bool { return created[i].Before(created[j]) })

	n := 0
	for i := range out {
		day := since.AddDate(0, 0, i)
		end := day.AddDate(0, 0, 1)
		for n < len(created) && created[n].Before(end) {
			n++
		}
		out[i] = types.DailyCount{Date: day.Format(dayLayout), Count: int64(n)}
	}
	return out
}

func truncateTitle(title string) string {
	if utf8.RuneCountInString(title) <= topTitleMaxRunes {
		return title
	}
	runes := []rune(title)
	return string(runes[:topTitleMaxRunes]) + "..."
}

func mergeTopContent(videos, blogs []types.TopContent, limit int) []types.TopContent {
	merged := make([]types.TopContent, 0, len(videos)+len(blogs))
	for _, v := range videos {
		v.Kind = types.ContentKindVideo
		merged = append(merged, v)
	}
	for _, b := range blogs {
		b.Kind = types.ContentKindBlog
		merged = append(merged, b)
	}
	sort.SliceStable(merged, func(i, j int) bool { return merged[i].Views > merged[j].Views })
	if len(merged) > limit {
		merged = merged[:limit]
	}
	for i := range merged {
		merged[i].Title = truncateTitle(merged[i].Title)
	}
	return merged
}

// CountryFromLocale maps the metadata locale to a country code.
func CountryFromLocale(locale string) string {
	locale = strings.ToLower(strings.TrimSpace(locale))
	if i := strings.IndexAny(locale, "-_"); i >= 0 {
		locale = locale[:i]
	}
	if country, ok := localeCountries[locale]; ok {
		return country
	}
	return "XX"
}

func displayName(u types.AuthUser) string {
	if name := u.MetadataString("full_name"); name != "" {
		return name
	}
	return u.MetadataString("name")
}

// Users lists Supabase accounts with their premium state, newest first.
// Stats always describe the whole user base, not the filtered rows.
func (s *AnalyticsService) Users(ctx context.Context, filter types.UserFilter) (*types.AdminUserList, error) {
	status := strings.ToLower(strings.TrimSpace(filter.Status))
	switch status {
	case "", "all", "premium", "free":
	default:
		return nil, apperrors.ValidationFailed("invalid_status", "status must be premium, free or all")
	}
	if s.directory == nil {
		return nil, apperrors.InternalServerError("user directory is not configured")
	}

	authUsers, err := s.directory.ListUsers(ctx)
	if err != nil {
		return nil, apperrors.ExternalServiceError("supabase auth", err)
	}

	now := s.now().UTC()
	activeUntil := map[string]time.Time{}
	if s.subs != nil {
		if active, err := s.subs.ActiveUntil(ctx, now); err != nil {
			s.logger.Warnw("Failed to load active subscriptions, using metadata only", "error", err)
		} else if active != nil {
			activeUntil = active
		}
	}

	today := startOfDay(now)
	weekAgo := now.AddDate(0, 0, -7)
	search := strings.ToLower(strings.TrimSpace(filter.Search))

	list := &types.AdminUserList{Users: []types.AdminUser{}}
	for _, u := range authUsers {
		user := types.AdminUser{
			ID:         u.ID,
			Email:      u.Email,
			Name:       displayName(u),
			Country:    CountryFromLocale(u.MetadataString("locale")),
			CreatedAt:  u.CreatedAt,
			LastSignIn: u.LastSignInAt,
		}
		if until, ok := activeUntil[u.ID]; ok {
			end := until
			user.ExpiresAt = &end
			user.IsPremium = true
		}
		if u.AppMetadataBool(MetadataPremiumKey) {
			user.IsPremium = true
		}

		list.Stats.Total++
		if user.IsPremium {
			list.Stats.Premium++
		}
		if u.LastSignInAt != nil && !u.LastSignInAt.Before(today) {
			list.Stats.ActiveToday++
		}
		if u.CreatedAt.After(weekAgo) {
			list.Stats.NewThisWeek++
		}

		if search != "" && !strings.Contains(strings.ToLower(user.Email), search) &&
			!strings.Contains(strings.ToLower(user.Name), search) {
			continue
		}
		if (status == "premium" && !user.IsPremium) || (status == "free" && user.IsPremium) {
			continue
		}
		list.Users = append(list.Users, user)
	}

	sort.SliceStable(list.Users, func(i, j int) bool {
		return list.Users[i].CreatedAt.After(list.Users[j].CreatedAt)
	})
	return list, nil
}
