// Package recommend scores videos against a reference video or a viewer's
// history. It performs no I/O; callers load the candidate rows and pass the
// current time explicitly.
package recommend

import (
	"math"
	"sort"
	"strings"
	"time"
	"unicode/utf8"
)

// DefaultLimit is used when a caller asks for a non-positive number of results.
const DefaultLimit = 5

// Video is the subset of a content row the scorer looks at.
type Video struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Summary     string     `json:"summary,omitempty"`
	Description string     `json:"description,omitempty"`
	Keywords    []string   `json:"keywords"`
	Category    string     `json:"category,omitempty"`
	Tab         string     `json:"tab,omitempty"`
	YouTubeID   string     `json:"youtube_id,omitempty"`
	YouTubeURL  string     `json:"youtube_url,omitempty"`
	Thumbnail   string     `json:"thumbnail,omitempty"`
	ImageURL    string     `json:"image_url,omitempty"`
	CreatedAt   *time.Time `json:"created_at,omitempty"`
	AddedDate   *time.Time `json:"added_date,omitempty"`
	ViewCount   *int64     `json:"view_count,omitempty"`
	IsPremium   bool       `json:"is_premium"`
}

// EffectiveCategory returns Category, falling back to the legacy Tab field.
func (v Video) EffectiveCategory() string {
	if v.Category != "" {
		return v.Category
	}
	return v.Tab
}

func (v Video) publishedAt() *time.Time {
	if v.CreatedAt != nil {
		return v.CreatedAt
	}
	return v.AddedDate
}

// Scored pairs a video with its score.
type Scored struct {
	Video Video
	Score float64
}

// Weights holds the additive bonuses used by Score and ScorePersonalized.
type Weights struct {
	CategoryMatch     float64
	KeywordMatch      float64
	KeywordCap        float64
	TitleWord         float64
	RecentBonus       float64
	RecentDays        int
	ViewFactor        float64
	ViewCap           float64
	PreferredCategory float64
	PreferredKeyword  float64
}

// DefaultWeights returns the production weights.
func DefaultWeights() Weights {
	return Weights{
		CategoryMatch:     30,
		KeywordMatch:      15,
		KeywordCap:        50,
		TitleWord:         5,
		RecentBonus:       10,
		RecentDays:        7,
		ViewFactor:        5,
		ViewCap:           20,
		PreferredCategory: 30,
		PreferredKeyword:  10,
	}
}

// Score rates how related candidate is to current using DefaultWeights.
func Score(current, candidate Video, now time.Time) float64 {
	return DefaultWeights().Score(current, candidate, now)
}

// Score rates how related candidate is to current.
func (w Weights) Score(current, candidate Video, now time.Time) float64 {
	var score float64

	cur, cand := current.EffectiveCategory(), candidate.EffectiveCategory()
	if cur != "" && cand != "" && cur == cand {
		score += w.CategoryMatch
	}

	shared := intersectionSize(lowerSet(current.Keywords), lowerSet(candidate.Keywords))
	score += math.Min(float64(shared)*w.KeywordMatch, w.KeywordCap)

	score += float64(intersectionSize(titleWords(current.Title), titleWords(candidate.Title))) * w.TitleWord

	if published := candidate.publishedAt(); published != nil {
		days := int(math.Floor(now.Sub(*published).Hours() / 24))
		if days <= w.RecentDays {
			score += w.RecentBonus
		}
	}

	if candidate.ViewCount != nil && *candidate.ViewCount > 0 {
		score += math.Min(math.Log(float64(*candidate.ViewCount)+1)*w.ViewFactor, w.ViewCap)
	}

	return score
}

// RankSimilar returns up to limit videos from pool ordered by Score against
// current. current itself is never returned. Equal scores keep pool order.
func RankSimilar(current Video, pool []Video, limit int, now time.Time) []Video {
	w := DefaultWeights()
	scored := make([]Scored, 0, len(pool))
	for _, v := range pool {
		if v.ID == current.ID {
			continue
		}
		scored = append(scored, Scored{Video: v, Score: w.Score(current, v, now)})
	}
	return top(scored, limit)
}

func top(scored []Scored, limit int) []Video {
	if limit <= 0 {
		limit = DefaultLimit
	}
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})
	if len(scored) > limit {
		scored = scored[:limit]
	}
	out := make([]Video, len(scored))
	for i, s := range scored {
		out[i] = s.Video
	}
	return out
}

func lowerSet(words []string) map[string]struct{} {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[strings.ToLower(w)] = struct{}{}
	}
	return set
}

// titleWords splits a title on whitespace and keeps lowercased words longer
// than two characters.
func titleWords(title string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range strings.Fields(strings.ToLower(title)) {
		if utf8.RuneCountInString(w) > 2 {
			set[w] = struct{}{}
		}
	}
	return set
}

func intersectionSize(a, b map[string]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}
	n := 0
	for k := range a {
		if _, ok := b[k]; ok {
			n++
		}
	}
	return n
}
