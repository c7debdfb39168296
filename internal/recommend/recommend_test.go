package recommend

import (
	"math"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var now = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func daysAgo(d float64) *time.Time {
	t := now.Add(-time.Duration(d * float64(24*time.Hour)))
	return &t
}

func views(n int64) *int64 { return &n }

func TestScore(t *testing.T) {
	current := Video{
		ID:       "cur",
		Title:    "The Shadow Self in Dreams",
		Keywords: []string{"Shadow", "dreams", "Jung"},
		Category: "Journals",
	}

	tests := []struct {
		name      string
		candidate Video
		want      float64
	}{
		{
			name:      "nothing in common",
			candidate: Video{ID: "a", Title: "Cooking", Category: "Books", CreatedAt: daysAgo(30)},
			want:      0,
		},
		{
			name:      "same category",
			candidate: Video{ID: "a", Title: "x", Category: "Journals"},
			want:      30,
		},
		{
			name:      "category falls back to tab",
			candidate: Video{ID: "a", Title: "x", Tab: "Journals"},
			want:      30,
		},
		{
			name:      "keywords are case insensitive",
			candidate: Video{ID: "a", Title: "x", Keywords: []string{"shadow", "DREAMS"}},
			want:      30,
		},
		{
			name:      "duplicate candidate keywords count once",
			candidate: Video{ID: "a", Title: "x", Keywords: []string{"shadow", "dreams", "jung", "jung"}},
			want:      45,
		},
		{
			name:      "title words longer than two characters",
			candidate: Video{ID: "a", Title: "shadow of the dreams in"},
			want:      15,
		},
		{
			name:      "recent candidate",
			candidate: Video{ID: "a", Title: "x", CreatedAt: daysAgo(7.9)},
			want:      10,
		},
		{
			name:      "eight days is not recent",
			candidate: Video{ID: "a", Title: "x", CreatedAt: daysAgo(8)},
			want:      0,
		},
		{
			name:      "added date used when created at missing",
			candidate: Video{ID: "a", Title: "x", AddedDate: daysAgo(1)},
			want:      10,
		},
		{
			name:      "zero views add nothing",
			candidate: Video{ID: "a", Title: "x", ViewCount: views(0)},
			want:      0,
		},
		{
			name:      "views are logarithmic",
			candidate: Video{ID: "a", Title: "x", ViewCount: views(9)},
			want:      math.Log(10) * 5,
		},
		{
			name:      "view bonus is capped",
			candidate: Video{ID: "a", Title: "x", ViewCount: views(1_000_000)},
			want:      20,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, Score(current, tt.candidate, now), 1e-9)
		})
	}
}

func TestScore_KeywordCapWithFourMatches(t *testing.T) {
	current := Video{Title: "a", Keywords: []string{"a1", "b1", "c1", "d1"}}
	candidate := Video{Title: "b", Keywords: []string{"A1", "B1", "C1", "D1"}}
	assert.Equal(t, 50.0, Score(current, candidate, now))
}

func TestScore_EmptyCategoriesDoNotMatch(t *testing.T) {
	assert.Equal(t, 0.0, Score(Video{Title: "a"}, Video{Title: "b"}, now))
}

func TestRankSimilar(t *testing.T) {
	current := Video{ID: "cur", Title: "Anima and Animus", Category: "Journals", Keywords: []string{"anima"}}
	pool := []Video{
		{ID: "low", Title: "x", Category: "Books"},
		{ID: "cur", Title: "Anima and Animus", Category: "Journals", Keywords: []string{"anima"}},
		{ID: "mid", Title: "x", Category: "Journals"},
		{ID: "high", Title: "anima", Category: "Journals", Keywords: []string{"ANIMA"}},
		{ID: "tie", Title: "y", Category: "Journals"},
	}

	got := RankSimilar(current, pool, 3, now)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"high", "mid", "tie"}, ids(got))
	for _, v := range got {
		assert.NotEqual(t, "cur", v.ID)
	}
}

func TestRankSimilar_DefaultLimitAndShortPool(t *testing.T) {
	current := Video{ID: "cur", Title: "x"}
	pool := make([]Video, 0, 8)
	for _, id := range []string{"a", "b", "c", "d", "e", "f", "g"} {
		pool = append(pool, Video{ID: id, Title: id})
	}
	got := RankSimilar(current, pool, 0, now)
	assert.Equal(t, []string{"a", "b", "c", "d", "e"}, ids(got))

	got = RankSimilar(current, pool[:2], 10, now)
	assert.Len(t, got, 2)

	assert.Empty(t, RankSimilar(current, nil, 5, now))
}

func ids(vs []Video) []string {
	out := make([]string, len(vs))
	for i, v := range vs {
		out[i] = v.ID
	}
	return out
}
