package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPreferences(t *testing.T) {
	viewed := []Video{
		{Category: "Books", Keywords: []string{"Anima", "myth"}},
		{Category: "Journals", Keywords: []string{"anima", "shadow"}},
		{Category: "Journals", Keywords: []string{"shadow", "Dreams"}},
		{Category: "Fairy Tales", Keywords: []string{"myth", "ANIMA"}},
		{Keywords: []string{"self", "ego", "persona"}},
	}

	prefs := BuildPreferences(viewed)

	assert.Equal(t, map[string]int{"Books": 1, "Journals": 2, "Fairy Tales": 1}, prefs.CategoryCounts)
	assert.Equal(t, 3, prefs.KeywordCounts["anima"])
	assert.Equal(t, 2, prefs.KeywordCounts["shadow"])
	assert.Equal(t, []string{"Journals", "Books"}, prefs.TopCategories)
	assert.Equal(t, []string{"anima", "myth", "shadow", "dreams", "self"}, prefs.TopKeywords)
	assert.False(t, prefs.Empty())
}

func TestBuildPreferences_Empty(t *testing.T) {
	prefs := BuildPreferences(nil)
	assert.True(t, prefs.Empty())
	assert.Empty(t, prefs.TopCategories)
	assert.Empty(t, prefs.TopKeywords)
}

func TestScorePersonalized(t *testing.T) {
	prefs := BuildPreferences([]Video{
		{Category: "Journals", Keywords: []string{"shadow"}},
		{Category: "Journals", Keywords: []string{"shadow", "anima"}},
		{Category: "Books", Keywords: []string{"myth"}},
		{Category: "Fairy Tales"},
	})

	tests := []struct {
		name      string
		candidate Video
		want      float64
	}{
		{"top category", Video{Category: "Journals"}, 60},
		{"second top category", Video{Category: "Books"}, 30},
		{"category outside the top two", Video{Category: "Fairy Tales"}, 0},
		{"keywords weighted by history count", Video{Keywords: []string{"Shadow", "anima", "other"}}, 30},
		{"repeated keyword counts twice", Video{Keywords: []string{"myth", "MYTH"}}, 20},
		{"combined", Video{Category: "Journals", Keywords: []string{"shadow"}}, 80},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ScorePersonalized(tt.candidate, prefs))
		})
	}
}

func TestRankPersonalized(t *testing.T) {
	prefs := BuildPreferences([]Video{
		{Category: "Journals", Keywords: []string{"shadow"}},
	})
	candidates := []Video{
		{ID: "none", Category: "Books"},
		{ID: "kw", Keywords: []string{"shadow"}},
		{ID: "both", Category: "Journals", Keywords: []string{"shadow"}},
		{ID: "cat", Category: "Journals"},
	}

	got := RankPersonalized(candidates, prefs, 3)
	assert.Equal(t, []string{"both", "cat", "kw"}, ids(got))
}
