package recommend

import (
	"sort"
	"strings"
)

const (
	topCategoryCount = 2
	topKeywordCount  = 5
)

// Preferences summarizes what a viewer has watched recently.
type Preferences struct {
	CategoryCounts map[string]int
	KeywordCounts  map[string]int
	TopCategories  []string
	TopKeywords    []string
}

// Empty reports whether the history produced no signal at all.
func (p Preferences) Empty() bool {
	return len(p.TopCategories) == 0 && len(p.TopKeywords) == 0
}

// BuildPreferences counts categories and lowercased keywords over viewed.
// Ties in the top lists are broken by first appearance.
func BuildPreferences(viewed []Video) Preferences {
	prefs := Preferences{
		CategoryCounts: make(map[string]int),
		KeywordCounts:  make(map[string]int),
	}
	var categoryOrder, keywordOrder []string

	for _, v := range viewed {
		for _, k := range v.Keywords {
			k = strings.ToLower(k)
			if _, seen := prefs.KeywordCounts[k]; !seen {
				keywordOrder = append(keywordOrder, k)
			}
			prefs.KeywordCounts[k]++
		}
		if v.Category != "" {
			if _, seen := prefs.CategoryCounts[v.Category]; !seen {
				categoryOrder = append(categoryOrder, v.Category)
			}
			prefs.CategoryCounts[v.Category]++
		}
	}

	prefs.TopCategories = topByCount(categoryOrder, prefs.CategoryCounts, topCategoryCount)
	prefs.TopKeywords = topByCount(keywordOrder, prefs.KeywordCounts, topKeywordCount)
	return prefs
}

func topByCount(order []string, counts map[string]int, n int) []string {
	sorted := make([]string, len(order))
	copy(sorted, order)
	sort.SliceStable(sorted, func(i, j int) bool {
		return counts[sorted[i]] > counts[sorted[j]]
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}
	return sorted
}

// ScorePersonalized rates candidate against a viewer's preferences.
func ScorePersonalized(candidate Video, prefs Preferences) float64 {
	return DefaultWeights().ScorePersonalized(candidate, prefs)
}

// ScorePersonalized rates candidate against a viewer's preferences. Every
// keyword occurrence on the candidate that the viewer has seen before adds
// PreferredKeyword times its history count.
func (w Weights) ScorePersonalized(candidate Video, prefs Preferences) float64 {
	var score float64
	for _, c := range prefs.TopCategories {
		if c == candidate.Category {
			score += w.PreferredCategory * float64(prefs.CategoryCounts[c])
			break
		}
	}
	for _, k := range candidate.Keywords {
		if n := prefs.KeywordCounts[strings.ToLower(k)]; n > 0 {
			score += w.PreferredKeyword * float64(n)
		}
	}
	return score
}

// RankPersonalized returns up to limit candidates ordered by ScorePersonalized.
func RankPersonalized(candidates []Video, prefs Preferences, limit int) []Video {
	w := DefaultWeights()
	scored := make([]Scored, len(candidates))
	for i, v := range candidates {
		scored[i] = Scored{Video: v, Score: w.ScorePersonalized(v, prefs)}
	}
	return top(scored, limit)
}
