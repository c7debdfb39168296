package types

import (
	"strings"
	"time"
)

// ContentCategory is the shelf a video or blog post is published under.
type ContentCategory string

const (
	CategoryJournals    ContentCategory = "Journals"
	CategoryBooks       ContentCategory = "Books"
	CategoryFairyTales  ContentCategory = "Fairy Tales"
	DefaultContentLimit                 = 20
	MaxContentLimit                     = 100
)

// IsValid reports whether c is one of the published categories.
func (c ContentCategory) IsValid() bool {
	switch c {
	case CategoryJournals, CategoryBooks, CategoryFairyTales:
		return true
	}
	return false
}

// ContentKind distinguishes the two content tables.
type ContentKind string

const (
	ContentKindVideo ContentKind = "video"
	ContentKindBlog  ContentKind = "blog"
)

// Video is a row of video_content.
type Video struct {
	ID          string          `json:"id"`
	Title       string          `json:"title"`
	Summary     string          `json:"summary"`
	Description string          `json:"description,omitempty"`
	Category    ContentCategory `json:"category"`
	Tab         string          `json:"tab,omitempty"`
	Keywords    []string        `json:"keywords"`
	YouTubeURL  string          `json:"youtube_url,omitempty"`
	YouTubeID   string          `json:"youtube_id,omitempty"`
	Thumbnail   string          `json:"thumbnail,omitempty"`
	ImageURL    string          `json:"image_url,omitempty"`
	IsPremium   bool            `json:"is_premium"`
	ViewCount   int64           `json:"view_count"`
	Locked      bool            `json:"locked,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Blog is a row of blog_content.
type Blog struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Summary   string          `json:"summary"`
	Content   string          `json:"content,omitempty"`
	Category  ContentCategory `json:"category"`
	Keywords  []string        `json:"keywords"`
	ImageURL  string          `json:"image_url,omitempty"`
	IsPremium bool            `json:"is_premium"`
	Views     int64           `json:"views"`
	Locked    bool            `json:"locked,omitempty"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// ContentFilter narrows list queries.
type ContentFilter struct {
	Category ContentCategory
	// Search matches title, summary or any keyword, case-insensitively.
	Search string
	// Keyword keeps rows tagged with exactly this keyword.
	Keyword string
	Limit   int
	Offset  int
}

// KeywordCount is a keyword and the number of videos tagged with it.
type KeywordCount struct {
	Keyword string `json:"keyword"`
	Count   int    `json:"count"`
}

// KeywordIndex groups the video keywords of a category by initial letter.
// Every letter A-Z is present, possibly with an empty list.
type KeywordIndex struct {
	Category ContentCategory           `json:"category,omitempty"`
	Letters  map[string][]KeywordCount `json:"letters"`
}

// VideoInput carries the editable fields of a video.
type VideoInput struct {
	Title       string          `json:"title" binding:"required"`
	Summary     string          `json:"summary"`
	Description string          `json:"description"`
	Category    ContentCategory `json:"category" binding:"required"`
	Keywords    []string        `json:"keywords"`
	YouTubeURL  string          `json:"youtube_url" binding:"required"`
	Thumbnail   string          `json:"thumbnail"`
	ImageURL    string          `json:"image_url"`
	IsPremium   bool            `json:"is_premium"`
}

// VideoUpdate is a partial update; nil fields are left unchanged.
type VideoUpdate struct {
	Title       *string          `json:"title,omitempty"`
	Summary     *string          `json:"summary,omitempty"`
	Description *string          `json:"description,omitempty"`
	Category    *ContentCategory `json:"category,omitempty"`
	Keywords    []string         `json:"keywords,omitempty"`
	YouTubeURL  *string          `json:"youtube_url,omitempty"`
	Thumbnail   *string          `json:"thumbnail,omitempty"`
	ImageURL    *string          `json:"image_url,omitempty"`
	IsPremium   *bool            `json:"is_premium,omitempty"`
}

// BlogInput carries the editable fields of a blog post.
type BlogInput struct {
	Title     string          `json:"title" binding:"required"`
	Summary   string          `json:"summary"`
	Content   string          `json:"content" binding:"required"`
	Category  ContentCategory `json:"category" binding:"required"`
	Keywords  []string        `json:"keywords"`
	ImageURL  string          `json:"image_url"`
	IsPremium bool            `json:"is_premium"`
}

// BlogUpdate is a partial update; nil fields are left unchanged.
type BlogUpdate struct {
	Title     *string          `json:"title,omitempty"`
	Summary   *string          `json:"summary,omitempty"`
	Content   *string          `json:"content,omitempty"`
	Category  *ContentCategory `json:"category,omitempty"`
	Keywords  []string         `json:"keywords,omitempty"`
	ImageURL  *string          `json:"image_url,omitempty"`
	IsPremium *bool            `json:"is_premium,omitempty"`
}

// ContentList is a page of content.
type ContentList[T any] struct {
	Items      []T        `json:"items"`
	Pagination Pagination `json:"pagination"`
}

// UploadedImage is returned after an admin image upload.
type UploadedImage struct {
	Path        string `json:"path"`
	URL         string `json:"url"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
}

// NormalizeKeywords trims keywords, drops empty ones and removes
// case-insensitive duplicates, keeping the first spelling seen.
func NormalizeKeywords(keywords []string) []string {
	out := make([]string, 0, len(keywords))
	seen := make(map[string]struct{}, len(keywords))
	for _, k := range keywords {
		k = strings.TrimSpace(k)
		if k == "" {
			continue
		}
		key := strings.ToLower(k)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, k)
	}
	return out
}
