package recommend

import (
	"encoding/json"
	"fmt"
	"net/url"
	"regexp"
	"strings"
)

// PlaceholderThumbnail is served when a video has no usable image.
const PlaceholderThumbnail = "/placeholder.svg"

var youTubeIDPattern = regexp.MustCompile(`^.*((youtu.be/)|(v/)|(/u/\w/)|(embed/)|(watch\?))\??v?=?([^#&?]*).*`)

// ExtractYouTubeID returns the 11 character video id from the usual YouTube
// URL shapes (watch, youtu.be, embed, v and /u/x/), or "".
func ExtractYouTubeID(url string) string {
	m := youTubeIDPattern.FindStringSubmatch(url)
	if m == nil || len(m[7]) != 11 {
		return ""
	}
	return m[7]
}

// YouTubeThumbnailURL is the max resolution still for a video id.
func YouTubeThumbnailURL(id string) string {
	return fmt.Sprintf("https://img.youtube.com/vi/%s/maxresdefault.jpg", id)
}

// Thumbnail picks the image to show for v: an uploaded image, then a YouTube
// still derived from the URL or id, then the stored thumbnail.
func Thumbnail(v Video) string {
	if v.ImageURL != "" {
		return v.ImageURL
	}
	if v.YouTubeURL != "" {
		if id := ExtractYouTubeID(v.YouTubeURL); id != "" {
			return YouTubeThumbnailURL(id)
		}
	}
	if v.YouTubeID != "" {
		return YouTubeThumbnailURL(v.YouTubeID)
	}
	if v.Thumbnail != "" {
		return v.Thumbnail
	}
	return PlaceholderThumbnail
}

// LockedThumbnail is Thumbnail for a video the viewer may not watch. Stills
// served by YouTube embed the video id, so only uploaded or self-hosted
// images are kept.
func LockedThumbnail(v Video) string {
	if v.ImageURL != "" && !isYouTubeImage(v.ImageURL) {
		return v.ImageURL
	}
	if v.Thumbnail != "" && !isYouTubeImage(v.Thumbnail) {
		return v.Thumbnail
	}
	return PlaceholderThumbnail
}

func isYouTubeImage(raw string) bool {
	u, err := url.Parse(raw)
	if err != nil {
		return true
	}
	host := strings.ToLower(u.Hostname())
	return host == "img.youtube.com" || host == "i.ytimg.com" || strings.HasSuffix(host, ".ytimg.com")
}

// ParseKeywords normalizes the keyword column, which older rows store as a
// JSON encoded string. Anything unparseable yields an empty slice.
func ParseKeywords(raw any) []string {
	switch v := raw.(type) {
	case nil:
		return []string{}
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, item := range v {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		if err := json.Unmarshal([]byte(v), &out); err != nil || out == nil {
			return []string{}
		}
		return out
	case []byte:
		return ParseKeywords(string(v))
	default:
		return []string{}
	}
}
