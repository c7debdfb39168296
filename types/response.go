package types

// PaginationParams binds the common limit/offset query parameters.
type PaginationParams struct {
	Limit  int `form:"limit" binding:"omitempty,gte=0"`
	Offset int `form:"offset" binding:"omitempty,gte=0"`
}

type Pagination struct {
	Limit  int `json:"limit"`
	Offset int `json:"offset"`
	Total  int `json:"total"`
}

// Viewer is the caller of a content read. UserID is empty for anonymous
// visitors; MetadataPremium mirrors app_metadata.isPremium in the token.
type Viewer struct {
	UserID          string
	MetadataPremium bool
}

// Authenticated reports whether the viewer is signed in.
func (v Viewer) Authenticated() bool {
	return v.UserID != ""
}
