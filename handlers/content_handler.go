package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jungianjournals/journals-backend/types"
)

// ContentHandler serves the public video and blog endpoints.
type ContentHandler struct {
	content ContentServiceInterface
}

func NewContentHandler(content ContentServiceInterface) *ContentHandler {
	return &ContentHandler{content: content}
}

type viewResponse struct {
	ID    string `json:"id"`
	Views int64  `json:"views"`
}

func contentFilterFromQuery(c *gin.Context) (types.ContentFilter, bool) {
	page, ok := bindPagination(c)
	if !ok {
		return types.ContentFilter{}, false
	}
	return types.ContentFilter{
		Category: types.ContentCategory(c.Query("category")),
		Search:   c.Query("search"),
		Keyword:  c.Query("keyword"),
		Limit:    page.Limit,
		Offset:   page.Offset,
	}, true
}

// ListVideosHandler godoc
// @Summary List videos
// @Description Newest first. Premium videos are returned locked to free viewers.
// @Tags videos
// @Produce json
// @Param category query string false "Journals, Books or Fairy Tales"
// @Param search query string false "Title, summary or keyword search"
// @Param keyword query string false "Exact keyword"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {object} types.ContentList[types.Video]
// @Failure 400 {object} middleware.ErrorResponse
// @Router /videos [get]
func (h *ContentHandler) ListVideosHandler(c *gin.Context) {
	filter, ok := contentFilterFromQuery(c)
	if !ok {
		return
	}
	page, err := h.content.ListVideos(c.Request.Context(), filter, viewerFromContext(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// GetVideoHandler godoc
// @Summary Get a video
// @Tags videos
// @Produce json
// @Param id path string true "Video ID"
// @Success 200 {object} types.Video
// @Failure 404 {object} middleware.ErrorResponse
// @Router /videos/{id} [get]
func (h *ContentHandler) GetVideoHandler(c *gin.Context) {
	video, err := h.content.GetVideo(c.Request.Context(), c.Param("id"), viewerFromContext(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, video)
}

// RecordVideoViewHandler godoc
// @Summary Count a video view
// @Description Signed-in viewers also get a history entry used for recommendations.
// @Tags videos
// @Produce json
// @Param id path string true "Video ID"
// @Success 200 {object} viewResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /videos/{id}/view [post]
func (h *ContentHandler) RecordVideoViewHandler(c *gin.Context) {
	h.recordView(c, types.ContentKindVideo)
}

// ListBlogsHandler godoc
// @Summary List blog posts
// @Tags blogs
// @Produce json
// @Param category query string false "Journals, Books or Fairy Tales"
// @Param search query string false "Title, summary or keyword search"
// @Param keyword query string false "Exact keyword"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {object} types.ContentList[types.Blog]
// @Failure 400 {object} middleware.ErrorResponse
// @Router /blogs [get]
func (h *ContentHandler) ListBlogsHandler(c *gin.Context) {
	filter, ok := contentFilterFromQuery(c)
	if !ok {
		return
	}
	page, err := h.content.ListBlogs(c.Request.Context(), filter, viewerFromContext(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// KeywordIndexHandler godoc
// @Summary Video keyword index
// @Description Keywords grouped by first letter with the number of videos carrying each.
// @Tags videos
// @Produce json
// @Param category query string false "Journals, Books or Fairy Tales"
// @Success 200 {object} types.KeywordIndex
// @Failure 400 {object} middleware.ErrorResponse
// @Router /keywords [get]
func (h *ContentHandler) KeywordIndexHandler(c *gin.Context) {
	idx, err := h.content.KeywordIndex(c.Request.Context(), types.ContentCategory(c.Query("category")))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, idx)
}

// GetBlogHandler godoc
// @Summary Get a blog post
// @Tags blogs
// @Produce json
// @Param id path string true "Blog ID"
// @Success 200 {object} types.Blog
// @Failure 404 {object} middleware.ErrorResponse
// @Router /blogs/{id} [get]
func (h *ContentHandler) GetBlogHandler(c *gin.Context) {
	blog, err := h.content.GetBlog(c.Request.Context(), c.Param("id"), viewerFromContext(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, blog)
}

// RecordBlogViewHandler godoc
// @Summary Count a blog view
// @Tags blogs
// @Produce json
// @Param id path string true "Blog ID"
// @Success 200 {object} viewResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /blogs/{id}/view [post]
func (h *ContentHandler) RecordBlogViewHandler(c *gin.Context) {
	h.recordView(c, types.ContentKindBlog)
}

func (h *ContentHandler) recordView(c *gin.Context, kind types.ContentKind) {
	id := c.Param("id")
	views, err := h.content.RecordView(c.Request.Context(), kind, id, viewerFromContext(c))
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, viewResponse{ID: id, Views: views})
}
