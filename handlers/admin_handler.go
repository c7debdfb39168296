package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
	apperrors "github.com/jungianjournals/journals-backend/errors"
	"github.com/jungianjournals/journals-backend/logger"
	"github.com/jungianjournals/journals-backend/middleware"
	"github.com/jungianjournals/journals-backend/types"
)

// AdminHandler serves the dashboard: analytics, users, payments and the
// content editor.
type AdminHandler struct {
	analytics AnalyticsServiceInterface
	payments  PaymentServiceInterface
	content   ContentServiceInterface
	maxUpload int64
}

func NewAdminHandler(analytics AnalyticsServiceInterface, payments PaymentServiceInterface, content ContentServiceInterface, maxUploadBytes int64) *AdminHandler {
	return &AdminHandler{
		analytics: analytics,
		payments:  payments,
		content:   content,
		maxUpload: maxUploadBytes,
	}
}

// AnalyticsHandler godoc
// @Summary Dashboard overview
// @Tags admin
// @Produce json
// @Param period query int false "7, 30 or 90 days" default(7)
// @Success 200 {object} types.AnalyticsOverview
// @Failure 400 {object} middleware.ErrorResponse
// @Router /admin/analytics [get]
// @Security AdminAuth
func (h *AdminHandler) AnalyticsHandler(c *gin.Context) {
	period, ok := queryInt(c, "period", 7)
	if !ok {
		return
	}
	overview, err := h.analytics.Overview(c.Request.Context(), period)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, overview)
}

// UsersHandler godoc
// @Summary Registered users
// @Tags admin
// @Produce json
// @Param search query string false "Email or name"
// @Param status query string false "premium, free or all"
// @Success 200 {object} types.AdminUserList
// @Failure 502 {object} middleware.ErrorResponse
// @Router /admin/users [get]
// @Security AdminAuth
func (h *AdminHandler) UsersHandler(c *gin.Context) {
	list, err := h.analytics.Users(c.Request.Context(), types.UserFilter{
		Search: c.Query("search"),
		Status: c.Query("status"),
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// ListPaymentsHandler godoc
// @Summary Payments
// @Tags admin
// @Produce json
// @Param status query string false "pending, completed, failed or refunded"
// @Param search query string false "Order id, order name or user id"
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Page offset"
// @Success 200 {object} types.ContentList[types.Payment]
// @Router /admin/payments [get]
// @Security AdminAuth
func (h *AdminHandler) ListPaymentsHandler(c *gin.Context) {
	page, ok := bindPagination(c)
	if !ok {
		return
	}
	list, err := h.payments.ListPayments(c.Request.Context(), types.PaymentFilter{
		Status: types.PaymentStatus(c.Query("status")),
		Search: c.Query("search"),
		Limit:  page.Limit,
		Offset: page.Offset,
	})
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, list)
}

// PaymentStatsHandler godoc
// @Summary Payment totals
// @Tags admin
// @Produce json
// @Success 200 {object} types.PaymentStats
// @Router /admin/payments/stats [get]
// @Security AdminAuth
func (h *AdminHandler) PaymentStatsHandler(c *gin.Context) {
	stats, err := h.payments.Stats(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// CreateVideoHandler godoc
// @Summary Publish a video
// @Tags admin
// @Accept json
// @Produce json
// @Param request body types.VideoInput true "Video"
// @Success 201 {object} types.Video
// @Failure 400 {object} middleware.ErrorResponse
// @Router /admin/videos [post]
// @Security AdminAuth
func (h *AdminHandler) CreateVideoHandler(c *gin.Context) {
	var input types.VideoInput
	if !bindJSONOrError(c, &input) {
		return
	}
	video, err := h.content.CreateVideo(c.Request.Context(), input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	logger.GetLogger().Infow("Video published", "videoID", video.ID, "adminID", middleware.GetAdminID(c))
	c.JSON(http.StatusCreated, video)
}

// UpdateVideoHandler godoc
// @Summary Edit a video
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Video ID"
// @Param request body types.VideoUpdate true "Changed fields"
// @Success 200 {object} types.Video
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /admin/videos/{id} [put]
// @Security AdminAuth
func (h *AdminHandler) UpdateVideoHandler(c *gin.Context) {
	var update types.VideoUpdate
	if !bindJSONOrError(c, &update) {
		return
	}
	video, err := h.content.UpdateVideo(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, video)
}

// DeleteVideoHandler godoc
// @Summary Delete a video
// @Tags admin
// @Param id path string true "Video ID"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse
// @Router /admin/videos/{id} [delete]
// @Security AdminAuth
func (h *AdminHandler) DeleteVideoHandler(c *gin.Context) {
	if err := h.content.DeleteVideo(c.Request.Context(), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	logger.GetLogger().Infow("Video deleted", "videoID", c.Param("id"), "adminID", middleware.GetAdminID(c))
	c.Status(http.StatusNoContent)
}

// CreateBlogHandler godoc
// @Summary Publish a blog post
// @Tags admin
// @Accept json
// @Produce json
// @Param request body types.BlogInput true "Blog post"
// @Success 201 {object} types.Blog
// @Failure 400 {object} middleware.ErrorResponse
// @Router /admin/blogs [post]
// @Security AdminAuth
func (h *AdminHandler) CreateBlogHandler(c *gin.Context) {
	var input types.BlogInput
	if !bindJSONOrError(c, &input) {
		return
	}
	blog, err := h.content.CreateBlog(c.Request.Context(), input)
	if err != nil {
		_ = c.Error(err)
		return
	}
	logger.GetLogger().Infow("Blog post published", "blogID", blog.ID, "adminID", middleware.GetAdminID(c))
	c.JSON(http.StatusCreated, blog)
}

// UpdateBlogHandler godoc
// @Summary Edit a blog post
// @Tags admin
// @Accept json
// @Produce json
// @Param id path string true "Blog ID"
// @Param request body types.BlogUpdate true "Changed fields"
// @Success 200 {object} types.Blog
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /admin/blogs/{id} [put]
// @Security AdminAuth
func (h *AdminHandler) UpdateBlogHandler(c *gin.Context) {
	var update types.BlogUpdate
	if !bindJSONOrError(c, &update) {
		return
	}
	blog, err := h.content.UpdateBlog(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusOK, blog)
}

// DeleteBlogHandler godoc
// @Summary Delete a blog post
// @Tags admin
// @Param id path string true "Blog ID"
// @Success 204
// @Failure 404 {object} middleware.ErrorResponse
// @Router /admin/blogs/{id} [delete]
// @Security AdminAuth
func (h *AdminHandler) DeleteBlogHandler(c *gin.Context) {
	if err := h.content.DeleteBlog(c.Request.Context(), c.Param("id")); err != nil {
		_ = c.Error(err)
		return
	}
	logger.GetLogger().Infow("Blog post deleted", "blogID", c.Param("id"), "adminID", middleware.GetAdminID(c))
	c.Status(http.StatusNoContent)
}

// UploadImageHandler godoc
// @Summary Upload a blog image
// @Description Multipart upload with a "file" field. jpeg, png, webp or gif.
// @Tags admin
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "Image"
// @Success 201 {object} types.UploadedImage
// @Failure 400 {object} middleware.ErrorResponse
// @Router /admin/uploads/images [post]
// @Security AdminAuth
func (h *AdminHandler) UploadImageHandler(c *gin.Context) {
	// Enforce max body size, leaving room for the multipart envelope
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUpload+1024*1024)

	fileHeader, err := c.FormFile("file")
	if err != nil {
		_ = c.Error(apperrors.ValidationFailed("missing_file", "file field is required"))
		return
	}
	file, err := fileHeader.Open()
	if err != nil {
		_ = c.Error(apperrors.ValidationFailed("invalid_file", "failed to open uploaded file"))
		return
	}
	defer file.Close()

	img, err := h.content.UploadBlogImage(c.Request.Context(), file)
	if err != nil {
		_ = c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, img)
}
