package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jungianjournals/journals-backend/types"
)

// Paywall locks premium videos for viewers without access.
type Paywall interface {
	ApplyVideoPaywall(ctx context.Context, viewer types.Viewer, videos []types.Video)
}

// RecommendationHandler serves the "watch next" lists.
type RecommendationHandler struct {
	recommendations RecommendationServiceInterface
	paywall         Paywall
}

func NewRecommendationHandler(recommendations RecommendationServiceInterface, paywall Paywall) *RecommendationHandler {
	return &RecommendationHandler{recommendations: recommendations, paywall: paywall}
}

// RecommendationsResponse wraps a recommendation list.
type RecommendationsResponse struct {
	Items []types.Video `json:"items"`
}

// EmbeddingRecommendationRequest asks for neighbours of a query embedding.
type EmbeddingRecommendationRequest struct {
	Embedding []float32 `json:"embedding"`
	Limit     int       `json:"limit"`
}

func (h *RecommendationHandler) respond(c *gin.Context, videos []types.Video) {
	if videos == nil {
		videos = []types.Video{}
	}
	if h.paywall != nil {
		h.paywall.ApplyVideoPaywall(c.Request.Context(), viewerFromContext(c), videos)
	}
	c.JSON(http.StatusOK, RecommendationsResponse{Items: videos})
}

// SimilarVideosHandler godoc
// @Summary Videos similar to a video
// @Description Keyword, category, recency and popularity scoring over recent videos.
// @Tags recommendations
// @Produce json
// @Param id path string true "Video ID"
// @Param limit query int false "Number of results (default 5, max 20)"
// @Success 200 {object} RecommendationsResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /videos/{id}/recommendations [get]
func (h *RecommendationHandler) SimilarVideosHandler(c *gin.Context) {
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}
	videos, err := h.recommendations.Similar(c.Request.Context(), c.Param("id"), nil, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.respond(c, videos)
}

// SimilarByEmbeddingHandler godoc
// @Summary Videos similar to a video, using an embedding
// @Description Uses vector search when enabled and falls back to keyword scoring.
// @Tags recommendations
// @Accept json
// @Produce json
// @Param id path string true "Video ID"
// @Param request body EmbeddingRecommendationRequest true "Query embedding"
// @Success 200 {object} RecommendationsResponse
// @Failure 400 {object} middleware.ErrorResponse
// @Failure 404 {object} middleware.ErrorResponse
// @Router /videos/{id}/recommendations [post]
func (h *RecommendationHandler) SimilarByEmbeddingHandler(c *gin.Context) {
	var req EmbeddingRecommendationRequest
	if !bindJSONOrError(c, &req) {
		return
	}
	videos, err := h.recommendations.Similar(c.Request.Context(), c.Param("id"), req.Embedding, req.Limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.respond(c, videos)
}

// PersonalizedHandler godoc
// @Summary Recommendations from the member's watch history
// @Description Popular videos when there is no history.
// @Tags recommendations
// @Produce json
// @Param limit query int false "Number of results (default 5, max 20)"
// @Success 200 {object} RecommendationsResponse
// @Failure 401 {object} middleware.ErrorResponse
// @Router /me/recommendations [get]
// @Security BearerAuth
func (h *RecommendationHandler) PersonalizedHandler(c *gin.Context) {
	identity, ok := requireIdentity(c)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", 0)
	if !ok {
		return
	}
	videos, err := h.recommendations.Personalized(c.Request.Context(), identity.UserID, limit)
	if err != nil {
		_ = c.Error(err)
		return
	}
	h.respond(c, videos)
}
