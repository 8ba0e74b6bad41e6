package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/adocavo/adocavo-api/internal/middleware"
	"github.com/adocavo/adocavo-api/internal/repository"
	"github.com/adocavo/adocavo-api/internal/response"
	"github.com/adocavo/adocavo-api/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type HookHandler struct {
	hooks *service.HookService
}

func NewHookHandler(hooks *service.HookService) *HookHandler {
	return &HookHandler{hooks: hooks}
}

// Handles GET /api/hooks
func (h *HookHandler) List(c *gin.Context) {
	filter := repository.HookFilter{
		Category: c.Query("category"),
		Platform: c.Query("platform"),
		Search:   c.Query("q"),
		Offset:   intQuery(c, "offset", 0),
		Limit:    intQuery(c, "limit", 50),
	}

	ctx := c.Request.Context()
	hooks, err := h.hooks.List(ctx, filter)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "Failed to list hooks")
		return
	}

	response.OK(c, hooks)
}

// Handles GET /api/hooks/top
func (h *HookHandler) TopRated(c *gin.Context) {
	ctx := c.Request.Context()
	hooks, err := h.hooks.TopRated(ctx, intQuery(c, "limit", 20))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "Failed to list hooks")
		return
	}

	response.OK(c, hooks)
}

// Handles GET /api/hooks/:id
func (h *HookHandler) Get(c *gin.Context) {
	ctx := c.Request.Context()
	hook, err := h.hooks.Get(ctx, c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "Hook not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "Failed to load hook")
		return
	}

	response.OK(c, hook)
}

// Handles POST /api/hooks (submission into the review queue)
func (h *HookHandler) Submit(c *gin.Context) {
	var req struct {
		Text     string `json:"text" binding:"required,min=5,max=500"`
		Category string `json:"category" binding:"required"`
		Platform string `json:"platform" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidationError, err.Error())
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "Authentication required")
		return
	}

	ctx := c.Request.Context()
	hook, err := h.hooks.Submit(ctx, userID, req.Text, req.Category, req.Platform)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "Failed to submit hook")
		return
	}

	response.Created(c, hook)
}

// Handles POST /api/hooks/:id/rating
func (h *HookHandler) Rate(c *gin.Context) {
	var req struct {
		Stars int `json:"stars" binding:"required,min=1,max=5"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidationError, err.Error())
		return
	}

	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "Authentication required")
		return
	}

	ctx := c.Request.Context()
	if err := h.hooks.Rate(ctx, c.Param("id"), userID, req.Stars); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "Hook not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "Failed to rate hook")
		return
	}

	response.OK(c, gin.H{"message": "Rating saved"})
}

// Handles GET /api/favorites
func (h *HookHandler) Favorites(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "Authentication required")
		return
	}

	ctx := c.Request.Context()
	hooks, err := h.hooks.Favorites(ctx, userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "Failed to list favorites")
		return
	}

	response.OK(c, hooks)
}

// Handles PUT /api/favorites/:id
func (h *HookHandler) AddFavorite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "Authentication required")
		return
	}

	ctx := c.Request.Context()
	if err := h.hooks.Favorite(ctx, c.Param("id"), userID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "Hook not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "Failed to save favorite")
		return
	}

	response.OK(c, gin.H{"message": "Favorite saved"})
}

// Handles DELETE /api/favorites/:id
func (h *HookHandler) RemoveFavorite(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "Authentication required")
		return
	}

	ctx := c.Request.Context()
	if err := h.hooks.Unfavorite(ctx, c.Param("id"), userID); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "Failed to remove favorite")
		return
	}

	response.OK(c, gin.H{"message": "Favorite removed"})
}

func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.GetString(middleware.ContextUserID))
	if err != nil {
		return uuid.Nil, false
	}
	return id, true
}

func intQuery(c *gin.Context, name string, fallback int) int {
	if v := c.Query(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n >= 0 {
			return n
		}
	}
	return fallback
}
