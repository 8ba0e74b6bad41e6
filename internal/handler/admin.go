package handler

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/adocavo/adocavo-api/internal/response"
	"github.com/adocavo/adocavo-api/internal/service"
	"github.com/gin-gonic/gin"
)

type AdminHandler struct {
	admin     *service.AdminService
	analytics *service.AnalyticsService
}

func NewAdminHandler(admin *service.AdminService, analytics *service.AnalyticsService) *AdminHandler {
	return &AdminHandler{admin: admin, analytics: analytics}
}

// Handles GET /api/admin/hooks/pending
func (h *AdminHandler) ReviewQueue(c *gin.Context) {
	hooks, err := h.admin.ReviewQueue(c.Request.Context(), intQuery(c, "limit", 50), intQuery(c, "offset", 0))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "Failed to load review queue")
		return
	}
	response.OK(c, hooks)
}

// Handles POST /api/admin/hooks/:id/approve
func (h *AdminHandler) ApproveHook(c *gin.Context) {
	h.setHookStatus(c, h.admin.Approve)
}

// Handles POST /api/admin/hooks/:id/reject
func (h *AdminHandler) RejectHook(c *gin.Context) {
	h.setHookStatus(c, h.admin.Reject)
}

func (h *AdminHandler) setHookStatus(c *gin.Context, fn func(ctx context.Context, hookID string) error) {
	err := fn(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "Hook not found or not pending")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "Failed to update hook")
		return
	}
	response.OK(c, gin.H{"message": "Hook updated"})
}

// Handles GET /api/admin/users
func (h *AdminHandler) Users(c *gin.Context) {
	users, err := h.admin.Users(c.Request.Context(), intQuery(c, "limit", 50), intQuery(c, "offset", 0))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "Failed to list users")
		return
	}
	response.OK(c, users)
}

// Handles POST /api/admin/users/:id/credits
func (h *AdminHandler) GrantCredits(c *gin.Context) {
	var req struct {
		Amount int `json:"amount" binding:"required,min=1,max=1000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidationError, "amount must be between 1 and 1000")
		return
	}

	err := h.admin.GrantCredits(c.Request.Context(), c.Param("id"), req.Amount)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "User not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "Failed to grant credits")
		return
	}
	response.OK(c, gin.H{"message": "Credits granted"})
}

// Handles GET /api/admin/waitlist
func (h *AdminHandler) Waitlist(c *gin.Context) {
	entries, total, err := h.admin.Waitlist(c.Request.Context(), intQuery(c, "limit", 100), intQuery(c, "offset", 0))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "Failed to list waitlist")
		return
	}
	response.OK(c, gin.H{"entries": entries, "total": total})
}

// Handles GET /api/admin/analytics
func (h *AdminHandler) Analytics(c *gin.Context) {
	hours := intQuery(c, "hours", 24)
	if hours == 0 || hours > 24*30 {
		hours = 24
	}
	to := time.Now()
	from := to.Add(-time.Duration(hours) * time.Hour)

	summary, err := h.analytics.GetSummary(c.Request.Context(), from, to)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "Failed to compute analytics")
		return
	}
	response.OK(c, summary)
}
