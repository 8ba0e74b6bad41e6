package handler

import (
	"net/http"

	"github.com/adocavo/adocavo-api/internal/response"
	"github.com/adocavo/adocavo-api/internal/service"
	"github.com/gin-gonic/gin"
)

type WaitlistHandler struct {
	waitlist *service.WaitlistService
}

func NewWaitlistHandler(waitlist *service.WaitlistService) *WaitlistHandler {
	return &WaitlistHandler{waitlist: waitlist}
}

// Handles POST /api/waitlist. Duplicate signups succeed silently.
func (h *WaitlistHandler) Join(c *gin.Context) {
	var req struct {
		Email  string `json:"email" binding:"required,email"`
		Source string `json:"source" binding:"max=100"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidationError, "A valid email is required")
		return
	}

	if err := h.waitlist.Join(c.Request.Context(), req.Email, req.Source); err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "Failed to join waitlist")
		return
	}

	response.Created(c, gin.H{"message": "You're on the list"})
}
