package handler

import (
	"net/http"

	"github.com/adocavo/adocavo-api/internal/middleware"
	"github.com/adocavo/adocavo-api/internal/response"
	"github.com/adocavo/adocavo-api/internal/service"
	"github.com/gin-gonic/gin"
)

type AnalysisHandler struct {
	analysis *service.AnalysisService
}

func NewAnalysisHandler(analysis *service.AnalysisService) *AnalysisHandler {
	return &AnalysisHandler{analysis: analysis}
}

// Handles POST /api/analyze. Works for guests; signed-in callers spend a
// credit and get the looser per-user quota instead of the anonymous one.
func (h *AnalysisHandler) Analyze(c *gin.Context) {
	var req struct {
		AdText string `json:"ad_text" binding:"required,min=10,max=5000"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidationError, "ad_text must be between 10 and 5000 characters")
		return
	}

	userID := c.GetString(middleware.ContextUserID)
	result, err := h.analysis.Analyze(c.Request.Context(), userID, req.AdText)
	if err != nil {
		writeAIError(c, err)
		return
	}

	response.OK(c, result)
}
