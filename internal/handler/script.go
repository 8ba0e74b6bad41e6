package handler

import (
	"errors"
	"net/http"

	"github.com/adocavo/adocavo-api/internal/ai"
	"github.com/adocavo/adocavo-api/internal/response"
	"github.com/adocavo/adocavo-api/internal/service"
	"github.com/gin-gonic/gin"
)

type ScriptHandler struct {
	scripts *service.ScriptService
	hooks   *service.HookService
}

func NewScriptHandler(scripts *service.ScriptService, hooks *service.HookService) *ScriptHandler {
	return &ScriptHandler{scripts: scripts, hooks: hooks}
}

// Handles POST /api/generate
func (h *ScriptHandler) Generate(c *gin.Context) {
	var req struct {
		Product  string `json:"product" binding:"required,min=2,max=200"`
		Tone     string `json:"tone"`
		Platform string `json:"platform"`
		HookID   string `json:"hook_id"`
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

	genReq := service.GenerateRequest{
		Product:  req.Product,
		Tone:     req.Tone,
		Platform: req.Platform,
	}
	if req.HookID != "" {
		hook, err := h.hooks.Get(ctx, req.HookID)
		if err != nil {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "Hook not found")
			return
		}
		genReq.HookID = &hook.ID
		genReq.HookText = hook.Text
	}

	scripts, err := h.scripts.Generate(ctx, userID, genReq)
	if err != nil {
		writeAIError(c, err)
		return
	}

	response.OK(c, scripts)
}

// Handles GET /api/scripts
func (h *ScriptHandler) List(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "Authentication required")
		return
	}

	ctx := c.Request.Context()
	scripts, err := h.scripts.List(ctx, userID, intQuery(c, "limit", 50), intQuery(c, "offset", 0))
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "Failed to list scripts")
		return
	}

	response.OK(c, scripts)
}

// Handles GET /api/scripts/:id
func (h *ScriptHandler) Get(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "Authentication required")
		return
	}

	ctx := c.Request.Context()
	script, err := h.scripts.Get(ctx, c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "Script not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "Failed to load script")
		return
	}

	response.OK(c, script)
}

// Handles GET /api/scripts/:id/export (plain text download)
func (h *ScriptHandler) Export(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "Authentication required")
		return
	}

	ctx := c.Request.Context()
	script, err := h.scripts.Get(ctx, c.Param("id"), userID)
	if err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "Script not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "Failed to load script")
		return
	}

	c.Header("Content-Disposition", `attachment; filename="script-`+script.ID.String()+`.txt"`)
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(service.ExportText(script)))
}

// Handles DELETE /api/scripts/:id
func (h *ScriptHandler) Delete(c *gin.Context) {
	userID, ok := currentUserID(c)
	if !ok {
		response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "Authentication required")
		return
	}

	ctx := c.Request.Context()
	if err := h.scripts.Delete(ctx, c.Param("id"), userID); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			response.Error(c, http.StatusNotFound, response.CodeNotFound, "Script not found")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "Failed to delete script")
		return
	}

	response.OK(c, gin.H{"message": "Script deleted"})
}

// writeAIError maps generation/analysis failures onto the error taxonomy.
func writeAIError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrNoCredits):
		response.Error(c, http.StatusPaymentRequired, response.CodeValidationError, "No credits remaining")
	case errors.Is(err, ai.ErrNotConfigured):
		response.Error(c, http.StatusInternalServerError, response.CodeEnvMissing, "Generation service not configured")
	case errors.Is(err, ai.ErrUnavailable):
		response.Error(c, http.StatusServiceUnavailable, response.CodeAIUnavailable, "Generation service unavailable, please retry")
	case errors.Is(err, ai.ErrInvalidResponse):
		response.Error(c, http.StatusBadGateway, response.CodeInvalidAIResponse, "Generation service returned an invalid response")
	default:
		response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "Generation failed")
	}
}
