package handler

import (
	"errors"
	"net/http"

	"github.com/adocavo/adocavo-api/internal/middleware"
	"github.com/adocavo/adocavo-api/internal/response"
	"github.com/adocavo/adocavo-api/internal/service"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	auth   *service.AuthService
	secure bool
}

func NewAuthHandler(auth *service.AuthService, secureCookies bool) *AuthHandler {
	return &AuthHandler{auth: auth, secure: secureCookies}
}

// Handles POST /api/auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required,min=8"`
		Name     string `json:"name"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidationError, err.Error())
		return
	}

	ctx := c.Request.Context()
	user, err := h.auth.Register(ctx, req.Email, req.Password, req.Name)
	if err != nil {
		if errors.Is(err, service.ErrEmailTaken) {
			response.Error(c, http.StatusBadRequest, response.CodeValidationError, err.Error())
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "Failed to register")
		return
	}

	response.Created(c, user)
}

// Handles POST /api/auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req struct {
		Email    string `json:"email" binding:"required,email"`
		Password string `json:"password" binding:"required"`
	}

	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, response.CodeValidationError, err.Error())
		return
	}

	ctx := c.Request.Context()
	token, user, err := h.auth.Login(ctx, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, response.CodeUnauthorized, "Invalid credentials")
			return
		}
		response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "Failed to login")
		return
	}

	cookieName := middleware.SessionCookieNames[1]
	if h.secure {
		cookieName = middleware.SessionCookieNames[0]
	}
	c.SetCookie(cookieName, token, 7*24*3600, "/", "", h.secure, true)

	response.OK(c, gin.H{"token": token, "user": user})
}

// Handles POST /api/auth/logout
func (h *AuthHandler) Logout(c *gin.Context) {
	for _, name := range middleware.SessionCookieNames {
		c.SetCookie(name, "", -1, "/", "", h.secure, true)
	}
	response.OK(c, gin.H{"message": "Logged out"})
}

// Handles GET /api/me
func (h *AuthHandler) Me(c *gin.Context) {
	userID := c.GetString(middleware.ContextUserID)

	ctx := c.Request.Context()
	user, err := h.auth.GetUserByID(ctx, userID)
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalError, "Failed to load user")
		return
	}
	if user == nil {
		response.Error(c, http.StatusNotFound, response.CodeNotFound, "User not found")
		return
	}

	response.OK(c, user)
}
