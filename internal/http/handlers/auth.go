package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/philoatlas-backend/internal/http/response"
	"github.com/yungbote/philoatlas-backend/internal/services"
)

type AuthHandler struct {
	authService services.AuthService
}

func NewAuthHandler(authService services.AuthService) *AuthHandler {
	return &AuthHandler{authService: authService}
}

type credentialsRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// POST /api/auth/signup
func (ah *AuthHandler) Signup(c *gin.Context) {
	var req credentialsRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	user, err := ah.authService.Signup(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondCreated(c, user)
}

// POST /api/auth/login
func (ah *AuthHandler) Login(c *gin.Context) {
	var req credentialsRequest
	if err := bindJSON(c, &req); err != nil {
		response.RespondAPIError(c, err)
		return
	}
	out, err := ah.authService.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, gin.H{
		"access_token": out.AccessToken,
		"user":         out.User,
		"expires_in":   int(ah.authService.GetAccessTTL().Seconds()),
	})
}

// GET /api/auth/profile
func (ah *AuthHandler) Profile(c *gin.Context) {
	user, err := ah.authService.Profile(c.Request.Context())
	if err != nil {
		response.RespondAPIError(c, err)
		return
	}
	response.RespondOK(c, user)
}
