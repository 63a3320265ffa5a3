package handlers

import (
	"net/http"

	"github.com/erindhoxha/mern-stack-site/internal/services"
	"github.com/gin-gonic/gin"
)

type AuthHandler struct {
	svc services.AuthService
}

func NewAuthHandler(svc services.AuthService) *AuthHandler {
	return &AuthHandler{svc: svc}
}

type tokenResponse struct {
	Token string `json:"token"`
}

type RegisterRequest struct {
	Name     string `json:"name" binding:"required" msg:"Name is required"`
	Email    string `json:"email" binding:"required,email" msg:"Please include a valid email"`
	Password string `json:"password" binding:"required,min=6,max=72" msg:"Please enter a password with 6 or more characters" msg_max:"Please enter a password with 72 or fewer characters"`
}

func (h *AuthHandler) Register(c *gin.Context) {
	var req RegisterRequest
	if !bindJSON(c, "AuthHandler.Register", &req) {
		return
	}

	token, err := h.svc.Register(c.Request.Context(), services.RegisterInput{
		Name:     req.Name,
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{Token: token})
}

type LoginRequest struct {
	Email    string `json:"email" binding:"required,email" msg:"Please include a valid email"`
	Password string `json:"password" binding:"required" msg:"Password is required"`
}

func (h *AuthHandler) Login(c *gin.Context) {
	var req LoginRequest
	if !bindJSON(c, "AuthHandler.Login", &req) {
		return
	}

	token, err := h.svc.Login(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, tokenResponse{Token: token})
}

func (h *AuthHandler) Me(c *gin.Context) {
	userID, ok := requireUserID(c)
	if !ok {
		return
	}

	u, err := h.svc.Me(c.Request.Context(), userID)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, u)
}
