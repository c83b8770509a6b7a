package controllers

import (
	"errors"

	"restaurant/entity"
	"restaurant/pkg/resp"
	"restaurant/services"
	"restaurant/utils"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type RegisterRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}
type LoginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type UserView struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func NewUserView(u *entity.User) UserView {
	return UserView{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role}
}

type AuthResponse struct {
	Token string   `json:"token"`
	User  UserView `json:"user"`
}

type AuthController struct {
	Svc *services.AuthService
	Log *zap.Logger
}

func NewAuthController(s *services.AuthService, log *zap.Logger) *AuthController {
	return &AuthController{Svc: s, Log: log}
}

// POST /auth/register
func (a *AuthController) Register(c *gin.Context) {
	var req RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, "Invalid request body")
		return
	}

	res, err := a.Svc.Register(c.Request.Context(), req.Name, req.Email, req.Password)
	switch {
	case err == nil:
		resp.OK(c, AuthResponse{Token: res.Token, User: NewUserView(res.User)})
	case services.IsValidation(err):
		resp.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrEmailTaken):
		resp.Conflict(c, err.Error())
	default:
		resp.ServerError(c, a.Log, "Internal server error", err)
	}
}

// POST /auth/login
func (a *AuthController) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		resp.BadRequest(c, "Invalid request body")
		return
	}

	res, err := a.Svc.Login(c.Request.Context(), req.Email, req.Password)
	switch {
	case err == nil:
		resp.OK(c, AuthResponse{Token: res.Token, User: NewUserView(res.User)})
	case services.IsValidation(err):
		resp.BadRequest(c, err.Error())
	case errors.Is(err, services.ErrInvalidCredentials):
		resp.Unauthorized(c, err.Error())
	default:
		resp.ServerError(c, a.Log, "Internal server error", err)
	}
}

// GET /auth/me
func (a *AuthController) Me(c *gin.Context) {
	user, err := a.Svc.GetProfile(c.Request.Context(), utils.CurrentUserID(c))
	switch {
	case err == nil:
		resp.OK(c, gin.H{"user": NewUserView(user)})
	case errors.Is(err, services.ErrUserNotFound):
		// token outlived its account
		resp.Unauthorized(c, "Invalid token")
	default:
		resp.ServerError(c, a.Log, "Internal server error", err)
	}
}
