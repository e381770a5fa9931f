package controller

import (
	"book_platform_backend/internal/middleware"
	"book_platform_backend/internal/model"
	"book_platform_backend/internal/service"
	"book_platform_backend/internal/util"
	"errors"
	"strings"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
	RBACService *service.RBACService
	IsRelease   bool
}

func NewAuthController(authService *service.AuthService, rbacService *service.RBACService, isRelease bool) *AuthController {
	return &AuthController{
		AuthService: authService,
		RBACService: rbacService,
		IsRelease:   isRelease,
	}
}

// swagger:model RegisterRequest
type RegisterRequest struct {
	Username        string `json:"username" binding:"required"`
	Email           string `json:"email" binding:"required,email"`
	Password        string `json:"password" binding:"required,min=8"`
	ConfirmPassword string `json:"confirmPassword" binding:"required"`
	FirstName       string `json:"firstName"`
	LastName        string `json:"lastName"`
}

// Register godoc
// @Summary Register a new user
// @Description Creates an account and assigns the default student role
// @Tags auth
// @Accept  json
// @Produce  json
// @Param   body body RegisterRequest true "Registration data"
// @Success 201 {object} util.Response{data=object} "Created"
// @Failure 400 {object} util.Response "Invalid request"
// @Failure 409 {object} util.Response "Username or email already registered"
// @Failure 500 {object} util.Response "Internal error"
// @Router /api/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	if req.Password != req.ConfirmPassword {
		util.BadRequest(ctx, "passwords do not match")
		return
	}

	user := &model.User{
		Username:  req.Username,
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
	}

	if err := c.AuthService.Register(user, req.Password); err != nil {
		switch {
		case errors.Is(err, util.ErrUsernameRegistered):
			util.Error(ctx, 409, "User "+req.Username+" is already registered")
		case errors.Is(err, util.ErrEmailRegistered):
			util.Error(ctx, 409, "Email "+req.Email+" is already registered")
		default:
			util.LogInternalError(ctx, err)
		}
		return
	}

	// New accounts start as students; failure here is not fatal for the
	// registration itself.
	if _, err := c.RBACService.AssignRole(user.ID, model.RoleStudent); err != nil {
		util.LogInternalError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{"id": user.ID})
}

// swagger:model LoginRequest
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
	Remember bool   `json:"remember"`
}

// Login godoc
// @Summary Log in
// @Description Verifies credentials and opens a session; the token is
// @Description returned in the body and set as an HttpOnly cookie
// @Tags auth
// @Accept  json
// @Produce  json
// @Param   body body LoginRequest true "Credentials"
// @Success 200 {object} util.Response{data=object} "Success"
// @Failure 400 {object} util.Response "Invalid request"
// @Failure 401 {object} util.Response "Invalid credentials or deactivated account"
// @Router /api/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	token, user, err := c.AuthService.Login(ctx.Request.Context(), req.Username, req.Password, req.Remember)
	if err != nil {
		if errors.Is(err, util.ErrAccountDisabled) {
			util.Error(ctx, 401, util.ErrAccountDisabled.Error())
		} else {
			util.Unauthorized(ctx)
		}
		return
	}

	// A remembered session gets a durable cookie; otherwise the cookie dies
	// with the browser while the server-side lifetime still applies.
	maxAge := 0
	if req.Remember {
		maxAge = int(c.AuthService.Cfg.Session.RememberLifetime.Seconds())
	}
	ctx.SetCookie(middleware.SessionCookieName, token, maxAge, "/", "", c.IsRelease, true)

	util.Success(ctx, gin.H{
		"token": token,
		"user": gin.H{
			"id":       user.ID,
			"username": user.Username,
			"email":    user.Email,
		},
	})
}

// Logout godoc
// @Summary Log out
// @Description Invalidates the current session token immediately
// @Tags auth
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response "Success"
// @Failure 401 {object} util.Response "Unauthorized"
// @Router /api/logout [post]
func (c *AuthController) Logout(ctx *gin.Context) {
	token := ""
	if cookie, err := ctx.Cookie(middleware.SessionCookieName); err == nil {
		token = cookie
	}
	if authHeader := ctx.GetHeader("Authorization"); token == "" && authHeader != "" {
		token = strings.TrimPrefix(authHeader, "Bearer ")
	}

	if token != "" {
		if err := c.AuthService.Logout(ctx.Request.Context(), token); err != nil {
			util.LogInternalError(ctx, err)
			return
		}
	}

	ctx.SetCookie(middleware.SessionCookieName, "", -1, "/", "", c.IsRelease, true)
	util.Success(ctx, gin.H{"message": "You have been logged out."})
}

// GetProfile godoc
// @Summary Current user profile
// @Tags auth
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=object} "Success"
// @Failure 401 {object} util.Response "Unauthorized"
// @Router /api/profile [get]
func (c *AuthController) GetProfile(ctx *gin.Context) {
	user := util.GetUserFromContext(ctx)
	if user == nil {
		util.Unauthorized(ctx)
		return
	}

	roles := make([]string, 0, len(user.Roles))
	for _, r := range user.Roles {
		roles = append(roles, r.Name)
	}

	util.Success(ctx, gin.H{
		"id":        user.ID,
		"username":  user.Username,
		"email":     user.Email,
		"firstName": user.FirstName,
		"lastName":  user.LastName,
		"fullName":  user.FullName(),
		"roles":     roles,
		"createdAt": user.CreatedAt,
	})
}
