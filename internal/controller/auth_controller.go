package controller

import (
	"errors"

	"coursehub_backend/internal/service"
	"coursehub_backend/internal/util"

	"github.com/gin-gonic/gin"
)

type AuthController struct {
	AuthService *service.AuthService
}

func NewAuthController(authService *service.AuthService) *AuthController {
	return &AuthController{AuthService: authService}
}

// Register godoc
// @Summary Register a new account
// @Description Create a student or teacher account with a unique email
// @Tags auth
// @Accept  json
// @Produce  json
// @Param   body body service.RegisterRequest true "Registration payload"
// @Success 201 {object} util.Response{data=object} "Created"
// @Failure 400 {object} util.Response "Bad Request"
// @Failure 409 {object} util.Response "Email already registered"
// @Router /api/register [post]
func (c *AuthController) Register(ctx *gin.Context) {
	var req service.RegisterRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.AuthService.Register(req)
	if err != nil {
		if errors.Is(err, util.ErrEmailRegistered) {
			util.Conflict(ctx, "Email is already registered")
			return
		}
		util.HandleServiceError(ctx, err)
		return
	}

	util.Created(ctx, gin.H{"id": user.ID})
}

// Login godoc
// @Summary Log in
// @Description Verify credentials and return a signed token
// @Tags auth
// @Accept  json
// @Produce  json
// @Param   body body service.LoginRequest true "Credentials"
// @Success 200 {object} util.Response{data=object} "Success"
// @Failure 401 {object} util.Response "Invalid credentials"
// @Router /api/login [post]
func (c *AuthController) Login(ctx *gin.Context) {
	var req service.LoginRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	token, user, err := c.AuthService.Login(req)
	if err != nil {
		if errors.Is(err, util.ErrInvalidCredentials) {
			util.Error(ctx, 401, "Invalid email or password")
			return
		}
		util.HandleServiceError(ctx, err)
		return
	}

	util.Success(ctx, gin.H{
		"token": token,
		"user": gin.H{
			"id":    user.ID,
			"name":  user.Name,
			"email": user.Email,
			"role":  user.Role,
		},
	})
}

// GetProfile godoc
// @Summary Get the authenticated user's profile
// @Tags auth
// @Produce  json
// @Security ApiKeyAuth
// @Success 200 {object} util.Response{data=model.User} "Success"
// @Failure 401 {object} util.Response "Unauthorized"
// @Router /api/profile [get]
func (c *AuthController) GetProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	user, err := c.AuthService.GetProfile(claims.UserID)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	user.Password = ""
	util.Success(ctx, user)
}

// UpdateProfile godoc
// @Summary Update profile fields
// @Description Users may only update their own profile
// @Tags auth
// @Accept  json
// @Produce  json
// @Security ApiKeyAuth
// @Param   id path int true "User ID"
// @Param   body body service.UpdateProfileRequest true "Profile fields"
// @Success 200 {object} util.Response{data=model.User} "Success"
// @Failure 403 {object} util.Response "Forbidden"
// @Router /api/users/{id} [put]
func (c *AuthController) UpdateProfile(ctx *gin.Context) {
	claims := util.GetUserFromContext(ctx)
	if claims == nil {
		util.Unauthorized(ctx)
		return
	}

	targetID := util.MustParseUint(ctx.Param("id"))
	if targetID == 0 {
		util.BadRequest(ctx, "invalid user id")
		return
	}
	if targetID != claims.UserID {
		util.Forbidden(ctx)
		return
	}

	var req service.UpdateProfileRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		util.BadRequest(ctx, err.Error())
		return
	}

	user, err := c.AuthService.UpdateProfile(targetID, req)
	if err != nil {
		util.HandleServiceError(ctx, err)
		return
	}

	user.Password = ""
	util.Success(ctx, user)
}
