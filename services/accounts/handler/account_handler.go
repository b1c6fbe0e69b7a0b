package handler

import (
	"context"
	"net/http"

	"auction-house/internal/auth"
	model "auction-house/internal/models"
	"auction-house/services/helpers"
	"auction-house/utils"

	"github.com/gin-gonic/gin"
)

type AccountServiceInterface interface {
	Register(ctx context.Context, in model.Registration) (model.User, error)
	Login(ctx context.Context, username, password string) (model.Session, error)
	Logout(ctx context.Context, claims *auth.Claims) error
	ResetPassword(ctx context.Context, userID string, in model.PasswordChange) error
	EditProfile(ctx context.Context, callerID, userID string, in model.ProfileUpdate) (model.User, error)
	GetProfile(ctx context.Context, username string, page model.Page) (model.UserProfile, error)
	ListUsers(ctx context.Context, page model.Page) ([]model.User, error)
}

type AccountHandler struct {
	service AccountServiceInterface
}

func NewAccountHandler(service AccountServiceInterface) *AccountHandler {
	return &AccountHandler{service: service}
}

// RegisterHandler handles POST /accounts/register
func (h *AccountHandler) RegisterHandler(c *gin.Context) {
	var req helpers.RegisterRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "RegisterHandler", err)
		return
	}

	user, err := h.service.Register(c.Request.Context(), req.Model())
	if err != nil {
		helpers.RespondError(c, "RegisterHandler", err, map[string]any{"username": req.Username})
		return
	}

	utils.JSONResponse(c, http.StatusCreated, user, "account created successfully")
	helpers.LogSuccess("RegisterHandler", "account created", map[string]any{"user_id": user.ID})
}

// LoginHandler handles POST /accounts/login
func (h *AccountHandler) LoginHandler(c *gin.Context) {
	var req helpers.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "LoginHandler", err)
		return
	}

	session, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		helpers.RespondError(c, "LoginHandler", err, map[string]any{"username": req.Username})
		return
	}

	utils.JSONResponse(c, http.StatusOK, session, "logged in successfully")
	helpers.LogSuccess("LoginHandler", "user logged in", map[string]any{"user_id": session.User.ID})
}

// LogoutHandler handles POST /accounts/logout
func (h *AccountHandler) LogoutHandler(c *gin.Context) {
	claims := helpers.Claims(c)
	if err := h.service.Logout(c.Request.Context(), claims); err != nil {
		helpers.RespondError(c, "LogoutHandler", err, nil)
		return
	}
	utils.JSONResponse(c, http.StatusOK, nil, "logged out successfully")
}

// ResetPasswordHandler handles POST /accounts/password
func (h *AccountHandler) ResetPasswordHandler(c *gin.Context) {
	var req helpers.PasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "ResetPasswordHandler", err)
		return
	}

	userID := helpers.CallerID(c)
	in := model.PasswordChange{Password: req.Password, ConfirmPassword: req.ConfirmPassword}
	if err := h.service.ResetPassword(c.Request.Context(), userID, in); err != nil {
		helpers.RespondError(c, "ResetPasswordHandler", err, map[string]any{"user_id": userID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, nil, "password changed successfully")
	helpers.LogSuccess("ResetPasswordHandler", "password changed", map[string]any{"user_id": userID})
}

// ListUsersHandler handles GET /users
func (h *AccountHandler) ListUsersHandler(c *gin.Context) {
	page, err := helpers.ParsePage(c)
	if err != nil {
		helpers.RespondError(c, "ListUsersHandler", err, nil)
		return
	}

	users, err := h.service.ListUsers(c.Request.Context(), page)
	if err != nil {
		helpers.RespondError(c, "ListUsersHandler", err, nil)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	utils.JSONResponse(c, http.StatusOK, users, "users retrieved successfully")
}

// GetProfileHandler handles GET /users/:username
func (h *AccountHandler) GetProfileHandler(c *gin.Context) {
	username := c.Param("username")
	page, err := helpers.ParsePage(c)
	if err != nil {
		helpers.RespondError(c, "GetProfileHandler", err, nil)
		return
	}

	profile, err := h.service.GetProfile(c.Request.Context(), username, page)
	if err != nil {
		helpers.RespondError(c, "GetProfileHandler", err, map[string]any{"username": username})
		return
	}

	utils.JSONResponse(c, http.StatusOK, gin.H{
		"user": profile.User,
		"bids": helpers.NewBidResponses(profile.Bids),
	}, "profile retrieved successfully")
}

// EditProfileHandler handles PUT /users/:user_id
func (h *AccountHandler) EditProfileHandler(c *gin.Context) {
	userID := helpers.PathID(c, "user_id")
	var req helpers.ProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		helpers.HandleBindError(c, "EditProfileHandler", err)
		return
	}

	callerID := helpers.CallerID(c)
	user, err := h.service.EditProfile(c.Request.Context(), callerID, userID, req.Model())
	if err != nil {
		helpers.RespondError(c, "EditProfileHandler", err, map[string]any{"user_id": userID, "caller_id": callerID})
		return
	}

	utils.JSONResponse(c, http.StatusOK, user, "profile updated successfully")
	helpers.LogSuccess("EditProfileHandler", "profile updated", map[string]any{"user_id": userID})
}
