package handlers

import (
	"net/http"
	"time"

	"github.com/imanmolsaini/Campus-Connect-sub000/internal/config"
	"github.com/imanmolsaini/Campus-Connect-sub000/internal/services"
	"github.com/imanmolsaini/Campus-Connect-sub000/pkg/apperrors"
	jwtutil "github.com/imanmolsaini/Campus-Connect-sub000/pkg/jwt"
	"github.com/imanmolsaini/Campus-Connect-sub000/pkg/response"
	log "github.com/sirupsen/logrus"
)

// UserHandler handles HTTP requests related to user operations.
type UserHandler struct {
	Service     UserService
	JWTSecret   string
	TokenExpiry time.Duration
}

// NewUserHandler creates a new instance of UserHandler.
func NewUserHandler(service UserService, cfg *config.Config) *UserHandler {
	return &UserHandler{
		Service:     service,
		JWTSecret:   cfg.JWTSecret,
		TokenExpiry: cfg.TokenExpiry,
	}
}

type registerRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Name     string `json:"name" validate:"required,max=100"`
	Password string `json:"password" validate:"required,min=6,max=72"`
}

type loginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type passwordResetRequest struct {
	Email string `json:"email" validate:"required,email"`
}

type resetPasswordRequest struct {
	Token       string `json:"token" validate:"required"`
	NewPassword string `json:"new_password" validate:"required,min=6,max=72"`
}

type updateProfileRequest struct {
	Name string `json:"name" validate:"required,max=100"`
}

// RegisterUserHandler handles user registration.
func (h *UserHandler) RegisterUserHandler(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := decodeJSON(w, r, &req); err != nil {
		log.WithError(err).Warn("Invalid registration request")
		response.Error(w, err)
		return
	}

	user, err := h.Service.RegisterUser(r.Context(), services.RegisterInput{
		Email:    req.Email,
		Name:     req.Name,
		Password: req.Password,
	})
	if err != nil {
		response.Error(w, err)
		return
	}

	response.Created(w, "Registration successful, please verify your email", user)
}

// LoginUserHandler handles user login.
func (h *UserHandler) LoginUserHandler(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, err)
		return
	}

	user, err := h.Service.AuthenticateUser(r.Context(), req.Email, req.Password)
	if err != nil {
		log.WithError(err).WithField("email", req.Email).Warn("Authentication failed")
		response.Error(w, err)
		return
	}

	token, err := jwtutil.GenerateToken(user.ID.Hex(), user.Email, user.Role, h.JWTSecret, h.TokenExpiry)
	if err != nil {
		log.WithError(err).Error("Failed to generate JWT token")
		response.Error(w, apperrors.Internal("failed to generate token", err))
		return
	}

	response.OK(w, "Login successful", map[string]interface{}{
		"token": token,
		"user":  user,
	})
}

// VerifyEmailHandler consumes the link sent at registration.
func (h *UserHandler) VerifyEmailHandler(w http.ResponseWriter, r *http.Request) {
	if err := h.Service.VerifyEmail(r.Context(), r.URL.Query().Get("token")); err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, "Email verified successfully", nil)
}

func (h *UserHandler) RequestPasswordResetHandler(w http.ResponseWriter, r *http.Request) {
	var req passwordResetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, err)
		return
	}

	if err := h.Service.RequestPasswordReset(r.Context(), req.Email); err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, "Password reset email sent", nil)
}

func (h *UserHandler) ResetPasswordHandler(w http.ResponseWriter, r *http.Request) {
	var req resetPasswordRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, err)
		return
	}

	if err := h.Service.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, "Password has been reset", nil)
}

// GetMeHandler returns the caller's own profile.
func (h *UserHandler) GetMeHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	user, err := h.Service.GetUser(r.Context(), userID)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, "Profile fetched", user)
}

// UpdateMeHandler changes the caller's display name.
func (h *UserHandler) UpdateMeHandler(w http.ResponseWriter, r *http.Request) {
	userID, err := currentUserID(r)
	if err != nil {
		response.Error(w, err)
		return
	}

	var req updateProfileRequest
	if err := decodeJSON(w, r, &req); err != nil {
		response.Error(w, err)
		return
	}

	user, err := h.Service.UpdateProfile(r.Context(), userID, req.Name)
	if err != nil {
		response.Error(w, err)
		return
	}
	response.OK(w, "Profile updated", user)
}

// AdminGetAllUsersHandler lists every account. Mounted behind RequireRole("admin").
func (h *UserHandler) AdminGetAllUsersHandler(w http.ResponseWriter, r *http.Request) {
	users, err := h.Service.GetAllUsers(r.Context())
	if err != nil {
		response.Error(w, err)
		return
	}

	log.WithField("count", len(users)).Info("Admin fetched users")
	response.OK(w, "Users fetched", users)
}
