package services

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/imanmolsaini/Campus-Connect-sub000/internal/models"
	"github.com/imanmolsaini/Campus-Connect-sub000/internal/repository"
	"github.com/imanmolsaini/Campus-Connect-sub000/pkg/apperrors"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"golang.org/x/crypto/bcrypt"
)

var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

const resetTokenTTL = time.Hour

// UserService encapsulates the business logic for user operations.
type UserService struct {
	repo    UserStore
	mailer  Mailer
	baseURL string
}

// NewUserService creates a new instance of UserService.
func NewUserService(repo UserStore, mailer Mailer, baseURL string) *UserService {
	return &UserService{
		repo:    repo,
		mailer:  mailer,
		baseURL: baseURL,
	}
}

// RegisterInput is the data needed to create an account.
type RegisterInput struct {
	Email    string
	Name     string
	Password string
}

// RegisterUser hashes the password, stores an unverified student account and
// emails a verification link.
func (s *UserService) RegisterUser(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := normalizeEmail(in.Email)
	name := strings.TrimSpace(in.Name)

	if email == "" || name == "" || in.Password == "" {
		logrus.Warn("Missing required fields during registration")
		return nil, apperrors.ErrMissingRegistration
	}
	if !emailRegex.MatchString(email) {
		logrus.WithField("email", email).Warn("Invalid email format during registration")
		return nil, apperrors.InvalidInput("invalid email format")
	}

	// Check if the email is already registered
	if _, err := s.repo.GetUserByEmail(ctx, email); err == nil {
		logrus.WithField("email", email).Warn("Email already in use")
		return nil, apperrors.ErrEmailTaken
	} else if !errors.Is(err, repository.ErrNotFound) {
		return nil, internalError("RegisterUser.GetUserByEmail", err, logrus.Fields{"email": email})
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(in.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, internalError("RegisterUser.Hash", err, nil)
	}

	user := &models.User{
		Email:          email,
		Name:           name,
		HashedPassword: string(hashedPwd),
		Role:           models.RoleStudent,
		IsVerified:     false,
		VerifyToken:    uuid.NewString(),
	}

	createdUser, err := s.repo.CreateUser(ctx, user)
	if err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperrors.ErrEmailTaken
		}
		return nil, internalError("RegisterUser.CreateUser", err, logrus.Fields{"email": email})
	}

	link := fmt.Sprintf("%s/users/verify?token=%s", s.baseURL, createdUser.VerifyToken)
	body := fmt.Sprintf("Welcome to Campus Connect!\n\nPlease verify your email by clicking the link below:\n%s", link)
	if err := s.mailer.SendEmail(createdUser.Email, "Email Verification", body); err != nil {
		logrus.WithError(err).WithField("userID", createdUser.ID.Hex()).Error("Failed to send verification email")
	}

	logrus.WithFields(logrus.Fields{
		"userID": createdUser.ID.Hex(),
		"role":   createdUser.Role,
	}).Info("User registered successfully")

	return createdUser, nil
}

func (s *UserService) VerifyEmail(ctx context.Context, token string) error {
	if strings.TrimSpace(token) == "" {
		return apperrors.ErrInvalidVerifyToken
	}

	user, err := s.repo.GetUserByVerificationToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.ErrInvalidVerifyToken
		}
		return internalError("VerifyEmail.Lookup", err, nil)
	}

	update := map[string]interface{}{
		"is_verified":  true,
		"verify_token": "",
	}
	if _, err := s.repo.UpdateUser(ctx, user.ID, update); err != nil {
		return internalError("VerifyEmail.UpdateUser", err, logrus.Fields{"userID": user.ID.Hex()})
	}

	logrus.WithField("userID", user.ID.Hex()).Info("Email verified")
	return nil
}

func (s *UserService) RequestPasswordReset(ctx context.Context, userEmail string) error {
	user, err := s.repo.GetUserByEmail(ctx, normalizeEmail(userEmail))
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.ErrUserNotFound
		}
		return internalError("RequestPasswordReset.Lookup", err, nil)
	}

	resetToken := uuid.NewString()
	update := map[string]interface{}{
		"reset_token":     resetToken,
		"reset_token_exp": time.Now().UTC().Add(resetTokenTTL),
	}
	if _, err := s.repo.UpdateUser(ctx, user.ID, update); err != nil {
		return internalError("RequestPasswordReset.UpdateUser", err, logrus.Fields{"userID": user.ID.Hex()})
	}

	resetLink := fmt.Sprintf("%s/users/reset-password?token=%s", s.baseURL, resetToken)
	body := fmt.Sprintf("Click the link below to reset your password:\n\n%s", resetLink)
	if err := s.mailer.SendEmail(user.Email, "Reset Your Password", body); err != nil {
		return internalError("RequestPasswordReset.SendEmail", err, logrus.Fields{"userID": user.ID.Hex()})
	}

	logrus.WithField("userID", user.ID.Hex()).Info("Password reset email sent")
	return nil
}

func (s *UserService) ResetPassword(ctx context.Context, token, newPassword string) error {
	if strings.TrimSpace(token) == "" {
		return apperrors.ErrInvalidResetToken
	}
	if newPassword == "" {
		return apperrors.InvalidInput("new password is required")
	}

	user, err := s.repo.GetUserByResetToken(ctx, token)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return apperrors.ErrInvalidResetToken
		}
		return internalError("ResetPassword.Lookup", err, nil)
	}

	if time.Now().After(user.ResetTokenExp) {
		return apperrors.ErrResetTokenExpired
	}

	hashedPwd, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return internalError("ResetPassword.Hash", err, nil)
	}

	update := map[string]interface{}{
		"hashed_password": string(hashedPwd),
		"reset_token":     "",
		"reset_token_exp": time.Time{},
	}
	if _, err := s.repo.UpdateUser(ctx, user.ID, update); err != nil {
		return internalError("ResetPassword.UpdateUser", err, logrus.Fields{"userID": user.ID.Hex()})
	}

	return nil
}

// AuthenticateUser verifies the email and password and returns the user if credentials are valid.
func (s *UserService) AuthenticateUser(ctx context.Context, email, password string) (*models.User, error) {
	email = normalizeEmail(email)
	logrus.WithField("email", email).Info("Authenticating user")

	user, err := s.repo.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			logrus.WithField("email", email).Warn("User not found")
			return nil, apperrors.ErrInvalidCredentials
		}
		return nil, internalError("AuthenticateUser.Lookup", err, logrus.Fields{"email": email})
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(password)); err != nil {
		logrus.WithField("email", email).Warn("Invalid credentials")
		return nil, apperrors.ErrInvalidCredentials
	}

	if !user.IsVerified {
		logrus.WithField("email", email).Warn("Attempt to login with unverified email")
		return nil, apperrors.ErrEmailNotVerified
	}

	logrus.WithField("userID", user.ID.Hex()).Info("User authenticated successfully")
	return user, nil
}

// GetUser retrieves a user by their ID.
func (s *UserService) GetUser(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	user, err := s.repo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, internalError("GetUser", err, logrus.Fields{"userID": id.Hex()})
	}
	return user, nil
}

// UpdateProfile changes the display name of the user.
func (s *UserService) UpdateProfile(ctx context.Context, id primitive.ObjectID, name string) (*models.User, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, apperrors.InvalidInput("name is required")
	}

	user, err := s.repo.UpdateUser(ctx, id, map[string]interface{}{"name": name})
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, internalError("UpdateProfile", err, logrus.Fields{"userID": id.Hex()})
	}

	logrus.WithField("userID", id.Hex()).Info("User profile updated")
	return user, nil
}

func (s *UserService) UpdateLastActive(ctx context.Context, id primitive.ObjectID) error {
	return s.repo.UpdateLastActive(ctx, id)
}

func (s *UserService) GetAllUsers(ctx context.Context) ([]models.User, error) {
	users, err := s.repo.GetAllUsers(ctx)
	if err != nil {
		return nil, internalError("GetAllUsers", err, nil)
	}
	return users, nil
}
