package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"

	"github.com/todolite/todolite/internal/apperr"
	"github.com/todolite/todolite/internal/email"
	"github.com/todolite/todolite/internal/middleware"
	"github.com/todolite/todolite/internal/models"
	"github.com/todolite/todolite/internal/notifier"
	"github.com/todolite/todolite/internal/service"
)

type UserHandlers struct {
	users       UserStore
	otpService  *service.OTPService
	jwtService  *service.JWTService
	runner      *notifier.Runner
	emailSender email.Sender
	logger      *logrus.Logger
}

func NewUserHandlers(
	users UserStore,
	otpService *service.OTPService,
	jwtService *service.JWTService,
	runner *notifier.Runner,
	emailSender email.Sender,
	logger *logrus.Logger,
) *UserHandlers {
	return &UserHandlers{
		users:       users,
		otpService:  otpService,
		jwtService:  jwtService,
		runner:      runner,
		emailSender: emailSender,
		logger:      logger,
	}
}

type SignUpRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LogInRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type CreateOTPRequest struct {
	Email string `json:"email"`
}

type CreateOTPResponse struct {
	OTP int64 `json:"otp"`
}

type VerifyOTPRequest struct {
	Email string `json:"email"`
	OTP   int64  `json:"otp"`
}

type UserResponse struct {
	ID       int64  `json:"id"`
	Username string `json:"username"`
}

type JWTResponse struct {
	AccessToken string `json:"access_token"`
}

// SignUp hashes the password and persists a new user. The password never
// reaches the store in plain text.
func (h *UserHandlers) SignUp(w http.ResponseWriter, r *http.Request) {
	var req SignUpRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	username := strings.TrimSpace(req.Username)
	if username == "" || req.Password == "" {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Username and password are required")
		return
	}

	hashed, err := service.HashPassword(req.Password)
	if err != nil {
		h.logger.WithError(err).Error("Failed to hash password")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create user")
		return
	}

	user := &models.User{
		Username: username,
		Password: hashed,
	}

	if err := h.users.Create(r.Context(), user); err != nil {
		if errors.Is(err, apperr.ErrConflict) {
			respondWithError(w, http.StatusConflict, "USERNAME_TAKEN", "Username already exists")
			return
		}
		h.logger.WithError(err).Error("Failed to create user")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to create user")
		return
	}

	respondWithJSON(w, http.StatusCreated, UserResponse{
		ID:       user.ID,
		Username: user.Username,
	})
}

// LogIn verifies the credentials and issues an access token. An unknown
// username is 404; a wrong password for an existing user is 401, never 404.
func (h *UserHandlers) LogIn(w http.ResponseWriter, r *http.Request) {
	var req LogInRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	user, err := h.users.GetByUsername(r.Context(), strings.TrimSpace(req.Username))
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
			return
		}
		h.logger.WithError(err).Error("Failed to look up user")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to log in")
		return
	}

	if !service.VerifyPassword(req.Password, user.Password) {
		respondWithError(w, http.StatusUnauthorized, "NOT_AUTHORIZED", "Not authorized")
		return
	}

	token, err := h.jwtService.CreateToken(user.Username)
	if err != nil {
		h.logger.WithError(err).Error("Failed to create access token")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to log in")
		return
	}

	respondWithJSON(w, http.StatusOK, JWTResponse{AccessToken: token})
}

// CreateOTP issues a verification code for the email and schedules the
// delivery email. The caller only has to present a bearer token; the
// identity inside it is not needed until verification. Returning the raw
// code in the response is demo-only behavior.
func (h *UserHandlers) CreateOTP(w http.ResponseWriter, r *http.Request) {
	var req CreateOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	address := strings.TrimSpace(req.Email)
	if address == "" {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Email is required")
		return
	}

	code, err := h.otpService.Issue(r.Context(), address)
	if err != nil {
		h.logger.WithError(err).Error("Failed to issue OTP")
		respondWithError(w, http.StatusInternalServerError, "OTP_GENERATION_FAILED", "Failed to issue OTP")
		return
	}

	ttl := h.otpService.TTL()
	h.runner.Enqueue("send-otp-email", func(ctx context.Context) error {
		return h.emailSender.Send(ctx, address, "Your verification code",
			fmt.Sprintf("Your verification code is %s. It expires in %s.", code, ttl))
	})

	otp, err := strconv.ParseInt(code, 10, 64)
	if err != nil {
		h.logger.WithError(err).Error("Issued OTP is not numeric")
		respondWithError(w, http.StatusInternalServerError, "OTP_GENERATION_FAILED", "Failed to issue OTP")
		return
	}

	respondWithJSON(w, http.StatusOK, CreateOTPResponse{OTP: otp})
}

// VerifyOTP checks the candidate code against the stored one, resolves the
// acting user from the bearer token, records the verified email on the user
// and schedules a confirmation email after the response.
func (h *UserHandlers) VerifyOTP(w http.ResponseWriter, r *http.Request) {
	var req VerifyOTPRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Invalid request body")
		return
	}

	address := strings.TrimSpace(req.Email)
	if address == "" {
		respondWithError(w, http.StatusBadRequest, "INVALID_REQUEST", "Email is required")
		return
	}

	if err := h.otpService.Verify(r.Context(), address, req.OTP); err != nil {
		if errors.Is(err, apperr.ErrValidation) {
			respondWithError(w, http.StatusBadRequest, "INVALID_OTP", "Invalid or expired OTP")
			return
		}
		h.logger.WithError(err).Error("Failed to verify OTP")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to verify OTP")
		return
	}

	token, ok := middleware.AccessToken(r.Context())
	if !ok {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Missing access token")
		return
	}

	username, err := h.jwtService.VerifyToken(token)
	if err != nil {
		respondWithError(w, http.StatusUnauthorized, "UNAUTHORIZED", "Invalid or expired token")
		return
	}

	user, err := h.users.GetByUsername(r.Context(), username)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "USER_NOT_FOUND", "User not found")
			return
		}
		h.logger.WithError(err).Error("Failed to look up user")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to verify OTP")
		return
	}

	if err := h.users.UpdateEmail(r.Context(), user.Username, address); err != nil {
		h.logger.WithError(err).Error("Failed to save verified email")
		respondWithError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "Failed to verify OTP")
		return
	}

	h.runner.Enqueue("send-confirmation-email", func(ctx context.Context) error {
		return h.emailSender.Send(ctx, address, "Email verified",
			fmt.Sprintf("The email address for %s has been verified.", user.Username))
	})

	respondWithJSON(w, http.StatusOK, UserResponse{
		ID:       user.ID,
		Username: user.Username,
	})
}
