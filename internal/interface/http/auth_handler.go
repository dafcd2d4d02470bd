package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/quranapp/backend/internal/application"
	"github.com/quranapp/backend/pkg/helpers"
	"github.com/quranapp/backend/pkg/response"
	"github.com/quranapp/backend/pkg/validation"
)

type AuthHandler struct {
	Svc     *application.Service
	Logger  *logrus.Logger
	Cookies *helpers.Manager
}

func NewAuthHandler(svc *application.Service, logger *logrus.Logger, cookieDomain string, cookieSecure bool) *AuthHandler {
	return &AuthHandler{Svc: svc, Logger: logger, Cookies: helpers.NewCookie(cookieDomain, cookieSecure)}
}

type registerRequest struct {
	Email       string `json:"email" binding:"required,email"`
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	Password    string `json:"password" binding:"required,pwd"`
	DisplayName string `json:"displayName" binding:"required"`
}

type verifyOTPRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
	OTP         string `json:"otp" binding:"required,len=6,numeric"`
	Email       string `json:"email" binding:"required,email"`
}

type resendOTPRequest struct {
	PhoneNumber string `json:"phoneNumber" binding:"required"`
}

type loginRequest struct {
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required"`
}

// Register POST /auth/register
func (h *AuthHandler) Register(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	err := h.Svc.Register(c.Request.Context(), application.RegisterInput{
		Email:       req.Email,
		PhoneNumber: req.PhoneNumber,
		Password:    req.Password,
		DisplayName: req.DisplayName,
	})
	switch {
	case err == nil:
		response.Success[any](c, http.StatusCreated, nil, "OTP sent to your WhatsApp, verify it to complete registration", nil)
	case errors.Is(err, application.ErrInvalidPhoneNumber):
		response.Error[any](c, http.StatusBadRequest, "phone number must start with 0 or 62", nil)
	case errors.Is(err, application.ErrDuplicateAccount):
		response.Error[any](c, http.StatusBadRequest, "email or phone number already registered", nil)
	default:
		h.Logger.WithError(err).Error("register failed")
		response.Error[any](c, http.StatusInternalServerError, "registration failed", nil)
	}
}

// VerifyOTP POST /auth/verify-otp
func (h *AuthHandler) VerifyOTP(c *gin.Context) {
	var req verifyOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	err := h.Svc.VerifyOTP(c.Request.Context(), req.PhoneNumber, req.Email, req.OTP)
	switch {
	case err == nil:
		response.Success[any](c, http.StatusOK, nil, "OTP verified, registration complete", nil)
	case errors.Is(err, application.ErrInvalidPhoneNumber):
		response.Error[any](c, http.StatusBadRequest, "phone number must start with 0 or 62", nil)
	case errors.Is(err, application.ErrOTPNotFound):
		response.Error[any](c, http.StatusBadRequest, "no pending OTP for this phone number and email", nil)
	case errors.Is(err, application.ErrOTPInvalidOrExpired):
		response.Error[any](c, http.StatusBadRequest, "OTP is invalid or has expired", nil)
	default:
		h.Logger.WithError(err).Error("verify otp failed")
		response.Error[any](c, http.StatusInternalServerError, "verification failed", nil)
	}
}

// ResendOTP POST /auth/resend-otp
func (h *AuthHandler) ResendOTP(c *gin.Context) {
	var req resendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	err := h.Svc.ResendOTP(c.Request.Context(), req.PhoneNumber)
	switch {
	case err == nil:
		response.Success[any](c, http.StatusOK, nil, "OTP resent to your WhatsApp", nil)
	case errors.Is(err, application.ErrInvalidPhoneNumber):
		response.Error[any](c, http.StatusBadRequest, "phone number must start with 0 or 62", nil)
	case errors.Is(err, application.ErrOTPNotFound):
		response.Error[any](c, http.StatusBadRequest, "phone number not found, register first", nil)
	default:
		h.Logger.WithError(err).Error("resend otp failed")
		response.Error[any](c, http.StatusInternalServerError, "resend failed", nil)
	}
}

// Login POST /auth/login
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid payload", validation.ToDetails(err))
		return
	}

	u, err := h.Svc.Authenticate(c.Request.Context(), req.Email, req.Password)
	if err != nil {
		response.Error[any](c, http.StatusBadRequest, "invalid email or password", nil)
		return
	}

	if h.Svc.JWT != nil {
		pair, tErr := h.Svc.IssueTokens(c.Request.Context(), u)
		if tErr != nil {
			h.Logger.WithError(tErr).WithField("user_id", u.ID).Error("issue tokens failed")
			response.Error[any](c, http.StatusInternalServerError, "login failed", nil)
			return
		}
		h.Cookies.SetPair(c, pair.AccessToken, pair.AccessTokenExpiry, pair.RefreshToken, pair.RefreshTokenExpiry)
	}

	response.Success(c, http.StatusOK, gin.H{
		"id":          u.ID,
		"displayName": u.Name,
		"email":       u.Email,
		"phoneNumber": u.PhoneNumber,
	}, "login successful", nil)
}
