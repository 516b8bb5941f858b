package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/pricekart/compare-service/internal/accounts"
)

// AccountsHandler serves signup, login and OTP verification.
type AccountsHandler struct {
	svc *accounts.Service
	log zerolog.Logger
}

// NewAccountsHandler creates a new accounts handler
func NewAccountsHandler(svc *accounts.Service, logger *zerolog.Logger) *AccountsHandler {
	return &AccountsHandler{
		svc: svc,
		log: logger.With().Str("component", "accounts_handler").Logger(),
	}
}

// SignupRequest is the body of POST /signup.
type SignupRequest struct {
	Name     string `json:"name" binding:"required" jsonschema:"required"`
	Mobile   string `json:"mobile" binding:"required" jsonschema:"required"`
	Password string `json:"password" binding:"required" jsonschema:"required"`
}

// LoginRequest is the body of POST /login.
type LoginRequest struct {
	Mobile   string `json:"mobile" binding:"required" jsonschema:"required"`
	Password string `json:"password" binding:"required" jsonschema:"required"`
}

// SendOTPRequest is the body of POST /send-otp.
type SendOTPRequest struct {
	Mobile string `json:"mobile" binding:"required" jsonschema:"required"`
}

// ConfirmOTPRequest is the body of POST /confirm-otp.
type ConfirmOTPRequest struct {
	Mobile string `json:"mobile" binding:"required" jsonschema:"required"`
	OTP    string `json:"otp" binding:"required" jsonschema:"required"`
}

// UserResponse is the success envelope for signup and login.
type UserResponse struct {
	Status string         `json:"status" jsonschema:"required"`
	Data   *accounts.User `json:"data" jsonschema:"required"`
}

// Signup registers a new user account
// @Summary Register a new user
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body SignupRequest true "New account details"
// @Success 200 {object} UserResponse
// @Failure 400 {object} map[string]string "Bad request or mobile already registered"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /signup [post]
func (h *AccountsHandler) Signup(c *gin.Context) {
	var req SignupRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.svc.SignUp(c.Request.Context(), req.Name, req.Mobile, req.Password)
	if err != nil {
		if errors.Is(err, accounts.ErrMobileTaken) {
			respondError(c, http.StatusBadRequest, "mobile already registered")
			return
		}
		h.log.Error().Err(err).Msg("signup failed")
		respondError(c, http.StatusInternalServerError, "signup failed")
		return
	}

	c.JSON(http.StatusOK, UserResponse{Status: statusSuccess, Data: user})
}

// Login authenticates a user by mobile and password
// @Summary Log in with mobile and password
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body LoginRequest true "Login credentials"
// @Success 200 {object} UserResponse
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 401 {object} map[string]string "Invalid credentials"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /login [post]
func (h *AccountsHandler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	user, err := h.svc.Login(c.Request.Context(), req.Mobile, req.Password)
	if err != nil {
		if errors.Is(err, accounts.ErrInvalidCredentials) {
			respondError(c, http.StatusUnauthorized, "invalid credentials")
			return
		}
		h.log.Error().Err(err).Msg("login failed")
		respondError(c, http.StatusInternalServerError, "login failed")
		return
	}

	c.JSON(http.StatusOK, UserResponse{Status: statusSuccess, Data: user})
}

// SendOTP issues a one-time code to the given mobile number
// @Summary Send a one-time verification code
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body SendOTPRequest true "Mobile number"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string "Bad request"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /send-otp [post]
func (h *AccountsHandler) SendOTP(c *gin.Context) {
	var req SendOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.SendOTP(c.Request.Context(), req.Mobile); err != nil {
		h.log.Error().Err(err).Msg("send otp failed")
		respondError(c, http.StatusInternalServerError, "could not send otp")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "message": "otp sent"})
}

// ConfirmOTP verifies a one-time code
// @Summary Verify a one-time code
// @Tags accounts
// @Accept json
// @Produce json
// @Param request body ConfirmOTPRequest true "Mobile number and code"
// @Success 200 {object} map[string]string
// @Failure 400 {object} map[string]string "Bad request or invalid code"
// @Failure 500 {object} map[string]string "Internal server error"
// @Router /confirm-otp [post]
func (h *AccountsHandler) ConfirmOTP(c *gin.Context) {
	var req ConfirmOTPRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.svc.ConfirmOTP(c.Request.Context(), req.Mobile, req.OTP); err != nil {
		if errors.Is(err, accounts.ErrOTPInvalid) {
			respondError(c, http.StatusBadRequest, "invalid or expired otp")
			return
		}
		h.log.Error().Err(err).Msg("confirm otp failed")
		respondError(c, http.StatusInternalServerError, "could not verify otp")
		return
	}

	c.JSON(http.StatusOK, gin.H{"status": statusSuccess, "message": "otp verified"})
}
