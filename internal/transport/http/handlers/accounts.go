package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/titandealer/portal/internal/usecase"
)

// AccountHandler exposes account lifecycle endpoints.
type AccountHandler struct {
	accounts *usecase.AccountService
}

// NewAccountHandler constructs AccountHandler.
func NewAccountHandler(accounts *usecase.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

// ForgotPassword godoc
// @Summary Request a password reset link
// @Description Issues a one-hour single-use reset token and emails a link embedding it.
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body ForgotPasswordRequest true "Reset request payload"
// @Success 200 {object} ForgotPasswordResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/forgot-password [post]
func (h *AccountHandler) ForgotPassword(c *gin.Context) {
	var req ForgotPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "username is required"))
		return
	}

	result, err := h.accounts.RequestPasswordReset(c.Request.Context(), req.Username)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Message: "username is required"},
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "no account found for that username"},
			{Err: usecase.ErrAccountInactive, Status: http.StatusNotFound, Message: "account is inactive, password reset is not available"},
			{Err: usecase.ErrNotifierUnavailable, Status: http.StatusInternalServerError, Message: "email service unavailable, contact the administrator"},
		}, http.StatusInternalServerError, "failed to process password reset request")
		return
	}

	c.JSON(http.StatusOK, ForgotPasswordResponse{
		Message:     "password reset link sent",
		MaskedEmail: result.MaskedEmail,
	})
}

// ResetPassword godoc
// @Summary Redeem a password reset token
// @Description Consumes an unexpired single-use token and installs the new password.
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body ResetPasswordRequest true "Token redemption payload"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/reset-password [post]
func (h *AccountHandler) ResetPassword(c *gin.Context) {
	var req ResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "token and new password are required"))
		return
	}

	err := h.accounts.ConsumePasswordReset(c.Request.Context(), req.Token, req.NewPassword)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Message: "token and new password are required"},
			{Err: usecase.ErrPasswordPolicy, Status: http.StatusBadRequest, Message: "password does not meet the policy"},
			{Err: usecase.ErrResetTokenInvalid, Status: http.StatusBadRequest, Message: "reset token is invalid or expired"},
		}, http.StatusInternalServerError, "failed to reset password")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "password has been reset"})
}

// RegisterUser godoc
// @Summary Register a dealer account
// @Description Creates an account with a generated password and emails the credentials.
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body RegisterUserRequest true "Registration payload"
// @Success 201 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 409 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/register-user [post]
func (h *AccountHandler) RegisterUser(c *gin.Context) {
	var req RegisterUserRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "username and email are required"))
		return
	}

	_, err := h.accounts.Register(c.Request.Context(), usecase.RegisterInput{
		Username: req.Username,
		Email:    req.Email,
		Status:   req.Status,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Message: "username and email are required"},
			{Err: usecase.ErrUsernameTaken, Status: http.StatusConflict, Message: "user already exists"},
			{Err: usecase.ErrNotifierUnavailable, Status: http.StatusInternalServerError, Message: "email service unavailable, contact the administrator"},
		}, http.StatusInternalServerError, "failed to register user")
		return
	}

	c.JSON(http.StatusCreated, MessageResponse{Message: "user registered, credentials sent by email"})
}

// ListUsers godoc
// @Summary List all accounts
// @Description Returns every account including the built-in administrator. Credential material is never returned.
// @Tags Accounts
// @Produce json
// @Success 200 {array} AccountSummary
// @Failure 500 {object} ErrorResponse
// @Router /api/get-users [get]
func (h *AccountHandler) ListUsers(c *gin.Context) {
	accounts, err := h.accounts.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list users"))
		return
	}

	summaries := make([]AccountSummary, 0, len(accounts))
	for _, account := range accounts {
		summaries = append(summaries, newAccountSummary(account))
	}

	c.JSON(http.StatusOK, summaries)
}

// AdminResetPassword godoc
// @Summary Rotate an account password
// @Description Generates a fresh password for the account and emails it to the dealer.
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body AdminResetPasswordRequest true "Target account"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/admin-reset-password [post]
func (h *AccountHandler) AdminResetPassword(c *gin.Context) {
	var req AdminResetPasswordRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "username is required"))
		return
	}

	_, err := h.accounts.AdminResetPassword(c.Request.Context(), req.Username)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Message: "username is required"},
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "no account found for that username"},
			{Err: usecase.ErrNotifierUnavailable, Status: http.StatusInternalServerError, Message: "email service unavailable, contact the administrator"},
		}, http.StatusInternalServerError, "failed to reset password")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "new password sent to the registered email"})
}

// UpdateUserStatus godoc
// @Summary Activate or deactivate an account
// @Description Sets the account status. Only "active" and "inactive" are accepted.
// @Tags Accounts
// @Accept json
// @Produce json
// @Param request body UpdateUserStatusRequest true "Status update payload"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/update-user-status [put]
func (h *AccountHandler) UpdateUserStatus(c *gin.Context) {
	var req UpdateUserStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "username and status are required"))
		return
	}

	_, err := h.accounts.SetStatus(c.Request.Context(), req.Username, req.Status)
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Message: "status must be 'active' or 'inactive'"},
			{Err: usecase.ErrAccountNotFound, Status: http.StatusNotFound, Message: "no account found for that username"},
		}, http.StatusInternalServerError, "failed to update user status")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "user status updated"})
}
