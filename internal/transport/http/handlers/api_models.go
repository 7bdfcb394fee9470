package handlers

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/titandealer/portal/internal/core/domain"
	"github.com/titandealer/portal/internal/transport/http/middleware"
)

// ErrorResponse represents a generic error payload with a correlation ID for debugging.
type ErrorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"request_id,omitempty"`
}

// NewErrorResponse creates an error response with the request ID from context.
func NewErrorResponse(c *gin.Context, errorMsg string) ErrorResponse {
	return ErrorResponse{
		Error:     errorMsg,
		RequestID: middleware.GetRequestID(c),
	}
}

// MessageResponse represents a simple message payload.
type MessageResponse struct {
	Message string `json:"message"`
}

// LoginRequest defines the payload for the login endpoint.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LoginResponse describes the response returned for a successful login.
type LoginResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
	Role    string `json:"role"`
}

// ForgotPasswordRequest defines the self-service reset payload.
type ForgotPasswordRequest struct {
	Username string `json:"username" binding:"required"`
}

// ForgotPasswordResponse confirms the reset link delivery target.
type ForgotPasswordResponse struct {
	Message     string `json:"message"`
	MaskedEmail string `json:"maskedEmail"`
}

// ResetPasswordRequest carries the token redemption payload.
type ResetPasswordRequest struct {
	Token       string `json:"token" binding:"required"`
	NewPassword string `json:"newPassword" binding:"required"`
}

// RegisterUserRequest defines the admin registration payload.
type RegisterUserRequest struct {
	Username string `json:"username" binding:"required"`
	Email    string `json:"email" binding:"required"`
	Status   string `json:"status"`
}

// AdminResetPasswordRequest names the account whose credential is rotated.
type AdminResetPasswordRequest struct {
	Username string `json:"username" binding:"required"`
}

// UpdateUserStatusRequest toggles activation on an account.
type UpdateUserStatusRequest struct {
	Username string `json:"username" binding:"required"`
	Status   string `json:"status" binding:"required"`
}

// AccountSummary describes the account view returned to the admin UI.
// Credential material is never serialized.
type AccountSummary struct {
	Username  string    `json:"userName"`
	Email     string    `json:"email"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
}

func newAccountSummary(account domain.Account) AccountSummary {
	return AccountSummary{
		Username:  account.Username,
		Email:     account.Email,
		Status:    string(account.Status),
		CreatedAt: account.CreatedAt,
	}
}

// SubmitIncidentRequest carries the help-form fields.
type SubmitIncidentRequest struct {
	DealerCode string     `json:"dealerCode" binding:"required"`
	Location   string     `json:"location"`
	Region     string     `json:"region"`
	Issue      string     `json:"issue" binding:"required"`
	Email      string     `json:"email" binding:"required"`
	ContactNo  string     `json:"contactNo"`
	Screenshot *string    `json:"screenshot"`
	ReportedAt *time.Time `json:"reportedAt"`
}

// SubmitIncidentResponse returns the generated incident identifier.
type SubmitIncidentResponse struct {
	Message    string `json:"message"`
	IncidentID string `json:"incidentId"`
}

// UpdateIncidentRequest flips the triage flag.
type UpdateIncidentRequest struct {
	Checked *bool `json:"checked" binding:"required"`
}

// IncidentView is the serialized incident returned to the admin UI.
type IncidentView struct {
	ID         string    `json:"id"`
	DealerCode string    `json:"dealerCode"`
	Location   string    `json:"location"`
	Region     string    `json:"region"`
	Issue      string    `json:"issue"`
	Email      string    `json:"email"`
	ContactNo  string    `json:"contactNo"`
	Screenshot *string   `json:"screenshot,omitempty"`
	ReportedAt time.Time `json:"reportedAt"`
	Checked    bool      `json:"checked"`
}

func newIncidentView(incident domain.Incident) IncidentView {
	return IncidentView{
		ID:         incident.ID,
		DealerCode: incident.DealerCode,
		Location:   incident.Location,
		Region:     incident.Region,
		Issue:      incident.Issue,
		Email:      incident.Email,
		ContactNo:  incident.ContactNo,
		Screenshot: incident.Screenshot,
		ReportedAt: incident.ReportedAt,
		Checked:    incident.Checked,
	}
}

// HealthResponse reports liveness information.
type HealthResponse struct {
	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at"`
}

// ReadinessResponse reports per-dependency readiness.
type ReadinessResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks,omitempty"`
}
