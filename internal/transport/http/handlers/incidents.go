package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/titandealer/portal/internal/usecase"
)

// IncidentHandler exposes incident intake and triage endpoints.
type IncidentHandler struct {
	incidents *usecase.IncidentService
}

// NewIncidentHandler constructs IncidentHandler.
func NewIncidentHandler(incidents *usecase.IncidentService) *IncidentHandler {
	return &IncidentHandler{incidents: incidents}
}

// Submit godoc
// @Summary Submit an incident report
// @Description Stores a help-form submission with the triage flag unchecked.
// @Tags Incidents
// @Accept json
// @Produce json
// @Param request body SubmitIncidentRequest true "Incident payload"
// @Success 201 {object} SubmitIncidentResponse
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/incidents [post]
func (h *IncidentHandler) Submit(c *gin.Context) {
	var req SubmitIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "dealerCode, issue and email are required"))
		return
	}

	var reportedAt time.Time
	if req.ReportedAt != nil {
		reportedAt = *req.ReportedAt
	}

	id, err := h.incidents.Submit(c.Request.Context(), usecase.SubmitIncidentInput{
		DealerCode: req.DealerCode,
		Location:   req.Location,
		Region:     req.Region,
		Issue:      req.Issue,
		Email:      req.Email,
		ContactNo:  req.ContactNo,
		Screenshot: req.Screenshot,
		ReportedAt: reportedAt,
	})
	if err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Message: "incident payload is invalid"},
		}, http.StatusInternalServerError, "failed to submit incident")
		return
	}

	c.JSON(http.StatusCreated, SubmitIncidentResponse{
		Message:    "incident reported",
		IncidentID: id,
	})
}

// List godoc
// @Summary List all incidents
// @Description Returns every incident, newest first.
// @Tags Incidents
// @Produce json
// @Success 200 {array} IncidentView
// @Failure 500 {object} ErrorResponse
// @Router /api/get-incidents [get]
func (h *IncidentHandler) List(c *gin.Context) {
	incidents, err := h.incidents.List(c.Request.Context())
	if err != nil {
		c.JSON(http.StatusInternalServerError, NewErrorResponse(c, "failed to list incidents"))
		return
	}

	views := make([]IncidentView, 0, len(incidents))
	for _, incident := range incidents {
		views = append(views, newIncidentView(incident))
	}

	c.JSON(http.StatusOK, views)
}

// Delete godoc
// @Summary Delete an incident
// @Tags Incidents
// @Produce json
// @Param id path string true "Incident identifier"
// @Success 200 {object} MessageResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/delete-incident/{id} [delete]
func (h *IncidentHandler) Delete(c *gin.Context) {
	id := c.Param("id")

	if err := h.incidents.Delete(c.Request.Context(), id); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Message: "incident id is required"},
			{Err: usecase.ErrIncidentNotFound, Status: http.StatusNotFound, Message: "incident not found"},
		}, http.StatusInternalServerError, "failed to delete incident")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "incident deleted"})
}

// UpdateChecked godoc
// @Summary Update the triage flag on an incident
// @Tags Incidents
// @Accept json
// @Produce json
// @Param id path string true "Incident identifier"
// @Param request body UpdateIncidentRequest true "Triage flag payload"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} ErrorResponse
// @Failure 404 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/update-incident/{id} [put]
func (h *IncidentHandler) UpdateChecked(c *gin.Context) {
	id := c.Param("id")

	var req UpdateIncidentRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Checked == nil {
		c.JSON(http.StatusBadRequest, NewErrorResponse(c, "checked flag is required"))
		return
	}

	if err := h.incidents.SetChecked(c.Request.Context(), id, *req.Checked); err != nil {
		RespondWithMappedError(c, err, []ErrorCase{
			{Err: usecase.ErrValidation, Status: http.StatusBadRequest, Message: "incident id is required"},
			{Err: usecase.ErrIncidentNotFound, Status: http.StatusNotFound, Message: "incident not found"},
		}, http.StatusInternalServerError, "failed to update incident")
		return
	}

	c.JSON(http.StatusOK, MessageResponse{Message: "incident updated"})
}
