package handler

import (
	appfeedback "github.com/felicity/backend/internal/application/feedback"
	"github.com/gin-gonic/gin"
)

// FeedbackHandler handles post-event feedback routes
type FeedbackHandler struct {
	BaseHandler
	feedbackService *appfeedback.FeedbackService
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(feedbackService *appfeedback.FeedbackService) *FeedbackHandler {
	return &FeedbackHandler{feedbackService: feedbackService}
}

// Submit submits feedback for an attended event
func (h *FeedbackHandler) Submit(c *gin.Context) {
	participantID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	eventID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid event ID")
		return
	}

	var req appfeedback.SubmitFeedbackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	fb, err := h.feedbackService.Submit(c.Request.Context(), participantID, eventID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, fb)
}

// List returns an event's feedback with its aggregate. Event owner only.
func (h *FeedbackHandler) List(c *gin.Context) {
	requesterID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	eventID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid event ID")
		return
	}

	var q pageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.feedbackService.List(c.Request.Context(), requesterID, eventID, q.Page, q.PageSize)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, result, result.Total, result.Page, result.PageSize)
}

// Summary returns the event's rating aggregate. Event owner only.
func (h *FeedbackHandler) Summary(c *gin.Context) {
	requesterID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	eventID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid event ID")
		return
	}

	summary, err := h.feedbackService.Summary(c.Request.Context(), requesterID, eventID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, summary)
}

// MyFeedback returns the caller's own feedback for an event
func (h *FeedbackHandler) MyFeedback(c *gin.Context) {
	participantID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	eventID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid event ID")
		return
	}

	fb, err := h.feedbackService.MyFeedback(c.Request.Context(), participantID, eventID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, fb)
}
