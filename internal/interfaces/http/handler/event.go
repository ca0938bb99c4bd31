package handler

import (
	appevent "github.com/felicity/backend/internal/application/event"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// EventHandler handles event discovery and organizer event management
type EventHandler struct {
	BaseHandler
	eventService *appevent.EventService
}

// NewEventHandler creates a new event handler
func NewEventHandler(eventService *appevent.EventService) *EventHandler {
	return &EventHandler{eventService: eventService}
}

// List returns published events matching the query. Anonymous viewers get the
// public listing; authenticated participants can ask for personalized sorting.
func (h *EventHandler) List(c *gin.Context) {
	var q appevent.ListQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.eventService.List(c.Request.Context(), optionalUserID(c), q)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Events, result.Total, result.Page, result.PageSize)
}

// Trending returns the most viewed events of the trending window
func (h *EventHandler) Trending(c *gin.Context) {
	events, err := h.eventService.Trending(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, events)
}

// Recommended returns upcoming events ranked for the participant
func (h *EventHandler) Recommended(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	events, err := h.eventService.Recommended(c.Request.Context(), userID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, events)
}

// GetDetail returns one event, counting the view for published events
func (h *EventHandler) GetDetail(c *gin.Context) {
	eventID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid event ID")
		return
	}

	ev, err := h.eventService.GetDetail(c.Request.Context(), optionalUserID(c), eventID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ev)
}

// Create creates a draft event owned by the calling organizer
func (h *EventHandler) Create(c *gin.Context) {
	organizerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appevent.CreateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	ev, err := h.eventService.CreateEvent(c.Request.Context(), organizerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, ev)
}

// Update edits an event. Published events only accept the post-publish
// editable fields.
func (h *EventHandler) Update(c *gin.Context) {
	organizerID, eventID, ok := h.ownerAndEvent(c)
	if !ok {
		return
	}

	var req appevent.UpdateEventRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	ev, err := h.eventService.UpdateEvent(c.Request.Context(), organizerID, eventID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ev)
}

// SetSchedule sets the event's deadline and start/end dates
func (h *EventHandler) SetSchedule(c *gin.Context) {
	organizerID, eventID, ok := h.ownerAndEvent(c)
	if !ok {
		return
	}

	var req appevent.ScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	ev, err := h.eventService.SetSchedule(c.Request.Context(), organizerID, eventID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ev)
}

// SetForm replaces the event's custom registration form
func (h *EventHandler) SetForm(c *gin.Context) {
	organizerID, eventID, ok := h.ownerAndEvent(c)
	if !ok {
		return
	}

	var req appevent.SetFormRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	ev, err := h.eventService.SetCustomForm(c.Request.Context(), organizerID, eventID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ev)
}

// Publish opens the event for registration and announces it
func (h *EventHandler) Publish(c *gin.Context) {
	organizerID, eventID, ok := h.ownerAndEvent(c)
	if !ok {
		return
	}

	ev, err := h.eventService.Publish(c.Request.Context(), organizerID, eventID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ev)
}

// ChangeStatus moves the event along its lifecycle
func (h *EventHandler) ChangeStatus(c *gin.Context) {
	organizerID, eventID, ok := h.ownerAndEvent(c)
	if !ok {
		return
	}

	var req appevent.StatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	ev, err := h.eventService.ChangeStatus(c.Request.Context(), organizerID, eventID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ev)
}

// Delete removes a draft event
func (h *EventHandler) Delete(c *gin.Context) {
	organizerID, eventID, ok := h.ownerAndEvent(c)
	if !ok {
		return
	}

	if err := h.eventService.DeleteEvent(c.Request.Context(), organizerID, eventID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// SaveVariant adds or restocks a merchandise variant on a draft event
func (h *EventHandler) SaveVariant(c *gin.Context) {
	organizerID, eventID, ok := h.ownerAndEvent(c)
	if !ok {
		return
	}

	var req appevent.VariantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	ev, err := h.eventService.SaveVariant(c.Request.Context(), organizerID, eventID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ev)
}

// DeleteVariant removes a merchandise variant from a draft event
func (h *EventHandler) DeleteVariant(c *gin.Context) {
	organizerID, eventID, ok := h.ownerAndEvent(c)
	if !ok {
		return
	}

	variantID, err := parseUUIDParam(c, "variant_id")
	if err != nil {
		h.BadRequest(c, "Invalid variant ID")
		return
	}

	if err := h.eventService.DeleteVariant(c.Request.Context(), organizerID, eventID, variantID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// ownerAndEvent extracts the caller and the event path parameter
func (h *EventHandler) ownerAndEvent(c *gin.Context) (organizerID, eventID uuid.UUID, ok bool) {
	organizerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return organizerID, eventID, false
	}
	eventID, err = parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid event ID")
		return organizerID, eventID, false
	}
	return organizerID, eventID, true
}
