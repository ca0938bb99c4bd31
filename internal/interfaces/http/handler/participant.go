package handler

import (
	appidentity "github.com/felicity/backend/internal/application/identity"
	"github.com/gin-gonic/gin"
)

// ParticipantHandler handles participant profile and organizer-following routes
type ParticipantHandler struct {
	BaseHandler
	userService *appidentity.UserService
}

// NewParticipantHandler creates a new participant handler
func NewParticipantHandler(userService *appidentity.UserService) *ParticipantHandler {
	return &ParticipantHandler{userService: userService}
}

// UpdateProfile updates the participant's editable profile fields
func (h *ParticipantHandler) UpdateProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appidentity.UpdateParticipantProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	profile, err := h.userService.UpdateParticipantProfile(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}

// SetInterests replaces the participant's interest tags
func (h *ParticipantHandler) SetInterests(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appidentity.SetInterestsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	profile, err := h.userService.SetInterests(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}

// FollowOrganizer subscribes the participant to an organizer's events
func (h *ParticipantHandler) FollowOrganizer(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	organizerID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid organizer ID")
		return
	}

	if err := h.userService.FollowOrganizer(c.Request.Context(), userID, organizerID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"following": true})
}

// UnfollowOrganizer removes a follow
func (h *ParticipantHandler) UnfollowOrganizer(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	organizerID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid organizer ID")
		return
	}

	if err := h.userService.UnfollowOrganizer(c.Request.Context(), userID, organizerID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"following": false})
}

// ListOrganizers returns the public organizer directory
func (h *ParticipantHandler) ListOrganizers(c *gin.Context) {
	organizers, err := h.userService.ListOrganizers(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, organizers)
}

// GetOrganizer returns one organizer's public page
func (h *ParticipantHandler) GetOrganizer(c *gin.Context) {
	organizerID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid organizer ID")
		return
	}

	organizer, err := h.userService.GetOrganizer(c.Request.Context(), organizerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, organizer)
}
