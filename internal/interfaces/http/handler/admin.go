package handler

import (
	appidentity "github.com/felicity/backend/internal/application/identity"
	"github.com/felicity/backend/internal/domain/identity"
	"github.com/gin-gonic/gin"
)

// AdminHandler handles the admin console: organizer accounts, password reset
// review and platform stats
type AdminHandler struct {
	BaseHandler
	adminService *appidentity.AdminService
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(adminService *appidentity.AdminService) *AdminHandler {
	return &AdminHandler{adminService: adminService}
}

// Stats returns the platform dashboard counters
func (h *AdminHandler) Stats(c *gin.Context) {
	stats, err := h.adminService.Stats(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// CreateOrganizer provisions an organizer account. The generated password is
// returned once and mailed to the organizer.
func (h *AdminHandler) CreateOrganizer(c *gin.Context) {
	var req appidentity.CreateOrganizerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	created, err := h.adminService.CreateOrganizer(c.Request.Context(), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, created)
}

// ListOrganizers lists all organizer accounts
func (h *AdminHandler) ListOrganizers(c *gin.Context) {
	organizers, err := h.adminService.ListOrganizers(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, organizers)
}

// ListPasswordResets lists password reset requests, optionally by status
func (h *AdminHandler) ListPasswordResets(c *gin.Context) {
	var q struct {
		Status string `form:"status" binding:"omitempty,oneof=pending approved rejected"`
	}
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}

	resets, err := h.adminService.ListPasswordResets(c.Request.Context(), identity.PasswordResetStatus(q.Status))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resets)
}

// ApprovePasswordReset approves a reset, regenerates the organizer's password
// and returns it once so the admin can hand it over out of band
func (h *AdminHandler) ApprovePasswordReset(c *gin.Context) {
	adminID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	requestID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid request ID")
		return
	}

	var req appidentity.ProcessPasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, password, err := h.adminService.ApprovePasswordReset(c.Request.Context(), adminID, requestID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, gin.H{"request": resp, "new_password": password})
}

// RejectPasswordReset rejects a reset request with a comment
func (h *AdminHandler) RejectPasswordReset(c *gin.Context) {
	adminID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	requestID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid request ID")
		return
	}

	var req appidentity.ProcessPasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.adminService.RejectPasswordReset(c.Request.Context(), adminID, requestID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, resp)
}
