package handler

import (
	"fmt"
	"net/http"

	appevent "github.com/felicity/backend/internal/application/event"
	appidentity "github.com/felicity/backend/internal/application/identity"
	appreg "github.com/felicity/backend/internal/application/registration"
	"github.com/felicity/backend/internal/domain/registration"
	"github.com/felicity/backend/internal/infrastructure/export"
	"github.com/gin-gonic/gin"
)

// OrganizerHandler handles the organizer console: dashboard, order approval,
// attendance and exports
type OrganizerHandler struct {
	BaseHandler
	eventService      *appevent.EventService
	userService       *appidentity.UserService
	adminService      *appidentity.AdminService
	approvalService   *appreg.ApprovalService
	attendanceService *appreg.AttendanceService
	exportService     *appreg.ExportService
}

// NewOrganizerHandler creates a new organizer handler
func NewOrganizerHandler(
	eventService *appevent.EventService,
	userService *appidentity.UserService,
	adminService *appidentity.AdminService,
	approvalService *appreg.ApprovalService,
	attendanceService *appreg.AttendanceService,
	exportService *appreg.ExportService,
) *OrganizerHandler {
	return &OrganizerHandler{
		eventService:      eventService,
		userService:       userService,
		adminService:      adminService,
		approvalService:   approvalService,
		attendanceService: attendanceService,
		exportService:     exportService,
	}
}

// registrationFilterQuery binds the common registration list filters
type registrationFilterQuery struct {
	Type           string `form:"type" binding:"omitempty,oneof=normal merchandise"`
	Status         string `form:"status" binding:"omitempty,oneof=registered cancelled rejected waitlisted"`
	ApprovalStatus string `form:"approval_status" binding:"omitempty,oneof=pending approved rejected"`
	Attended       *bool  `form:"attended"`
	Page           int    `form:"page"`
	PageSize       int    `form:"page_size"`
}

func (q registrationFilterQuery) toFilter() registration.Filter {
	f := registration.NewFilter()
	if q.Type != "" {
		t := registration.RegistrationType(q.Type)
		f.Type = &t
	}
	if q.Status != "" {
		s := registration.Status(q.Status)
		f.Status = &s
	}
	if q.ApprovalStatus != "" {
		a := registration.ApprovalStatus(q.ApprovalStatus)
		f.ApprovalStatus = &a
	}
	f.Attended = q.Attended
	if q.Page > 0 {
		f.Page = q.Page
	}
	if q.PageSize > 0 {
		f.PageSize = q.PageSize
	}
	return f
}

// Dashboard returns the organizer's events with aggregate analytics
func (h *OrganizerHandler) Dashboard(c *gin.Context) {
	organizerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	dashboard, err := h.eventService.Dashboard(c.Request.Context(), organizerID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dashboard)
}

// GetOwnedEvent returns the organizer's own event with per-event analytics
func (h *OrganizerHandler) GetOwnedEvent(c *gin.Context) {
	organizerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	eventID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid event ID")
		return
	}

	ev, err := h.eventService.GetOwned(c.Request.Context(), organizerID, eventID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, ev)
}

// ListOrders lists an event's registrations and merchandise orders
func (h *OrganizerHandler) ListOrders(c *gin.Context) {
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

	var q registrationFilterQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	filter := q.toFilter()

	orders, total, err := h.approvalService.ListOrders(c.Request.Context(), requesterID, eventID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, orders, total, filter.Page, filter.PageSize)
}

// ApproveOrder approves a pending merchandise order and issues the ticket
func (h *OrganizerHandler) ApproveOrder(c *gin.Context) {
	approverID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	registrationID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid registration ID")
		return
	}

	order, err := h.approvalService.Approve(c.Request.Context(), approverID, registrationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// RejectOrder rejects a pending merchandise order
func (h *OrganizerHandler) RejectOrder(c *gin.Context) {
	approverID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	registrationID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid registration ID")
		return
	}

	var req appreg.RejectOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	order, err := h.approvalService.Reject(c.Request.Context(), approverID, registrationID, req.Reason)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// ScanTicket marks attendance from a QR scan at the venue
func (h *OrganizerHandler) ScanTicket(c *gin.Context) {
	scannerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appreg.ScanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.attendanceService.ScanTicket(c.Request.Context(), scannerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// MarkAttendance marks attendance manually with a reason
func (h *OrganizerHandler) MarkAttendance(c *gin.Context) {
	scannerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appreg.ManualAttendanceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	result, err := h.attendanceService.MarkManually(c.Request.Context(), scannerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// VerifyTicket looks a ticket up without marking attendance
func (h *OrganizerHandler) VerifyTicket(c *gin.Context) {
	requesterID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	ticketID := c.Param("ticket_id")
	if ticketID == "" {
		h.BadRequest(c, "Missing ticket ID")
		return
	}

	reg, err := h.attendanceService.VerifyTicket(c.Request.Context(), requesterID, ticketID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reg)
}

// ListAttendance lists an event's attendance records
func (h *OrganizerHandler) ListAttendance(c *gin.Context) {
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

	var q registrationFilterQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		h.BindError(c, err)
		return
	}
	filter := q.toFilter()

	records, total, err := h.attendanceService.ListAttendance(c.Request.Context(), requesterID, eventID, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.SuccessWithMeta(c, records, total, filter.Page, filter.PageSize)
}

// AttendanceStats returns attendance totals for an event
func (h *OrganizerHandler) AttendanceStats(c *gin.Context) {
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

	stats, err := h.attendanceService.Stats(c.Request.Context(), requesterID, eventID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, stats)
}

// ExportParticipants streams the event's participant list as CSV
func (h *OrganizerHandler) ExportParticipants(c *gin.Context) {
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

	rows, eventName, err := h.exportService.ParticipantRows(c.Request.Context(), requesterID, eventID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]export.ParticipantRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, export.ParticipantRow{
			TicketID:      r.TicketID,
			FirstName:     r.FirstName,
			LastName:      r.LastName,
			Email:         r.Email,
			Contact:       r.Contact,
			College:       r.College,
			RegisteredAt:  r.RegisteredAt,
			PaymentStatus: r.PaymentStatus,
			Amount:        r.Amount,
			Attended:      r.Attended,
		})
	}

	setCSVHeaders(c, fmt.Sprintf("%s-participants.csv", eventName))
	if err := export.WriteParticipants(c.Writer, out); err != nil {
		_ = c.Error(err)
	}
}

// ExportAttendance streams the event's attendance sheet as CSV
func (h *OrganizerHandler) ExportAttendance(c *gin.Context) {
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

	rows, eventName, err := h.exportService.ParticipantRows(c.Request.Context(), requesterID, eventID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	out := make([]export.AttendanceRow, 0, len(rows))
	for _, r := range rows {
		out = append(out, export.AttendanceRow{
			TicketID:   r.TicketID,
			Name:       fmt.Sprintf("%s %s", r.FirstName, r.LastName),
			Email:      r.Email,
			Attended:   r.Attended,
			AttendedAt: r.AttendedAt,
			Channel:    r.Channel,
		})
	}

	setCSVHeaders(c, fmt.Sprintf("%s-attendance.csv", eventName))
	if err := export.WriteAttendance(c.Writer, out); err != nil {
		_ = c.Error(err)
	}
}

// UpdateProfile updates the organizer's own profile
func (h *OrganizerHandler) UpdateProfile(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appidentity.UpdateOrganizerProfileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	profile, err := h.userService.UpdateOrganizerProfile(c.Request.Context(), userID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, profile)
}

// RequestPasswordReset files a password reset request for admin review
func (h *OrganizerHandler) RequestPasswordReset(c *gin.Context) {
	organizerID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appidentity.RequestPasswordResetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	resp, err := h.adminService.RequestPasswordReset(c.Request.Context(), organizerID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, resp)
}

func setCSVHeaders(c *gin.Context, filename string) {
	c.Header("Content-Type", "text/csv; charset=utf-8")
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	c.Status(http.StatusOK)
}
