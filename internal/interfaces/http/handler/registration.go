package handler

import (
	appreg "github.com/felicity/backend/internal/application/registration"
	"github.com/gin-gonic/gin"
)

// RegistrationHandler handles participant-side registration and ticket routes
type RegistrationHandler struct {
	BaseHandler
	registrationService *appreg.RegistrationService
	proofService        *appreg.ProofService
}

// NewRegistrationHandler creates a new registration handler
func NewRegistrationHandler(registrationService *appreg.RegistrationService, proofService *appreg.ProofService) *RegistrationHandler {
	return &RegistrationHandler{
		registrationService: registrationService,
		proofService:        proofService,
	}
}

// registerBody is the request body for registering to a normal event. The
// event comes from the path, not the body.
type registerBody struct {
	FormResponses map[string]string `json:"form_responses"`
}

// purchaseBody is the request body for placing a merchandise order
type purchaseBody struct {
	Size         string `json:"size" binding:"required"`
	Color        string `json:"color" binding:"required"`
	Quantity     int    `json:"quantity" binding:"required,min=1"`
	PaymentProof string `json:"payment_proof" binding:"required"`
}

// Register registers the participant for a normal event
func (h *RegistrationHandler) Register(c *gin.Context) {
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

	var body registerBody
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&body); err != nil {
			h.BindError(c, err)
			return
		}
	}

	reg, err := h.registrationService.Register(c.Request.Context(), participantID, appreg.RegisterRequest{
		EventID:       eventID,
		FormResponses: body.FormResponses,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, reg)
}

// Purchase places a merchandise order with payment proof
func (h *RegistrationHandler) Purchase(c *gin.Context) {
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

	var body purchaseBody
	if err := c.ShouldBindJSON(&body); err != nil {
		h.BindError(c, err)
		return
	}

	reg, err := h.registrationService.Purchase(c.Request.Context(), participantID, appreg.PurchaseRequest{
		EventID:      eventID,
		Size:         body.Size,
		Color:        body.Color,
		Quantity:     body.Quantity,
		PaymentProof: body.PaymentProof,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, reg)
}

// CreateProofUploadSlot returns a presigned URL for uploading a payment
// proof. The returned storage key is submitted as the proof when placing
// the order.
func (h *RegistrationHandler) CreateProofUploadSlot(c *gin.Context) {
	participantID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	var req appreg.ProofUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}

	slot, err := h.proofService.CreateUploadSlot(c.Request.Context(), participantID, req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, slot)
}

// GetPaymentProof returns a short-lived download link for an order's
// payment proof. Access is limited to the order's participant, the owning
// organizer and admins.
func (h *RegistrationHandler) GetPaymentProof(c *gin.Context) {
	requesterID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	registrationID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid registration ID")
		return
	}

	dl, err := h.proofService.ProofDownloadURL(c.Request.Context(), requesterID, registrationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, dl)
}

// Cancel cancels the participant's own registration
func (h *RegistrationHandler) Cancel(c *gin.Context) {
	participantID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	registrationID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid registration ID")
		return
	}

	reg, err := h.registrationService.Cancel(c.Request.Context(), participantID, registrationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reg)
}

// MyRegistrations lists all of the participant's registrations and orders
func (h *RegistrationHandler) MyRegistrations(c *gin.Context) {
	participantID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}

	regs, err := h.registrationService.GetMyRegistrations(c.Request.Context(), participantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, regs)
}

// GetTicket returns one registration with its QR ticket
func (h *RegistrationHandler) GetTicket(c *gin.Context) {
	participantID, err := getUserID(c)
	if err != nil {
		h.Unauthorized(c, "Authentication required")
		return
	}
	registrationID, err := parseUUIDParam(c, "id")
	if err != nil {
		h.BadRequest(c, "Invalid registration ID")
		return
	}

	reg, err := h.registrationService.GetTicket(c.Request.Context(), participantID, registrationID)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, reg)
}
