package registration

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/felicity/backend/internal/domain/event"
	"github.com/felicity/backend/internal/domain/identity"
	"github.com/felicity/backend/internal/domain/registration"
	"github.com/felicity/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// ObjectStorage is the storage backend used for payment proof files.
// Participants upload proofs through presigned URLs so the file bytes
// never pass through the API server.
type ObjectStorage interface {
	// GenerateUploadURL generates a presigned URL for uploading a file
	GenerateUploadURL(ctx context.Context, storageKey, contentType string, expiresIn time.Duration) (string, time.Time, error)

	// GenerateDownloadURL generates a presigned URL for downloading a file
	GenerateDownloadURL(ctx context.Context, storageKey string, expiresIn time.Duration) (string, time.Time, error)

	// DeleteObject deletes an object from storage
	DeleteObject(ctx context.Context, storageKey string) error

	// ObjectExists checks if an object exists in storage
	ObjectExists(ctx context.Context, storageKey string) (bool, error)
}

// proofContentTypes maps accepted proof content types to file extensions
var proofContentTypes = map[string]string{
	"image/jpeg":      ".jpg",
	"image/png":       ".png",
	"image/webp":      ".webp",
	"application/pdf": ".pdf",
}

// ProofUploadRequest asks for an upload slot for a payment proof file
type ProofUploadRequest struct {
	EventID     uuid.UUID `json:"event_id" binding:"required"`
	ContentType string    `json:"content_type" binding:"required"`
}

// ProofUploadSlot is a presigned upload destination. The participant PUTs
// the file to UploadURL and submits StorageKey as the payment proof when
// placing the order.
type ProofUploadSlot struct {
	StorageKey string    `json:"storage_key"`
	UploadURL  string    `json:"upload_url"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ProofDownload is a short-lived link to view a stored payment proof
type ProofDownload struct {
	DownloadURL string    `json:"download_url"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// ProofService issues presigned URLs for payment proof uploads and lets
// order reviewers fetch the stored file.
type ProofService struct {
	storage          ObjectStorage
	registrationRepo registration.Repository
	eventRepo        event.EventRepository
	userRepo         identity.UserRepository
	uploadExpiry     time.Duration
	downloadExpiry   time.Duration
	logger           *zap.Logger
}

// NewProofService creates a new proof service
func NewProofService(
	storage ObjectStorage,
	registrationRepo registration.Repository,
	eventRepo event.EventRepository,
	userRepo identity.UserRepository,
	logger *zap.Logger,
) *ProofService {
	return &ProofService{
		storage:          storage,
		registrationRepo: registrationRepo,
		eventRepo:        eventRepo,
		userRepo:         userRepo,
		uploadExpiry:     15 * time.Minute,
		downloadExpiry:   time.Hour,
		logger:           logger,
	}
}

// CreateUploadSlot reserves a storage key for a payment proof and returns a
// presigned upload URL. Only merchandise events accept proofs.
func (s *ProofService) CreateUploadSlot(ctx context.Context, participantID uuid.UUID, req ProofUploadRequest) (*ProofUploadSlot, error) {
	ext, ok := proofContentTypes[strings.ToLower(strings.TrimSpace(req.ContentType))]
	if !ok {
		return nil, shared.NewDomainError("INVALID_CONTENT_TYPE", "Payment proof must be a JPEG, PNG, WebP or PDF file")
	}

	ev, err := s.eventRepo.FindByID(ctx, req.EventID)
	if err != nil {
		return nil, err
	}
	if ev.Type != event.EventTypeMerchandise {
		return nil, shared.NewDomainError("INVALID_EVENT_TYPE", "Only merchandise orders require a payment proof")
	}

	key := fmt.Sprintf("payment-proofs/%s/%s/%s%s", ev.ID, participantID, uuid.New(), ext)

	uploadURL, expiresAt, err := s.storage.GenerateUploadURL(ctx, key, req.ContentType, s.uploadExpiry)
	if err != nil {
		s.logger.Error("Failed to generate proof upload URL",
			zap.String("event_id", ev.ID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("STORAGE_ERROR", "Failed to prepare the upload")
	}

	return &ProofUploadSlot{
		StorageKey: key,
		UploadURL:  uploadURL,
		ExpiresAt:  expiresAt,
	}, nil
}

// ProofDownloadURL returns a short-lived link to the proof attached to an
// order. The participant who placed the order, the owning organizer and
// admins may view it.
func (s *ProofService) ProofDownloadURL(ctx context.Context, requesterID, registrationID uuid.UUID) (*ProofDownload, error) {
	reg, err := s.registrationRepo.FindByID(ctx, registrationID)
	if err != nil {
		return nil, err
	}

	if err := s.checkProofAccess(ctx, requesterID, reg); err != nil {
		return nil, err
	}

	if reg.PaymentProof == "" {
		return nil, shared.NewDomainError("NO_PAYMENT_PROOF", "This order has no payment proof attached")
	}

	// Proofs submitted as external links are passed through untouched.
	if strings.HasPrefix(reg.PaymentProof, "http://") || strings.HasPrefix(reg.PaymentProof, "https://") {
		return &ProofDownload{DownloadURL: reg.PaymentProof}, nil
	}

	downloadURL, expiresAt, err := s.storage.GenerateDownloadURL(ctx, reg.PaymentProof, s.downloadExpiry)
	if err != nil {
		s.logger.Error("Failed to generate proof download URL",
			zap.String("registration_id", reg.ID.String()),
			zap.Error(err))
		return nil, shared.NewDomainError("STORAGE_ERROR", "Failed to fetch the payment proof")
	}

	return &ProofDownload{
		DownloadURL: downloadURL,
		ExpiresAt:   expiresAt,
	}, nil
}

// checkProofAccess allows the order's participant, the owning organizer
// and admins
func (s *ProofService) checkProofAccess(ctx context.Context, requesterID uuid.UUID, reg *registration.Registration) error {
	if reg.ParticipantID == requesterID {
		return nil
	}
	ev, err := s.eventRepo.FindByID(ctx, reg.EventID)
	if err != nil {
		return err
	}
	if ev.OrganizerID == requesterID {
		return nil
	}
	requester, err := s.userRepo.FindByID(ctx, requesterID)
	if err != nil {
		return err
	}
	if requester.Role != identity.RoleAdmin {
		return shared.ErrForbidden
	}
	return nil
}
