package event

import (
	"context"
	"math"
	"sort"
	"time"

	"github.com/felicity/backend/internal/domain/event"
	"github.com/felicity/backend/internal/domain/identity"
	"github.com/felicity/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Relevance scoring weights, and the fetch ceiling for listings that are
// scored in memory rather than ordered by the database.
const (
	tagMatchScore     = 10
	followedBonus     = 20
	decayHorizonDays  = 30
	scoringFetchLimit = 100
	recommendedLimit  = 10

	defaultTrendingWindow = 24 * time.Hour
	defaultTrendingLimit  = 5
)

// EventService handles event lifecycle and discovery operations. Counter
// mutations (views, the trending window) go through the capacity ledger;
// the service never writes counters from loaded aggregate state.
type EventService struct {
	eventRepo      event.EventRepository
	userRepo       identity.UserRepository
	ledger         event.CapacityLedger
	announcer      Announcer
	eventPublisher shared.EventPublisher
	logger         *zap.Logger

	trendingWindow time.Duration
	trendingLimit  int
}

// NewEventService creates a new event service
func NewEventService(
	eventRepo event.EventRepository,
	userRepo identity.UserRepository,
	ledger event.CapacityLedger,
	announcer Announcer,
	trendingWindow time.Duration,
	trendingLimit int,
	logger *zap.Logger,
) *EventService {
	if trendingWindow <= 0 {
		trendingWindow = defaultTrendingWindow
	}
	if trendingLimit <= 0 {
		trendingLimit = defaultTrendingLimit
	}
	return &EventService{
		eventRepo:      eventRepo,
		userRepo:       userRepo,
		ledger:         ledger,
		announcer:      announcer,
		logger:         logger,
		trendingWindow: trendingWindow,
		trendingLimit:  trendingLimit,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *EventService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// CreateEvent creates a new draft event for the organizer
func (s *EventService) CreateEvent(ctx context.Context, organizerID uuid.UUID, req CreateEventRequest) (*EventResponse, error) {
	e, err := event.NewEvent(organizerID, req.Name, req.Description, event.EventType(req.Type), event.Eligibility(req.Eligibility))
	if err != nil {
		return nil, err
	}

	if req.RegistrationDeadline != nil || req.StartDate != nil || req.EndDate != nil {
		if req.RegistrationDeadline == nil || req.StartDate == nil || req.EndDate == nil {
			return nil, shared.NewDomainError("INVALID_SCHEDULE", "Deadline, start and end dates must be set together")
		}
		if err := e.SetSchedule(*req.RegistrationDeadline, *req.StartDate, *req.EndDate); err != nil {
			return nil, err
		}
	}

	update := event.EventUpdate{Tags: req.Tags}
	if req.Venue != "" {
		update.Venue = &req.Venue
	}
	if req.RegistrationLimit > 0 {
		update.RegistrationLimit = &req.RegistrationLimit
	}
	if !req.RegistrationFee.IsZero() {
		update.RegistrationFee = &req.RegistrationFee
	}
	if req.ItemName != "" {
		update.ItemName = &req.ItemName
	}
	if req.PurchaseLimit > 0 {
		update.PurchaseLimit = &req.PurchaseLimit
	}
	if err := e.UpdateDetails(update); err != nil {
		return nil, err
	}

	if len(req.Variants) > 0 {
		if e.Type != event.EventTypeMerchandise {
			return nil, shared.NewDomainError("INVALID_VARIANT", "Only merchandise events have variants")
		}
		for _, vr := range req.Variants {
			v, err := event.NewVariant(e.ID, vr.Size, vr.Color, vr.Stock)
			if err != nil {
				return nil, err
			}
			if e.FindVariant(v.Size, v.Color) != nil {
				return nil, shared.NewDomainError("DUPLICATE_VARIANT", "A variant with this size and color already exists")
			}
			e.Variants = append(e.Variants, *v)
		}
	}

	if err := s.eventRepo.Create(ctx, e); err != nil {
		return nil, err
	}

	s.logger.Info("event created",
		zap.String("event_id", e.ID.String()),
		zap.String("organizer_id", organizerID.String()),
		zap.String("type", string(e.Type)))

	s.publishDomainEvents(ctx, e)

	return ToEventResponse(e), nil
}

// UpdateEvent applies a status-gated field update to an owned event
func (s *EventService) UpdateEvent(ctx context.Context, organizerID, eventID uuid.UUID, req UpdateEventRequest) (*EventResponse, error) {
	e, err := s.loadOwned(ctx, organizerID, eventID)
	if err != nil {
		return nil, err
	}

	if err := e.UpdateDetails(req.toDomain()); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Update(ctx, e); err != nil {
		return nil, err
	}

	return ToEventResponse(e), nil
}

// SetSchedule sets the registration deadline and event window on a draft
func (s *EventService) SetSchedule(ctx context.Context, organizerID, eventID uuid.UUID, req ScheduleRequest) (*EventResponse, error) {
	e, err := s.loadOwned(ctx, organizerID, eventID)
	if err != nil {
		return nil, err
	}

	if err := e.SetSchedule(req.RegistrationDeadline, req.StartDate, req.EndDate); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Update(ctx, e); err != nil {
		return nil, err
	}

	return ToEventResponse(e), nil
}

// SetCustomForm replaces the registration form definition, honoring the
// form lock
func (s *EventService) SetCustomForm(ctx context.Context, organizerID, eventID uuid.UUID, req SetFormRequest) (*EventResponse, error) {
	e, err := s.loadOwned(ctx, organizerID, eventID)
	if err != nil {
		return nil, err
	}

	if err := e.SetCustomForm(event.CustomForm(req.Fields)); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Update(ctx, e); err != nil {
		return nil, err
	}

	return ToEventResponse(e), nil
}

// Publish moves a draft event to published and announces it on the
// organizer's Discord channel when one is configured. The announcement is
// best-effort and never reverses the publish.
func (s *EventService) Publish(ctx context.Context, organizerID, eventID uuid.UUID) (*EventResponse, error) {
	e, err := s.loadOwned(ctx, organizerID, eventID)
	if err != nil {
		return nil, err
	}

	if err := e.Publish(); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Update(ctx, e); err != nil {
		return nil, err
	}

	s.logger.Info("event published",
		zap.String("event_id", e.ID.String()),
		zap.String("name", e.Name))

	s.publishDomainEvents(ctx, e)
	s.announcePublish(ctx, e)

	return ToEventResponse(e), nil
}

// ChangeStatus moves the event to the target lifecycle status. Publishing
// through here behaves exactly like Publish, announcement included.
func (s *EventService) ChangeStatus(ctx context.Context, organizerID, eventID uuid.UUID, req StatusRequest) (*EventResponse, error) {
	target := event.EventStatus(req.Status)
	e, err := s.loadOwned(ctx, organizerID, eventID)
	if err != nil {
		return nil, err
	}

	if err := e.TransitionTo(target); err != nil {
		return nil, err
	}
	if err := s.eventRepo.Update(ctx, e); err != nil {
		return nil, err
	}

	s.logger.Info("event status changed",
		zap.String("event_id", e.ID.String()),
		zap.String("status", e.Status.String()))

	s.publishDomainEvents(ctx, e)
	if target == event.EventStatusPublished {
		s.announcePublish(ctx, e)
	}

	return ToEventResponse(e), nil
}

// DeleteEvent removes a draft event. Anything past draft has public state
// and can only be closed, not deleted.
func (s *EventService) DeleteEvent(ctx context.Context, organizerID, eventID uuid.UUID) error {
	e, err := s.loadOwned(ctx, organizerID, eventID)
	if err != nil {
		return err
	}
	if e.Status != event.EventStatusDraft {
		return shared.ErrInvalidState
	}
	return s.eventRepo.Delete(ctx, e.ID)
}

// SaveVariant creates or restocks a merchandise variant on a draft event.
// Once published, stock is owned by the capacity ledger and can no longer
// be edited here.
func (s *EventService) SaveVariant(ctx context.Context, organizerID, eventID uuid.UUID, req VariantRequest) (*EventResponse, error) {
	e, err := s.loadOwned(ctx, organizerID, eventID)
	if err != nil {
		return nil, err
	}
	if e.Type != event.EventTypeMerchandise {
		return nil, shared.NewDomainError("INVALID_VARIANT", "Only merchandise events have variants")
	}
	if e.Status != event.EventStatusDraft {
		return nil, shared.ErrInvalidState
	}

	if existing := e.FindVariant(req.Size, req.Color); existing != nil {
		if req.Stock < 0 {
			return nil, shared.NewDomainError("INVALID_STOCK", "Stock quantity cannot be negative")
		}
		existing.StockQuantity = req.Stock
		existing.UpdatedAt = time.Now()
		if err := s.eventRepo.SaveVariant(ctx, existing); err != nil {
			return nil, err
		}
		return ToEventResponse(e), nil
	}

	v, err := event.NewVariant(e.ID, req.Size, req.Color, req.Stock)
	if err != nil {
		return nil, err
	}
	if err := s.eventRepo.SaveVariant(ctx, v); err != nil {
		return nil, err
	}
	e.Variants = append(e.Variants, *v)

	return ToEventResponse(e), nil
}

// DeleteVariant removes a variant from a draft event
func (s *EventService) DeleteVariant(ctx context.Context, organizerID, eventID, variantID uuid.UUID) error {
	e, err := s.loadOwned(ctx, organizerID, eventID)
	if err != nil {
		return err
	}
	if e.Status != event.EventStatusDraft {
		return shared.ErrInvalidState
	}

	for _, v := range e.Variants {
		if v.ID == variantID {
			return s.eventRepo.DeleteVariant(ctx, variantID)
		}
	}
	return shared.ErrNotFound
}

// List returns events matching the query. The recent and popular sorts are
// ordered by the database; the relevant sort and the followed-only filter
// are computed here from the viewer's interests and followed organizers.
// Anonymous viewers fall back to the recent sort.
func (s *EventService) List(ctx context.Context, viewerID uuid.UUID, q ListQuery) (*EventListResult, error) {
	filter := s.buildFilter(q)

	personalized := q.FollowedOnly || q.Sort == "relevant"
	if !personalized || viewerID == uuid.Nil {
		if q.Sort == "popular" {
			filter.Sort = event.SortModePopular
		}
		events, total, err := s.eventRepo.FindAll(ctx, filter)
		if err != nil {
			return nil, err
		}
		return &EventListResult{
			Events:   toSummaries(events),
			Total:    total,
			Page:     filter.Page,
			PageSize: filter.Limit(),
		}, nil
	}

	viewer, err := s.userRepo.FindByID(ctx, viewerID)
	if err != nil {
		return nil, err
	}

	page, pageSize := filter.Page, filter.Limit()
	filter.Page = 1
	filter.PageSize = scoringFetchLimit
	events, _, err := s.eventRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	if q.FollowedOnly {
		followed := make([]*event.Event, 0, len(events))
		for _, e := range events {
			if viewer.IsFollowing(e.OrganizerID) {
				followed = append(followed, e)
			}
		}
		events = followed
	}
	if q.Sort == "relevant" {
		sort.SliceStable(events, func(i, j int) bool {
			return relevanceScore(viewer, events[i]) > relevanceScore(viewer, events[j])
		})
	}

	total := int64(len(events))
	start := (page - 1) * pageSize
	if start > len(events) {
		start = len(events)
	}
	end := start + pageSize
	if end > len(events) {
		end = len(events)
	}

	return &EventListResult{
		Events:   toSummaries(events[start:end]),
		Total:    total,
		Page:     page,
		PageSize: pageSize,
	}, nil
}

// Trending returns the most viewed published events of the current window
func (s *EventService) Trending(ctx context.Context) ([]EventSummary, error) {
	cutoff := time.Now().Add(-s.trendingWindow)
	events, err := s.eventRepo.FindTrending(ctx, cutoff, s.trendingLimit)
	if err != nil {
		return nil, err
	}
	return toSummaries(events), nil
}

// Recommended returns up to ten upcoming events scored by the participant's
// interests, followed organizers and date proximity. Events scoring zero
// are left out entirely.
func (s *EventService) Recommended(ctx context.Context, participantID uuid.UUID) ([]EventSummary, error) {
	viewer, err := s.userRepo.FindByID(ctx, participantID)
	if err != nil {
		return nil, err
	}
	if viewer.Role != identity.RoleParticipant {
		return nil, shared.ErrForbidden
	}

	now := time.Now()
	filter := event.NewEventFilter()
	filter.StartAfter = &now
	filter.PageSize = scoringFetchLimit
	events, _, err := s.eventRepo.FindAll(ctx, filter)
	if err != nil {
		return nil, err
	}

	type scored struct {
		e     *event.Event
		score int
	}
	candidates := make([]scored, 0, len(events))
	for _, e := range events {
		score := relevanceScore(viewer, e) + dateProximityScore(now, e.StartDate)
		if score > 0 {
			candidates = append(candidates, scored{e: e, score: score})
		}
	}
	sort.SliceStable(candidates, func(i, j int) bool {
		return candidates[i].score > candidates[j].score
	})
	if len(candidates) > recommendedLimit {
		candidates = candidates[:recommendedLimit]
	}

	result := make([]EventSummary, 0, len(candidates))
	for _, c := range candidates {
		result = append(result, ToEventSummary(c.e))
	}
	return result, nil
}

// GetDetail returns the full event view and counts the visit. Drafts are
// visible only to their organizer; the view counter resets when the
// trending window has rolled over.
func (s *EventService) GetDetail(ctx context.Context, viewerID, eventID uuid.UUID) (*EventResponse, error) {
	e, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if e.Status == event.EventStatusDraft {
		if e.OrganizerID != viewerID {
			return nil, shared.ErrNotFound
		}
		return ToEventResponse(e), nil
	}

	if time.Since(e.LastViewReset) > s.trendingWindow {
		if err := s.ledger.ResetViews(ctx, e.ID); err != nil {
			s.logger.Warn("failed to reset view window",
				zap.String("event_id", e.ID.String()),
				zap.Error(err))
		}
	}
	if err := s.ledger.IncrementViews(ctx, e.ID); err != nil {
		s.logger.Warn("failed to count view",
			zap.String("event_id", e.ID.String()),
			zap.Error(err))
	}

	return ToEventResponse(e), nil
}

// Dashboard returns the organizer's events newest first with analytics
// aggregated over completed events
func (s *EventService) Dashboard(ctx context.Context, organizerID uuid.UUID) (*DashboardResponse, error) {
	events, err := s.eventRepo.FindByOrganizer(ctx, organizerID)
	if err != nil {
		return nil, err
	}

	resp := &DashboardResponse{Events: toSummaries(events)}
	resp.Analytics.TotalRevenue = decimal.Zero
	for _, e := range events {
		if e.Status != event.EventStatusCompleted {
			continue
		}
		resp.Analytics.TotalEvents++
		resp.Analytics.TotalRegistrations += e.TotalRegistrations
		resp.Analytics.TotalRevenue = resp.Analytics.TotalRevenue.Add(e.TotalRevenue)
		resp.Analytics.TotalAttendance += e.TotalAttendance
	}
	return resp, nil
}

// GetOwned returns an owned event with its per-event analytics
func (s *EventService) GetOwned(ctx context.Context, organizerID, eventID uuid.UUID) (*OwnedEventResponse, error) {
	e, err := s.loadOwned(ctx, organizerID, eventID)
	if err != nil {
		return nil, err
	}
	return &OwnedEventResponse{
		Event:     *ToEventResponse(e),
		Analytics: toEventAnalytics(e),
	}, nil
}

func (s *EventService) loadOwned(ctx context.Context, organizerID, eventID uuid.UUID) (*event.Event, error) {
	e, err := s.eventRepo.FindByID(ctx, eventID)
	if err != nil {
		return nil, err
	}
	if e.OrganizerID != organizerID {
		return nil, shared.ErrForbidden
	}
	return e, nil
}

func (s *EventService) buildFilter(q ListQuery) event.EventFilter {
	filter := event.NewEventFilter()
	filter.Keyword = q.Keyword
	if q.Type != "" {
		t := event.EventType(q.Type)
		filter.Type = &t
	}
	if q.Eligibility != "" {
		el := event.Eligibility(q.Eligibility)
		filter.Eligibility = &el
	}
	filter.StartAfter = q.StartAfter
	filter.StartBefore = q.StartBefore
	if q.Page > 0 {
		filter.Page = q.Page
	}
	if q.PageSize > 0 {
		filter.PageSize = q.PageSize
	}
	return filter
}

// announcePublish posts the event to the organizer's Discord webhook when
// configured. Errors are logged and swallowed.
func (s *EventService) announcePublish(ctx context.Context, e *event.Event) {
	if s.announcer == nil {
		return
	}
	organizer, err := s.userRepo.FindByID(ctx, e.OrganizerID)
	if err != nil {
		s.logger.Warn("failed to load organizer for announcement",
			zap.String("event_id", e.ID.String()),
			zap.Error(err))
		return
	}
	if organizer.DiscordWebhook == "" {
		return
	}

	announcement := Announcement{
		Name:              e.Name,
		Description:       e.Description,
		Type:              string(e.Type),
		Eligibility:       string(e.Eligibility),
		Tags:              e.Tags,
		RegistrationFee:   e.RegistrationFee,
		RegistrationLimit: e.RegistrationLimit,
		StartDate:         e.StartDate,
		Deadline:          e.RegistrationDeadline,
	}
	if err := s.announcer.Announce(ctx, organizer.DiscordWebhook, announcement); err != nil {
		s.logger.Warn("failed to announce event",
			zap.String("event_id", e.ID.String()),
			zap.Error(err))
	}
}

// relevanceScore weighs interest-tag overlap and followed organizers
func relevanceScore(viewer *identity.User, e *event.Event) int {
	interests := make(map[string]bool, len(viewer.Interests))
	for _, interest := range viewer.Interests {
		interests[interest] = true
	}

	score := 0
	for _, tag := range e.Tags {
		if interests[tag] {
			score += tagMatchScore
		}
	}
	if viewer.IsFollowing(e.OrganizerID) {
		score += followedBonus
	}
	return score
}

// dateProximityScore favors events starting soon: an event decayHorizonDays
// out scores zero, one starting tomorrow scores nearly the full horizon.
func dateProximityScore(now, start time.Time) int {
	days := int(math.Ceil(start.Sub(now).Hours() / 24))
	if days > 0 && days <= decayHorizonDays {
		return decayHorizonDays - days
	}
	return 0
}

func toSummaries(events []*event.Event) []EventSummary {
	summaries := make([]EventSummary, 0, len(events))
	for _, e := range events {
		summaries = append(summaries, ToEventSummary(e))
	}
	return summaries
}

// publishDomainEvents publishes all domain events raised by the event
func (s *EventService) publishDomainEvents(ctx context.Context, e *event.Event) {
	if s.eventPublisher == nil {
		return
	}
	events := e.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	_ = s.eventPublisher.Publish(ctx, events...)
	e.ClearDomainEvents()
}
