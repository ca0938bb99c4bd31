package event

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestEvent(t *testing.T, eventType EventType) *Event {
	t.Helper()
	e, err := NewEvent(uuid.New(), "Hackathon", "24h build sprint", eventType, EligibilityAll)
	require.NoError(t, err)

	now := time.Now()
	require.NoError(t, e.SetSchedule(now.Add(24*time.Hour), now.Add(48*time.Hour), now.Add(72*time.Hour)))
	return e
}

func TestNewEvent(t *testing.T) {
	t.Run("creates draft event", func(t *testing.T) {
		e, err := NewEvent(uuid.New(), "Hackathon", "desc", EventTypeNormal, EligibilityAll)

		require.NoError(t, err)
		assert.Equal(t, EventStatusDraft, e.Status)
		assert.Equal(t, EligibilityAll, e.Eligibility)
		assert.True(t, e.RegistrationFee.IsZero())
	})

	t.Run("defaults eligibility to all", func(t *testing.T) {
		e, err := NewEvent(uuid.New(), "Hackathon", "", EventTypeNormal, "")

		require.NoError(t, err)
		assert.Equal(t, EligibilityAll, e.Eligibility)
	})

	t.Run("rejects empty name", func(t *testing.T) {
		_, err := NewEvent(uuid.New(), "  ", "", EventTypeNormal, EligibilityAll)
		assert.Error(t, err)
	})

	t.Run("rejects unknown type", func(t *testing.T) {
		_, err := NewEvent(uuid.New(), "Hackathon", "", EventType("party"), EligibilityAll)
		assert.Error(t, err)
	})
}

func TestSetSchedule(t *testing.T) {
	now := time.Now()

	t.Run("rejects deadline after start", func(t *testing.T) {
		e, err := NewEvent(uuid.New(), "Hackathon", "", EventTypeNormal, EligibilityAll)
		require.NoError(t, err)

		err = e.SetSchedule(now.Add(50*time.Hour), now.Add(48*time.Hour), now.Add(72*time.Hour))
		assert.Error(t, err)
	})

	t.Run("rejects end before start", func(t *testing.T) {
		e, err := NewEvent(uuid.New(), "Hackathon", "", EventTypeNormal, EligibilityAll)
		require.NoError(t, err)

		err = e.SetSchedule(now.Add(24*time.Hour), now.Add(72*time.Hour), now.Add(48*time.Hour))
		assert.Error(t, err)
	})

	t.Run("rejects schedule change after publish", func(t *testing.T) {
		e := newTestEvent(t, EventTypeNormal)
		require.NoError(t, e.Publish())

		err := e.SetSchedule(time.Now().Add(time.Hour), time.Now().Add(2*time.Hour), time.Now().Add(3*time.Hour))
		assert.Error(t, err)
	})
}

func TestStatusTransitions(t *testing.T) {
	tests := []struct {
		from    EventStatus
		to      EventStatus
		allowed bool
	}{
		{EventStatusDraft, EventStatusPublished, true},
		{EventStatusDraft, EventStatusClosed, true},
		{EventStatusDraft, EventStatusOngoing, false},
		{EventStatusPublished, EventStatusOngoing, true},
		{EventStatusPublished, EventStatusClosed, true},
		{EventStatusPublished, EventStatusDraft, false},
		{EventStatusOngoing, EventStatusCompleted, true},
		{EventStatusOngoing, EventStatusClosed, true},
		{EventStatusCompleted, EventStatusClosed, true},
		{EventStatusCompleted, EventStatusOngoing, false},
		{EventStatusClosed, EventStatusPublished, false},
		{EventStatusClosed, EventStatusDraft, false},
	}

	for _, tt := range tests {
		t.Run(string(tt.from)+"_to_"+string(tt.to), func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestPublish(t *testing.T) {
	t.Run("publishes scheduled event", func(t *testing.T) {
		e := newTestEvent(t, EventTypeNormal)

		require.NoError(t, e.Publish())
		assert.Equal(t, EventStatusPublished, e.Status)

		events := e.GetDomainEvents()
		require.NotEmpty(t, events)
		_, ok := events[len(events)-1].(*EventPublishedEvent)
		assert.True(t, ok)
	})

	t.Run("rejects publish without schedule", func(t *testing.T) {
		e, err := NewEvent(uuid.New(), "Hackathon", "", EventTypeNormal, EligibilityAll)
		require.NoError(t, err)

		assert.Error(t, e.Publish())
	})

	t.Run("rejects merchandise publish without item name", func(t *testing.T) {
		e := newTestEvent(t, EventTypeMerchandise)

		assert.Error(t, e.Publish())
	})

	t.Run("rejects double publish", func(t *testing.T) {
		e := newTestEvent(t, EventTypeNormal)
		require.NoError(t, e.Publish())

		assert.Error(t, e.Publish())
	})
}

func TestUpdateDetails(t *testing.T) {
	name := "Renamed"
	desc := "new description"
	limit := 100
	fee := decimal.NewFromInt(50)

	t.Run("draft is fully editable", func(t *testing.T) {
		e := newTestEvent(t, EventTypeNormal)

		err := e.UpdateDetails(EventUpdate{
			Name:              &name,
			Description:       &desc,
			Tags:              []string{"Tech", "tech", "music"},
			RegistrationLimit: &limit,
			RegistrationFee:   &fee,
		})

		require.NoError(t, err)
		assert.Equal(t, "Renamed", e.Name)
		assert.Equal(t, []string{"tech", "music"}, e.Tags)
		assert.Equal(t, 100, e.RegistrationLimit)
	})

	t.Run("published allows description deadline and limit only", func(t *testing.T) {
		e := newTestEvent(t, EventTypeNormal)
		require.NoError(t, e.Publish())

		deadline := e.StartDate.Add(-time.Hour)
		err := e.UpdateDetails(EventUpdate{Description: &desc, Deadline: &deadline, RegistrationLimit: &limit})
		require.NoError(t, err)

		err = e.UpdateDetails(EventUpdate{Name: &name})
		assert.Error(t, err)

		err = e.UpdateDetails(EventUpdate{RegistrationFee: &fee})
		assert.Error(t, err)
	})

	t.Run("published limit cannot drop below registrations", func(t *testing.T) {
		e := newTestEvent(t, EventTypeNormal)
		require.NoError(t, e.Publish())
		e.TotalRegistrations = 50

		small := 10
		err := e.UpdateDetails(EventUpdate{RegistrationLimit: &small})
		assert.Error(t, err)

		unlimited := 0
		err = e.UpdateDetails(EventUpdate{RegistrationLimit: &unlimited})
		assert.NoError(t, err)
	})

	t.Run("ongoing is read-only", func(t *testing.T) {
		e := newTestEvent(t, EventTypeNormal)
		require.NoError(t, e.Publish())
		require.NoError(t, e.TransitionTo(EventStatusOngoing))

		err := e.UpdateDetails(EventUpdate{Description: &desc})
		assert.Error(t, err)
	})
}

func TestIsRegistrationOpen(t *testing.T) {
	e := newTestEvent(t, EventTypeNormal)
	now := time.Now()

	assert.False(t, e.IsRegistrationOpen(now), "draft is closed")

	require.NoError(t, e.Publish())
	assert.True(t, e.IsRegistrationOpen(now))
	assert.False(t, e.IsRegistrationOpen(e.RegistrationDeadline.Add(time.Minute)), "closed after deadline")

	require.NoError(t, e.TransitionTo(EventStatusClosed))
	assert.False(t, e.IsRegistrationOpen(now))
}

func TestIsFull(t *testing.T) {
	e := newTestEvent(t, EventTypeNormal)

	e.RegistrationLimit = 0
	e.TotalRegistrations = 100000
	assert.False(t, e.IsFull(), "zero limit means unlimited")

	e.RegistrationLimit = 10
	e.TotalRegistrations = 9
	assert.False(t, e.IsFull())

	e.TotalRegistrations = 10
	assert.True(t, e.IsFull())
}

func TestFindVariant(t *testing.T) {
	e := newTestEvent(t, EventTypeMerchandise)
	v1, err := NewVariant(e.ID, "M", "Black", 10)
	require.NoError(t, err)
	v2, err := NewVariant(e.ID, "L", "White", 5)
	require.NoError(t, err)
	e.Variants = []Variant{*v1, *v2}

	t.Run("matches by value not position", func(t *testing.T) {
		found := e.FindVariant("l", "white")
		require.NotNil(t, found)
		assert.Equal(t, v2.ID, found.ID)
	})

	t.Run("nil for unknown combination", func(t *testing.T) {
		assert.Nil(t, e.FindVariant("XL", "Black"))
	})
}

func TestFormLock(t *testing.T) {
	form := CustomForm{
		{Key: "team", Label: "Team name", Type: FieldTypeText, Required: true, Order: 1},
		{Key: "size", Label: "T-shirt size", Type: FieldTypeDropdown, Options: []string{"S", "M", "L"}, Order: 2},
	}

	t.Run("unlocked form is replaceable", func(t *testing.T) {
		e := newTestEvent(t, EventTypeNormal)

		require.NoError(t, e.SetCustomForm(form))
		require.NoError(t, e.SetCustomForm(CustomForm{{Key: "solo", Label: "Solo entry", Type: FieldTypeText, Order: 1}}))
	})

	t.Run("locked form freezes the field set", func(t *testing.T) {
		e := newTestEvent(t, EventTypeNormal)
		require.NoError(t, e.SetCustomForm(form))
		e.LockForm()

		// adding a field is rejected
		extended := append(CustomForm{}, form...)
		extended = append(extended, FormField{Key: "extra", Label: "Extra", Type: FieldTypeText, Order: 3})
		assert.Error(t, e.SetCustomForm(extended))

		// relabeling and reordering is still allowed
		relabeled := CustomForm{
			{Key: "size", Label: "Shirt size", Type: FieldTypeDropdown, Options: []string{"S", "M", "L"}, Order: 1},
			{Key: "team", Label: "Your team", Type: FieldTypeText, Required: true, Order: 2},
		}
		assert.NoError(t, e.SetCustomForm(relabeled))
	})

	t.Run("locking twice is a no-op", func(t *testing.T) {
		e := newTestEvent(t, EventTypeNormal)
		e.LockForm()
		v := e.Version
		e.LockForm()
		assert.Equal(t, v, e.Version)
	})
}
