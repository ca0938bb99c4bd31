package export

import (
	"bytes"
	"encoding/csv"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteParticipants(t *testing.T) {
	var buf bytes.Buffer
	registered := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	err := WriteParticipants(&buf, []ParticipantRow{
		{
			TicketID:      "FEL-ABC123-XYZ789",
			FirstName:     "Asha",
			LastName:      "Rao",
			Email:         "asha.rao@iiit.ac.in",
			Contact:       "9876543210",
			RegisteredAt:  registered,
			PaymentStatus: "completed",
			Amount:        decimal.NewFromInt(100),
			Attended:      true,
		},
		{
			TicketID:      "FEL-DEF456-UVW012",
			FirstName:     "Ravi",
			Email:         "ravi@gmail.com",
			College:       "NIT Warangal",
			RegisteredAt:  registered,
			PaymentStatus: "completed",
			Amount:        decimal.Zero,
		},
	})
	require.NoError(t, err)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Ticket ID", records[0][0])
	assert.Equal(t, []string{
		"FEL-ABC123-XYZ789", "Asha", "Rao", "asha.rao@iiit.ac.in", "9876543210", "",
		"2026-03-01", "completed", "100.00", "Yes",
	}, records[1])
	assert.Equal(t, "NIT Warangal", records[2][5])
	assert.Equal(t, "No", records[2][9])
}

func TestWriteAttendance(t *testing.T) {
	var buf bytes.Buffer
	at := time.Date(2026, 3, 2, 9, 30, 0, 0, time.UTC)

	err := WriteAttendance(&buf, []AttendanceRow{
		{TicketID: "FEL-ABC123-XYZ789", Name: "Asha Rao", Email: "asha.rao@iiit.ac.in", Attended: true, AttendedAt: &at, Channel: "scan"},
		{TicketID: "FEL-DEF456-UVW012", Name: "Ravi Kumar", Email: "ravi@gmail.com"},
	})
	require.NoError(t, err)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 3)
	assert.Equal(t, "Yes", records[1][3])
	assert.Equal(t, "2026-03-02T09:30:00Z", records[1][4])
	assert.Equal(t, "scan", records[1][5])
	assert.Equal(t, "No", records[2][3])
	assert.Empty(t, records[2][4])
}

// fields containing commas must survive a round trip
func TestWriteParticipants_Escaping(t *testing.T) {
	var buf bytes.Buffer

	err := WriteParticipants(&buf, []ParticipantRow{
		{TicketID: "FEL-1-1", FirstName: "Asha", College: "IIIT, Hyderabad", RegisteredAt: time.Now(), Amount: decimal.Zero},
	})
	require.NoError(t, err)

	records, err := csv.NewReader(&buf).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, "IIIT, Hyderabad", records[1][5])
}
