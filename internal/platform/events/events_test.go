package events

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNoopPublisher(t *testing.T) {
	var p Publisher = Noop{}
	if err := p.PublishAppointment(context.Background(), AppointmentEvent{}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
}

func TestAppointmentEvent_JSONShape(t *testing.T) {
	evt := AppointmentEvent{
		AppointmentID: uuid.New(),
		UserID:        uuid.New(),
		Action:        "confirmed",
		Status:        "confirmed",
		ScheduledAt:   time.Date(2026, 9, 1, 10, 0, 0, 0, time.UTC),
		OccurredAt:    time.Date(2026, 8, 30, 9, 0, 0, 0, time.UTC),
	}

	b, err := json.Marshal(evt)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var decoded map[string]interface{}
	if err := json.Unmarshal(b, &decoded); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, key := range []string{"appointment_id", "user_id", "action", "status", "scheduled_at", "occurred_at"} {
		if _, ok := decoded[key]; !ok {
			t.Errorf("expected key %q in event JSON", key)
		}
	}
	if decoded["appointment_id"] != evt.AppointmentID.String() {
		t.Errorf("appointment_id should serialize as the uuid string, got %v", decoded["appointment_id"])
	}
}
