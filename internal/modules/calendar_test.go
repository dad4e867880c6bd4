package modules

import (
	"testing"

	"github.com/opdeck/opdeck/internal/models"
)

func TestCalendarOnDate(t *testing.T) {
	_, r := testRegistry(t)
	_, _ = r.Calendar.Add("standup", "2026-03-02", "09:00", models.EventMeeting)
	_, _ = r.Calendar.Add("review", "2026-03-02", "15:00", models.EventMeeting)
	_, _ = r.Calendar.Add("dentist", "2026-03-05", "", models.EventReminder)

	got := r.Calendar.OnDate("2026-03-02")
	if len(got) != 2 {
		t.Errorf("events on 2026-03-02 = %d, want 2", len(got))
	}
	if got := r.Calendar.OnDate("2026-03-09"); len(got) != 0 {
		t.Errorf("events on empty day = %d, want 0", len(got))
	}
}

func TestCalendarAddDefaults(t *testing.T) {
	_, r := testRegistry(t)
	ev, err := r.Calendar.Add("untyped", "2026-03-02", "", "")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if ev.Type != models.EventReminder {
		t.Errorf("type = %q, want Reminder default", ev.Type)
	}
	if ev.Source != models.SourceLocal {
		t.Errorf("source = %q, want Local", ev.Source)
	}
}

func TestMergeSyncedReplacesOnlySyncedEvents(t *testing.T) {
	_, r := testRegistry(t)
	local, _ := r.Calendar.Add("mine", "2026-03-02", "", models.EventMeeting)
	_ = r.Calendar.MergeSynced([]models.CalendarEvent{
		{Title: "external A", Date: "2026-03-03"},
		{Title: "external B", Date: "2026-03-04"},
	})

	if got := len(r.Calendar.List()); got != 3 {
		t.Fatalf("events = %d, want 3", got)
	}

	// A later sync replaces the previous synced set, keeping local events.
	if err := r.Calendar.MergeSynced([]models.CalendarEvent{
		{Title: "external C", Date: "2026-03-05"},
	}); err != nil {
		t.Fatalf("MergeSynced: %v", err)
	}
	events := r.Calendar.List()
	if len(events) != 2 {
		t.Fatalf("events after resync = %d, want 2", len(events))
	}
	var sawLocal, sawSynced bool
	for _, ev := range events {
		switch ev.Source {
		case models.SourceLocal:
			sawLocal = ev.ID == local.ID
		case models.SourceSynced:
			sawSynced = ev.Title == "external C"
			if ev.ID == "" {
				t.Error("synced event missing generated id")
			}
		}
	}
	if !sawLocal || !sawSynced {
		t.Errorf("events after resync = %+v", events)
	}
}
