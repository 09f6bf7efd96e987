package store

import (
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *RunStore {
	t.Helper()
	s, err := NewRunStore(filepath.Join(t.TempDir(), "sutra.db"))
	if err != nil {
		t.Fatalf("NewRunStore failed: %v", err)
	}
	t.Cleanup(func() { s.DB.Close() })
	return s
}

func TestRunStore_RunLifecycle(t *testing.T) {
	s := newTestStore(t)

	runID, err := s.StartRun("summarize the news")
	if err != nil {
		t.Fatalf("StartRun failed: %v", err)
	}

	if err := s.RecordStep(runID, 1, "search", "latest news", "headlines...", true); err != nil {
		t.Fatalf("RecordStep failed: %v", err)
	}
	if err := s.RecordStep(runID, 2, "summarize", "", "summary text", true); err != nil {
		t.Fatalf("RecordStep failed: %v", err)
	}
	if err := s.FinishRun(runID, "succeeded", "summary text", 2); err != nil {
		t.Fatalf("FinishRun failed: %v", err)
	}

	runs, err := s.RecentRuns(10)
	if err != nil {
		t.Fatalf("RecentRuns failed: %v", err)
	}
	if len(runs) != 1 {
		t.Fatalf("Expected 1 run, got %d", len(runs))
	}
	if runs[0].Outcome != "succeeded" || runs[0].Steps != 2 {
		t.Errorf("Unexpected run record: %+v", runs[0])
	}
}

func TestRunStore_Schedules(t *testing.T) {
	s := newTestStore(t)

	if err := s.AddSchedule("42", "check the weather", 3600); err != nil {
		t.Fatalf("AddSchedule failed: %v", err)
	}

	// last_run is backdated on insert, so the schedule is due immediately.
	due, err := s.GetDueSchedules()
	if err != nil {
		t.Fatalf("GetDueSchedules failed: %v", err)
	}
	if len(due) != 1 {
		t.Fatalf("Expected 1 due schedule, got %d", len(due))
	}
	if due[0].Ask != "check the weather" {
		t.Errorf("Unexpected schedule: %+v", due[0])
	}

	if err := s.UpdateScheduleLastRun(due[0].ID); err != nil {
		t.Fatalf("UpdateScheduleLastRun failed: %v", err)
	}
	due, err = s.GetDueSchedules()
	if err != nil {
		t.Fatalf("GetDueSchedules failed: %v", err)
	}
	if len(due) != 0 {
		t.Errorf("Expected no due schedules after update, got %d", len(due))
	}

	if err := s.ClearSchedules("42"); err != nil {
		t.Fatalf("ClearSchedules failed: %v", err)
	}
}
