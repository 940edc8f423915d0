package grading

import (
	"testing"
	"time"

	"exam_portal_backend/internal/model"
)

func TestRemaining(t *testing.T) {
	end := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	attempt := &model.ExamAttempt{EndTime: end}

	if got := Remaining(attempt, end.Add(-30*time.Second)); got != 30*time.Second {
		t.Errorf("Remaining = %v, want 30s", got)
	}
	if got := Remaining(attempt, end.Add(time.Minute)); got != 0 {
		t.Errorf("past deadline must clamp to 0, got %v", got)
	}
	if got := Remaining(attempt, end); got != 0 {
		t.Errorf("at deadline Remaining = %v, want 0", got)
	}
}

func TestIsExpired(t *testing.T) {
	end := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	attempt := &model.ExamAttempt{EndTime: end}

	if IsExpired(attempt, end) {
		t.Error("exactly at deadline is not expired")
	}
	if !IsExpired(attempt, end.Add(time.Nanosecond)) {
		t.Error("past deadline must be expired")
	}
	if IsExpired(attempt, end.Add(-time.Second)) {
		t.Error("before deadline must not be expired")
	}
}
