package tasks

import "testing"

func TestApplyProgress(t *testing.T) {
	tests := []struct {
		name         string
		achieved     int
		count        int
		target       int
		status       string
		wantAchieved int
		wantStatus   string
	}{
		{"partial progress", 2, 3, 10, StatusActive, 5, StatusActive},
		{"reaches target", 7, 3, 10, StatusActive, 10, StatusCompleted},
		{"caps at target", 9, 5, 10, StatusActive, 10, StatusCompleted},
		{"overdue stays short of target", 1, 2, 10, StatusOverdue, 3, StatusOverdue},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			achieved, status := ApplyProgress(tt.achieved, tt.count, tt.target, tt.status)
			if achieved != tt.wantAchieved || status != tt.wantStatus {
				t.Fatalf("got %d/%s, want %d/%s", achieved, status, tt.wantAchieved, tt.wantStatus)
			}
		})
	}
}

func TestRemoveProgress(t *testing.T) {
	// Dropping under the target reopens a completed task.
	achieved, status := RemoveProgress(10, 4, 10, StatusCompleted)
	if achieved != 6 || status != StatusActive {
		t.Fatalf("got %d/%s, want 6/active", achieved, status)
	}

	// Achieved never goes negative.
	achieved, status = RemoveProgress(2, 5, 10, StatusActive)
	if achieved != 0 || status != StatusActive {
		t.Fatalf("got %d/%s, want 0/active", achieved, status)
	}
}

func TestCompletionRate(t *testing.T) {
	if got := CompletionRate(5, 10); got != 50 {
		t.Fatalf("5/10 = %v, want 50", got)
	}
	if got := CompletionRate(3, 0); got != 0 {
		t.Fatalf("zero target = %v, want 0", got)
	}
}
