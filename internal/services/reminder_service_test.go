package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

func reminderGoal(user core.User, name string, deadline time.Time, current, target string) core.Goal {
	return core.Goal{
		ID:            uuid.New(),
		UserID:        user.ID,
		Name:          name,
		TargetAmount:  dec(target),
		CurrentAmount: dec(current),
		Deadline:      deadline,
	}
}

func TestCheckGoalDeadlinesWindow(t *testing.T) {
	user := testUser()
	now := time.Date(2025, time.March, 10, 15, 0, 0, 0, time.UTC)

	cases := []struct {
		name     string
		deadline time.Time
		wantSent int
	}{
		{"due today", time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC), 1},
		{"due in seven days", time.Date(2025, time.March, 17, 23, 0, 0, 0, time.UTC), 1},
		{"due in eight days", time.Date(2025, time.March, 18, 0, 0, 0, 0, time.UTC), 0},
		{"already past", time.Date(2025, time.March, 9, 0, 0, 0, 0, time.UTC), 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			goals := &fakeGoals{items: []core.Goal{reminderGoal(user, "Vacation", tc.deadline, "100", "1000")}}
			notifier := &fakeNotifier{}
			sweep := NewReminderSweep(goals, &fakeUsers{users: []core.User{user}}, notifier)
			sweep.now = func() time.Time { return now }

			sent, err := sweep.CheckGoalDeadlines(context.Background())
			if err != nil {
				t.Fatalf("CheckGoalDeadlines: %v", err)
			}
			if sent != tc.wantSent {
				t.Errorf("sent = %d, want %d", sent, tc.wantSent)
			}
		})
	}
}

func TestCheckGoalDeadlinesSkipsCompletedGoals(t *testing.T) {
	user := testUser()
	now := time.Date(2025, time.March, 10, 0, 0, 0, 0, time.UTC)
	deadline := now.AddDate(0, 0, 3)

	goals := &fakeGoals{items: []core.Goal{
		reminderGoal(user, "Done already", deadline, "1000", "1000"),
		reminderGoal(user, "Still going", deadline, "400", "1000"),
	}}
	notifier := &fakeNotifier{}
	sweep := NewReminderSweep(goals, &fakeUsers{users: []core.User{user}}, notifier)
	sweep.now = func() time.Time { return now }

	sent, err := sweep.CheckGoalDeadlines(context.Background())
	if err != nil {
		t.Fatalf("CheckGoalDeadlines: %v", err)
	}
	if sent != 1 {
		t.Fatalf("sent = %d, want 1", sent)
	}
	got := notifier.sends[0]
	if want := "Reminder: Deadline Approaching for Goal - Still going"; got.Subject != want {
		t.Errorf("subject = %q, want %q", got.Subject, want)
	}
	if !strings.Contains(got.Body, "$400") || !strings.Contains(got.Body, "$1000") {
		t.Errorf("body missing progress amounts: %q", got.Body)
	}
}
