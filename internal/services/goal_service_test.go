package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

func TestGoalCreateAllocationSum(t *testing.T) {
	user := testUser()
	deadline := time.Now().AddDate(1, 0, 0)

	cases := []struct {
		name     string
		existing []decimal.Decimal
		pct      decimal.Decimal
		wantErr  bool
	}{
		{"first goal", nil, dec("60"), false},
		{"sums to exactly 100", []decimal.Decimal{dec("60")}, dec("40"), false},
		{"sums just above 100", []decimal.Decimal{dec("60")}, dec("40.01"), true},
		{"single goal above 100", nil, dec("100.01"), true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			goals := &fakeGoals{}
			for _, pct := range tc.existing {
				goals.items = append(goals.items, core.Goal{
					ID:                   uuid.New(),
					UserID:               user.ID,
					Name:                 "Existing goal",
					TargetAmount:         dec("1000"),
					Deadline:             deadline,
					AllocationPercentage: pct,
				})
			}

			_, err := NewGoalService(goals).Create(context.Background(), CreateGoalInput{
				UserID:               user.ID,
				Name:                 "New goal",
				TargetAmount:         dec("500"),
				Deadline:             deadline,
				AllocationPercentage: tc.pct,
			})
			if tc.wantErr {
				if !errors.Is(err, core.ErrValidation) {
					t.Fatalf("err = %v, want ErrValidation", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("Create: %v", err)
			}
		})
	}
}

func TestGoalUpdateExcludesOwnPercentage(t *testing.T) {
	user := testUser()
	deadline := time.Now().AddDate(1, 0, 0)
	mine := core.Goal{
		ID:                   uuid.New(),
		UserID:               user.ID,
		Name:                 "Vacation",
		TargetAmount:         dec("1000"),
		Deadline:             deadline,
		AllocationPercentage: dec("60"),
	}
	other := core.Goal{
		ID:                   uuid.New(),
		UserID:               user.ID,
		Name:                 "Laptop",
		TargetAmount:         dec("2000"),
		Deadline:             deadline,
		AllocationPercentage: dec("30"),
	}
	goals := &fakeGoals{items: []core.Goal{mine, other}}
	svc := NewGoalService(goals)

	// Raising from 60 to 70 is fine: the check replaces the old 60, so the
	// total becomes 70+30, not 60+70+30.
	updated, err := svc.Update(context.Background(), mine.ID, UpdateGoalInput{
		TargetAmount:         mine.TargetAmount,
		Deadline:             mine.Deadline,
		AllocationPercentage: dec("70"),
	})
	if err != nil {
		t.Fatalf("Update: %v", err)
	}
	if !updated.AllocationPercentage.Equal(dec("70")) {
		t.Errorf("pct = %s, want 70", updated.AllocationPercentage)
	}

	// 71 would push the total to 101.
	_, err = svc.Update(context.Background(), mine.ID, UpdateGoalInput{
		TargetAmount:         mine.TargetAmount,
		Deadline:             mine.Deadline,
		AllocationPercentage: dec("71"),
	})
	if !errors.Is(err, core.ErrValidation) {
		t.Errorf("err = %v, want ErrValidation above 100", err)
	}
}

func TestGoalCreateRejectsPastDeadline(t *testing.T) {
	user := testUser()
	svc := NewGoalService(&fakeGoals{})
	svc.now = func() time.Time { return time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC) }

	_, err := svc.Create(context.Background(), CreateGoalInput{
		UserID:               user.ID,
		Name:                 "Too late",
		TargetAmount:         dec("100"),
		Deadline:             time.Date(2025, time.May, 1, 0, 0, 0, 0, time.UTC),
		AllocationPercentage: dec("10"),
	})
	if !errors.Is(err, core.ErrValidation) {
		t.Fatalf("err = %v, want ErrValidation", err)
	}
}

func TestGoalCreateValidatesName(t *testing.T) {
	user := testUser()
	svc := NewGoalService(&fakeGoals{})
	deadline := time.Now().AddDate(1, 0, 0)

	for _, name := range []string{"ab", "x", "   a   "} {
		if _, err := svc.Create(context.Background(), CreateGoalInput{
			UserID:       user.ID,
			Name:         name,
			TargetAmount: dec("100"),
			Deadline:     deadline,
		}); !errors.Is(err, core.ErrValidation) {
			t.Errorf("name %q: err = %v, want ErrValidation", name, err)
		}
	}
}

func TestGoalCreateStartsAtZero(t *testing.T) {
	user := testUser()
	goals := &fakeGoals{}
	g, err := NewGoalService(goals).Create(context.Background(), CreateGoalInput{
		UserID:               user.ID,
		Name:                 "Vacation",
		TargetAmount:         dec("1000"),
		Deadline:             time.Now().AddDate(1, 0, 0),
		AllocationPercentage: dec("25"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if !g.CurrentAmount.IsZero() {
		t.Errorf("current = %s, want 0", g.CurrentAmount)
	}
}
