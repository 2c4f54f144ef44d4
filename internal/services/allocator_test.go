package services

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
)

func TestGoalAllocatorSplitsIncomeByPercentage(t *testing.T) {
	user := testUser()
	vacation := core.Goal{
		ID:                   uuid.New(),
		UserID:               user.ID,
		Name:                 "Vacation",
		TargetAmount:         dec("5000"),
		CurrentAmount:        dec("100"),
		Deadline:             time.Now().AddDate(1, 0, 0),
		AllocationPercentage: dec("50"),
	}
	laptop := core.Goal{
		ID:                   uuid.New(),
		UserID:               user.ID,
		Name:                 "New laptop",
		TargetAmount:         dec("2000"),
		CurrentAmount:        dec("0"),
		Deadline:             time.Now().AddDate(1, 0, 0),
		AllocationPercentage: dec("30"),
	}

	goals := &fakeGoals{items: []core.Goal{vacation, laptop}}
	users := &fakeUsers{users: []core.User{user}}
	notifier := &fakeNotifier{}

	NewGoalAllocator(goals, users, notifier).ApplyIncome(context.Background(), user.ID, dec("1000"))

	got, _ := goals.GetGoal(context.Background(), vacation.ID)
	if !got.CurrentAmount.Equal(dec("600")) {
		t.Errorf("vacation current = %s, want 600", got.CurrentAmount)
	}
	got, _ = goals.GetGoal(context.Background(), laptop.ID)
	if !got.CurrentAmount.Equal(dec("300")) {
		t.Errorf("laptop current = %s, want 300", got.CurrentAmount)
	}
	if len(notifier.sends) != 0 {
		t.Errorf("expected no completion notifications, got %v", notifier.subjects())
	}
}

func TestGoalAllocatorClampsAtTargetAndNotifiesOnce(t *testing.T) {
	user := testUser()
	goal := core.Goal{
		ID:                   uuid.New(),
		UserID:               user.ID,
		Name:                 "Emergency fund",
		TargetAmount:         dec("1000"),
		CurrentAmount:        dec("950"),
		Deadline:             time.Now().AddDate(0, 6, 0),
		AllocationPercentage: dec("50"),
	}

	goals := &fakeGoals{items: []core.Goal{goal}}
	users := &fakeUsers{users: []core.User{user}}
	notifier := &fakeNotifier{}
	allocator := NewGoalAllocator(goals, users, notifier)

	allocator.ApplyIncome(context.Background(), user.ID, dec("1000"))

	got, _ := goals.GetGoal(context.Background(), goal.ID)
	if !got.CurrentAmount.Equal(dec("1000")) {
		t.Fatalf("current = %s, want clamp at 1000", got.CurrentAmount)
	}
	if len(notifier.sends) != 1 {
		t.Fatalf("sends = %d, want 1 completion notification", len(notifier.sends))
	}
	if want := "Goal Completed: Emergency fund"; notifier.sends[0].Subject != want {
		t.Errorf("subject = %q, want %q", notifier.sends[0].Subject, want)
	}

	// A complete goal is skipped on the next income, so no second
	// notification fires.
	allocator.ApplyIncome(context.Background(), user.ID, dec("1000"))
	if len(notifier.sends) != 1 {
		t.Errorf("sends after second income = %d, want still 1", len(notifier.sends))
	}
}

func TestBudgetAllocatorAccumulatesBothBudgets(t *testing.T) {
	user := testUser()
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	monthly := core.Budget{
		ID:     uuid.New(),
		UserID: user.ID,
		Type:   core.MonthlyBudget,
		Amount: dec("500"),
		Month:  "March",
		Year:   2025,
	}
	food := core.Budget{
		ID:       uuid.New(),
		UserID:   user.ID,
		Type:     core.CategoryBudget,
		Category: core.CategoryFood,
		Amount:   dec("200"),
	}

	budgets := &fakeBudgets{items: []core.Budget{monthly, food}}
	users := &fakeUsers{users: []core.User{user}}
	notifier := &fakeNotifier{}
	allocator := NewBudgetAllocator(budgets, users, notifier)
	allocator.now = func() time.Time { return now }

	allocator.ApplyExpense(context.Background(), user.ID, dec("150"), core.CategoryFood)

	got, _ := budgets.GetBudget(context.Background(), monthly.ID)
	if !got.CurrentAmount.Equal(dec("150")) {
		t.Errorf("monthly current = %s, want 150", got.CurrentAmount)
	}
	got, _ = budgets.GetBudget(context.Background(), food.ID)
	if !got.CurrentAmount.Equal(dec("150")) {
		t.Errorf("category current = %s, want 150", got.CurrentAmount)
	}
	if len(notifier.sends) != 0 {
		t.Errorf("expected no notifications under budget, got %v", notifier.subjects())
	}
}

func TestBudgetAllocatorNotifiesWhenExceeded(t *testing.T) {
	user := testUser()
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	monthly := core.Budget{
		ID:            uuid.New(),
		UserID:        user.ID,
		Type:          core.MonthlyBudget,
		Amount:        dec("500"),
		CurrentAmount: dec("450"),
		Month:         "March",
		Year:          2025,
	}

	budgets := &fakeBudgets{items: []core.Budget{monthly}}
	users := &fakeUsers{users: []core.User{user}}
	notifier := &fakeNotifier{}
	allocator := NewBudgetAllocator(budgets, users, notifier)
	allocator.now = func() time.Time { return now }

	allocator.ApplyExpense(context.Background(), user.ID, dec("150"), core.CategoryFood)

	if len(notifier.sends) != 1 {
		t.Fatalf("sends = %d, want 1 over-budget notification", len(notifier.sends))
	}
	sent := notifier.sends[0]
	if sent.Subject != "Monthly Budget Exceeded" {
		t.Errorf("subject = %q", sent.Subject)
	}
	if !strings.Contains(sent.Body, "$500") || !strings.Contains(sent.Body, "$600") {
		t.Errorf("body missing amounts: %q", sent.Body)
	}
}

func TestBudgetAllocatorExactLimitDoesNotNotify(t *testing.T) {
	user := testUser()
	now := time.Date(2025, time.March, 10, 12, 0, 0, 0, time.UTC)
	food := core.Budget{
		ID:            uuid.New(),
		UserID:        user.ID,
		Type:          core.CategoryBudget,
		Category:      core.CategoryFood,
		Amount:        dec("200"),
		CurrentAmount: dec("120"),
	}

	budgets := &fakeBudgets{items: []core.Budget{food}}
	users := &fakeUsers{users: []core.User{user}}
	notifier := &fakeNotifier{}
	allocator := NewBudgetAllocator(budgets, users, notifier)
	allocator.now = func() time.Time { return now }

	allocator.ApplyExpense(context.Background(), user.ID, dec("80"), core.CategoryFood)

	got, _ := budgets.GetBudget(context.Background(), food.ID)
	if !got.CurrentAmount.Equal(dec("200")) {
		t.Fatalf("current = %s, want 200", got.CurrentAmount)
	}
	if len(notifier.sends) != 0 {
		t.Errorf("reaching the limit exactly must not notify, got %v", notifier.subjects())
	}
}
