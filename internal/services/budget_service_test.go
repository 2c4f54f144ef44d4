package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"fintrack/internal/core"
)

func TestBudgetCreateMonthlyStampsCurrentMonth(t *testing.T) {
	user := testUser()
	budgets := &fakeBudgets{}
	svc := NewBudgetService(budgets)
	svc.now = func() time.Time { return time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC) }

	b, err := svc.Create(context.Background(), CreateBudgetInput{
		UserID: user.ID,
		Type:   core.MonthlyBudget,
		Amount: dec("500"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if b.Month != "March" || b.Year != 2025 {
		t.Errorf("period = %s %d, want March 2025", b.Month, b.Year)
	}
	if !b.CurrentAmount.IsZero() {
		t.Errorf("current = %s, want 0", b.CurrentAmount)
	}
}

func TestBudgetCreateRejectsDuplicateMonthly(t *testing.T) {
	user := testUser()
	budgets := &fakeBudgets{}
	svc := NewBudgetService(budgets)
	svc.now = func() time.Time { return time.Date(2025, time.March, 15, 0, 0, 0, 0, time.UTC) }

	in := CreateBudgetInput{UserID: user.ID, Type: core.MonthlyBudget, Amount: dec("500")}
	if _, err := svc.Create(context.Background(), in); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.Create(context.Background(), in); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("duplicate monthly err = %v, want ErrValidation", err)
	}
}

func TestBudgetCreateRejectsDuplicateCategory(t *testing.T) {
	user := testUser()
	svc := NewBudgetService(&fakeBudgets{})

	in := CreateBudgetInput{UserID: user.ID, Type: core.CategoryBudget, Category: core.CategoryFood, Amount: dec("200")}
	if _, err := svc.Create(context.Background(), in); err != nil {
		t.Fatalf("first create: %v", err)
	}
	if _, err := svc.Create(context.Background(), in); !errors.Is(err, core.ErrValidation) {
		t.Fatalf("duplicate category err = %v, want ErrValidation", err)
	}

	// A different category is still fine.
	in.Category = core.CategoryTransportation
	if _, err := svc.Create(context.Background(), in); err != nil {
		t.Errorf("different category err = %v, want nil", err)
	}
}

func TestBudgetCreateValidation(t *testing.T) {
	user := testUser()
	svc := NewBudgetService(&fakeBudgets{})

	cases := []struct {
		name string
		in   CreateBudgetInput
	}{
		{"amount below one", CreateBudgetInput{UserID: user.ID, Type: core.MonthlyBudget, Amount: dec("0.5")}},
		{"category budget without category", CreateBudgetInput{UserID: user.ID, Type: core.CategoryBudget, Amount: dec("100")}},
		{"income category not budgetable", CreateBudgetInput{UserID: user.ID, Type: core.CategoryBudget, Category: core.CategorySalary, Amount: dec("100")}},
		{"unknown type", CreateBudgetInput{UserID: user.ID, Type: "weekly", Amount: dec("100")}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), tc.in); !errors.Is(err, core.ErrValidation) {
				t.Fatalf("err = %v, want ErrValidation", err)
			}
		})
	}
}

func TestBudgetUpdateAmountKeepsProgress(t *testing.T) {
	user := testUser()
	budgets := &fakeBudgets{}
	svc := NewBudgetService(budgets)

	created, err := svc.Create(context.Background(), CreateBudgetInput{
		UserID: user.ID, Type: core.CategoryBudget, Category: core.CategoryFood, Amount: dec("200"),
	})
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := budgets.SaveBudgetProgress(context.Background(), created.ID, dec("150")); err != nil {
		t.Fatalf("SaveBudgetProgress: %v", err)
	}

	updated, err := svc.UpdateAmount(context.Background(), created.ID, dec("300"))
	if err != nil {
		t.Fatalf("UpdateAmount: %v", err)
	}
	if !updated.Amount.Equal(dec("300")) {
		t.Errorf("amount = %s, want 300", updated.Amount)
	}
	if !updated.CurrentAmount.Equal(dec("150")) {
		t.Errorf("current = %s, want untouched 150", updated.CurrentAmount)
	}

	if _, err := svc.UpdateAmount(context.Background(), created.ID, dec("0")); !errors.Is(err, core.ErrValidation) {
		t.Errorf("zero amount err = %v, want ErrValidation", err)
	}
}
