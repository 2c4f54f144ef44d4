package services

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"fintrack/internal/core"
)

// GoalService manages savings goals and guards the allocation-percentage
// invariant: the percentages of a user's goals may never sum above 100.
type GoalService struct {
	goals GoalStore
	now   func() time.Time
}

func NewGoalService(goals GoalStore) *GoalService {
	return &GoalService{goals: goals, now: time.Now}
}

// CreateGoalInput carries the user-entered fields of a new goal.
type CreateGoalInput struct {
	UserID               uuid.UUID
	Name                 string
	TargetAmount         decimal.Decimal
	Deadline             time.Time
	AllocationPercentage decimal.Decimal
}

// Create validates and persists a new goal. A sum of exactly 100 across the
// user's goals is accepted; anything above is rejected.
func (s *GoalService) Create(ctx context.Context, in CreateGoalInput) (core.Goal, error) {
	g := core.Goal{
		ID:                   uuid.New(),
		UserID:               in.UserID,
		Name:                 in.Name,
		TargetAmount:         in.TargetAmount,
		CurrentAmount:        decimal.Zero,
		Deadline:             in.Deadline,
		AllocationPercentage: in.AllocationPercentage,
	}
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}
	if g.Deadline.Before(s.now()) {
		return core.Goal{}, fmt.Errorf("%w: deadline cannot be in the past", core.ErrValidation)
	}

	if err := s.checkAllocationSum(ctx, in.UserID, uuid.Nil, in.AllocationPercentage); err != nil {
		return core.Goal{}, err
	}

	if err := s.goals.CreateGoal(ctx, g); err != nil {
		return core.Goal{}, err
	}
	return g, nil
}

// UpdateGoalInput carries the editable fields of an existing goal.
type UpdateGoalInput struct {
	TargetAmount         decimal.Decimal
	CurrentAmount        decimal.Decimal
	Deadline             time.Time
	AllocationPercentage decimal.Decimal
}

// Update replaces a goal's editable fields. The percentage check excludes
// the goal's own previous percentage from the sum, so raising a single
// goal's share within the remaining headroom always succeeds.
func (s *GoalService) Update(ctx context.Context, id uuid.UUID, in UpdateGoalInput) (core.Goal, error) {
	g, err := s.goals.GetGoal(ctx, id)
	if err != nil {
		return core.Goal{}, err
	}

	g.TargetAmount = in.TargetAmount
	g.CurrentAmount = in.CurrentAmount
	g.Deadline = in.Deadline
	g.AllocationPercentage = in.AllocationPercentage
	if err := g.Validate(); err != nil {
		return core.Goal{}, err
	}

	if err := s.checkAllocationSum(ctx, g.UserID, g.ID, in.AllocationPercentage); err != nil {
		return core.Goal{}, err
	}

	if err := s.goals.UpdateGoal(ctx, g); err != nil {
		return core.Goal{}, err
	}
	return g, nil
}

// checkAllocationSum rejects a percentage that would push the user's total
// above 100. exclude names a goal whose current share is being replaced.
func (s *GoalService) checkAllocationSum(ctx context.Context, userID, exclude uuid.UUID, pct decimal.Decimal) error {
	existing, err := s.goals.ListGoals(ctx, userID)
	if err != nil {
		return fmt.Errorf("list goals: %w", err)
	}

	total := pct
	for _, g := range existing {
		if g.ID == exclude {
			continue
		}
		total = total.Add(g.AllocationPercentage)
	}
	if total.GreaterThan(decimal.NewFromInt(100)) {
		return fmt.Errorf("%w: total allocation percentage cannot exceed 100%%", core.ErrValidation)
	}
	return nil
}

func (s *GoalService) Get(ctx context.Context, id uuid.UUID) (core.Goal, error) {
	return s.goals.GetGoal(ctx, id)
}

func (s *GoalService) ListForUser(ctx context.Context, userID uuid.UUID) ([]core.Goal, error) {
	return s.goals.ListGoals(ctx, userID)
}

func (s *GoalService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.goals.DeleteGoal(ctx, id)
}
