package account

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetapp/internal/apperr"
	"github.com/MrJamesThe3rd/budgetapp/internal/money"
)

const (
	msgNotFound         = "Account not found"
	msgInvalidType      = "Account type is not included in the list"
	msgOneMonthlyBudget = "Only one monthly budget account is allowed per user"
	msgNoMonthlyBudget  = "No monthly budget account found"
	msgBalanceTooLarge  = "Starting balance is too large"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=account
type Repository interface {
	CreateAccount(ctx context.Context, a *Account) error
	GetAccount(ctx context.Context, id uuid.UUID) (*Account, error)
	UpdateAccount(ctx context.Context, a *Account) error
	DeleteAccount(ctx context.Context, id uuid.UUID) error
	ListAccounts(ctx context.Context, userID uuid.UUID) ([]*Account, error)
	FindMonthlyBudget(ctx context.Context, userID uuid.UUID) (*Account, error)
	Totals(ctx context.Context, accountID uuid.UUID) (Totals, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

type CreateParams struct {
	Name            string
	Type            Type
	StartingBalance decimal.Decimal
}

// UpdateParams changes only the fields that are set.
type UpdateParams struct {
	Name            *string
	Type            *Type
	StartingBalance *decimal.Decimal
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, params CreateParams) (*Account, error) {
	if userID == uuid.Nil {
		return nil, apperr.Unauthorized()
	}

	cents, err := money.ToCents(params.StartingBalance)
	if err != nil {
		return nil, apperr.Validation(msgBalanceTooLarge)
	}

	a := &Account{
		UserID:               userID,
		Name:                 params.Name,
		Type:                 params.Type,
		StartingBalanceCents: cents,
	}

	if err := s.validate(ctx, a); err != nil {
		return nil, err
	}

	if err := s.repo.CreateAccount(ctx, a); err != nil {
		if errors.Is(err, ErrMonthlyBudgetTaken) {
			return nil, apperr.Validation(msgOneMonthlyBudget)
		}

		return nil, fmt.Errorf("creating account: %w", err)
	}

	return a, nil
}

func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, params UpdateParams) (*Account, error) {
	a, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		a.Name = *params.Name
	}

	if params.Type != nil {
		a.Type = *params.Type
	}

	if params.StartingBalance != nil {
		cents, err := money.ToCents(*params.StartingBalance)
		if err != nil {
			return nil, apperr.Validation(msgBalanceTooLarge)
		}

		a.StartingBalanceCents = cents
	}

	if err := s.validate(ctx, a); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateAccount(ctx, a); err != nil {
		if errors.Is(err, ErrMonthlyBudgetTaken) {
			return nil, apperr.Validation(msgOneMonthlyBudget)
		}

		return nil, fmt.Errorf("updating account: %w", err)
	}

	return a, nil
}

// validate checks the fields of a and the one-monthly-budget-per-user rule.
// The unique index backs the rule for writes racing past this check.
func (s *Service) validate(ctx context.Context, a *Account) error {
	var c apperr.Collector

	c.Check(a.Type.Valid(), msgInvalidType)

	if a.IsMonthlyBudget() {
		existing, err := s.repo.FindMonthlyBudget(ctx, a.UserID)

		switch {
		case errors.Is(err, ErrNotFound):
		case err != nil:
			return fmt.Errorf("finding monthly budget: %w", err)
		case existing.ID != a.ID:
			c.Add(msgOneMonthlyBudget)
		}
	}

	return c.Err()
}

// Delete removes an account. Its transactions go with it.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) (*Account, error) {
	a, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.DeleteAccount(ctx, id); err != nil {
		return nil, fmt.Errorf("deleting account: %w", err)
	}

	return a, nil
}

// Get returns the account with the given id if it belongs to userID.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Account, error) {
	if userID == uuid.Nil {
		return nil, apperr.Unauthorized()
	}

	a, err := s.repo.GetAccount(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound(msgNotFound)
		}

		return nil, fmt.Errorf("getting account: %w", err)
	}

	if a.UserID != userID {
		return nil, apperr.Unauthorized()
	}

	return a, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*Account, error) {
	if userID == uuid.Nil {
		return nil, apperr.Unauthorized()
	}

	accounts, err := s.repo.ListAccounts(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing accounts: %w", err)
	}

	return accounts, nil
}

// MonthlyBudget returns the user's monthly budget account, or an argument error when
// the user has not created one.
func (s *Service) MonthlyBudget(ctx context.Context, userID uuid.UUID) (*Account, error) {
	if userID == uuid.Nil {
		return nil, apperr.Unauthorized()
	}

	a, err := s.repo.FindMonthlyBudget(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.Argument(msgNoMonthlyBudget)
		}

		return nil, fmt.Errorf("finding monthly budget: %w", err)
	}

	return a, nil
}

// Balance derives the figures of a from the transactions currently persisted.
func (s *Service) Balance(ctx context.Context, a *Account) (Balance, error) {
	t, err := s.repo.Totals(ctx, a.ID)
	if err != nil {
		return Balance{}, fmt.Errorf("summing transactions: %w", err)
	}

	return NewBalance(a, t), nil
}

// Balances derives the figures for each account, in order.
func (s *Service) Balances(ctx context.Context, accounts []*Account) ([]Balance, error) {
	out := make([]Balance, 0, len(accounts))

	for _, a := range accounts {
		b, err := s.Balance(ctx, a)
		if err != nil {
			return nil, err
		}

		out = append(out, b)
	}

	return out, nil
}
