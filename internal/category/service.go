package category

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetapp/internal/apperr"
	"github.com/MrJamesThe3rd/budgetapp/internal/money"
)

const (
	msgNotFound      = "Budget category not found"
	msgNameBlank     = "Name can't be blank"
	msgAmountInvalid = "Amount must be greater than 0"
	msgAmountLarge   = "Amount is too large"
	msgInvalidType   = "Category type is not included in the list"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=category
type Repository interface {
	CreateCategory(ctx context.Context, c *Category) error
	GetCategory(ctx context.Context, id uuid.UUID) (*Category, error)
	UpdateCategory(ctx context.Context, c *Category) error
	DeleteCategory(ctx context.Context, id uuid.UUID) error
	ListCategories(ctx context.Context, userID uuid.UUID) ([]*Category, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// CreateParams describes a new category. An empty Type means variable expense.
type CreateParams struct {
	Name        string
	Amount      decimal.Decimal
	Description *string
	Type        Type
}

type UpdateParams struct {
	Name        *string
	Amount      *decimal.Decimal
	Description *string
	Type        *Type
}

func (s *Service) Create(ctx context.Context, userID uuid.UUID, params CreateParams) (*Category, error) {
	if userID == uuid.Nil {
		return nil, apperr.Unauthorized()
	}

	cents, err := money.ToCents(params.Amount)
	if err != nil {
		return nil, apperr.Validation(msgAmountLarge)
	}

	c := &Category{
		UserID:      userID,
		Name:        strings.TrimSpace(params.Name),
		AmountCents: cents,
		Description: params.Description,
		Type:        params.Type,
	}

	if c.Type == "" {
		c.Type = TypeVariableExpense
	}

	if err := validate(c); err != nil {
		return nil, err
	}

	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("creating category: %w", err)
	}

	return c, nil
}

func (s *Service) Update(ctx context.Context, userID, id uuid.UUID, params UpdateParams) (*Category, error) {
	c, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		c.Name = strings.TrimSpace(*params.Name)
	}

	if params.Amount != nil {
		cents, err := money.ToCents(*params.Amount)
		if err != nil {
			return nil, apperr.Validation(msgAmountLarge)
		}

		c.AmountCents = cents
	}

	if params.Description != nil {
		c.Description = params.Description
	}

	if params.Type != nil {
		c.Type = *params.Type
	}

	if err := validate(c); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateCategory(ctx, c); err != nil {
		return nil, fmt.Errorf("updating category: %w", err)
	}

	return c, nil
}

func validate(c *Category) error {
	var col apperr.Collector

	col.Check(c.Name != "", msgNameBlank)
	col.Check(c.AmountCents > 0, msgAmountInvalid)
	col.Check(c.Type.Valid(), msgInvalidType)

	return col.Err()
}

// Delete removes a category and, through the schema, every transaction filed under it.
func (s *Service) Delete(ctx context.Context, userID, id uuid.UUID) (*Category, error) {
	c, err := s.Get(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	if err := s.repo.DeleteCategory(ctx, id); err != nil {
		return nil, fmt.Errorf("deleting category: %w", err)
	}

	return c, nil
}

// Get returns the category with the given id if it belongs to userID.
func (s *Service) Get(ctx context.Context, userID, id uuid.UUID) (*Category, error) {
	if userID == uuid.Nil {
		return nil, apperr.Unauthorized()
	}

	c, err := s.repo.GetCategory(ctx, id)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return nil, apperr.NotFound(msgNotFound)
		}

		return nil, fmt.Errorf("getting category: %w", err)
	}

	if c.UserID != userID {
		return nil, apperr.Unauthorized()
	}

	return c, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]*Category, error) {
	if userID == uuid.Nil {
		return nil, apperr.Unauthorized()
	}

	categories, err := s.repo.ListCategories(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("listing categories: %w", err)
	}

	return categories, nil
}
