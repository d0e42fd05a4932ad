package rule

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budgetapp/internal/apperr"
	"github.com/MrJamesThe3rd/budgetapp/internal/category"
	"github.com/MrJamesThe3rd/budgetapp/internal/transaction"
)

//go:generate mockgen -source=service.go -destination=repository_mock.go -package=rule
type Repository interface {
	// FindMatch returns the category of the longest pattern contained in memo, or nil.
	FindMatch(ctx context.Context, userID uuid.UUID, memo string) (*uuid.UUID, error)
	CreateRule(ctx context.Context, r *Rule) error
}

type Categories interface {
	Get(ctx context.Context, userID uuid.UUID, id uuid.UUID) (*category.Category, error)
}

type Service struct {
	repo       Repository
	categories Categories
}

func NewService(repo Repository, categories Categories) *Service {
	return &Service{repo: repo, categories: categories}
}

// Suggest returns the category for memo, or nil when no rule matches.
func (s *Service) Suggest(ctx context.Context, userID uuid.UUID, memo string) (*uuid.UUID, error) {
	if userID == uuid.Nil {
		return nil, apperr.Unauthorized()
	}

	id, err := s.repo.FindMatch(ctx, userID, memo)
	if err != nil {
		return nil, fmt.Errorf("finding rule: %w", err)
	}

	return id, nil
}

// Learn remembers that memos containing pattern belong to categoryID.
func (s *Service) Learn(ctx context.Context, userID uuid.UUID, pattern string, categoryID uuid.UUID) (*Rule, error) {
	pattern = strings.TrimSpace(pattern)
	if pattern == "" {
		return nil, apperr.Validation("Pattern can't be blank")
	}

	if _, err := s.categories.Get(ctx, userID, categoryID); err != nil {
		return nil, err
	}

	r := &Rule{UserID: userID, Pattern: pattern, BudgetCategoryID: categoryID}
	if err := s.repo.CreateRule(ctx, r); err != nil {
		return nil, fmt.Errorf("creating rule: %w", err)
	}

	return r, nil
}

// Categorize fills in the category of every line that has none and matches a rule.
func (s *Service) Categorize(ctx context.Context, userID uuid.UUID, lines []transaction.ImportParams) error {
	for i := range lines {
		if lines[i].BudgetCategoryID != nil {
			continue
		}

		id, err := s.Suggest(ctx, userID, lines[i].Memo)
		if err != nil {
			return err
		}

		lines[i].BudgetCategoryID = id
	}

	return nil
}
