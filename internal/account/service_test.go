package account_test

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/budgetapp/internal/account"
	"github.com/MrJamesThe3rd/budgetapp/internal/apperr"
)

func TestService_Create(t *testing.T) {
	userID := uuid.New()
	existingID := uuid.New()

	type testCase struct {
		name      string
		userID    uuid.UUID
		params    account.CreateParams
		setupMock func(m *account.MockRepository)
		wantKind  apperr.Kind
		wantMsgs  []string
		wantErr   bool
	}

	tests := []testCase{
		{
			name:   "MonthlyBudget",
			userID: userID,
			params: account.CreateParams{
				Name:            "Checking",
				Type:            account.TypeMonthlyBudget,
				StartingBalance: decimal.RequireFromString("1000"),
			},
			setupMock: func(m *account.MockRepository) {
				m.EXPECT().FindMonthlyBudget(gomock.Any(), userID).Return(nil, account.ErrNotFound)
				m.EXPECT().
					CreateAccount(gomock.Any(), gomock.Any()).
					DoAndReturn(func(_ context.Context, a *account.Account) error {
						assert.Equal(t, int64(100000), a.StartingBalanceCents)
						assert.Equal(t, userID, a.UserID)
						a.ID = uuid.New()

						return nil
					})
			},
		},
		{
			name:   "LoanSkipsUniquenessCheck",
			userID: userID,
			params: account.CreateParams{
				Name:            "Car",
				Type:            account.TypeLoan,
				StartingBalance: decimal.RequireFromString("200"),
			},
			setupMock: func(m *account.MockRepository) {
				m.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).Return(nil)
			},
		},
		{
			name:   "SecondMonthlyBudget",
			userID: userID,
			params: account.CreateParams{Name: "Another", Type: account.TypeMonthlyBudget},
			setupMock: func(m *account.MockRepository) {
				m.EXPECT().
					FindMonthlyBudget(gomock.Any(), userID).
					Return(&account.Account{ID: existingID, UserID: userID, Type: account.TypeMonthlyBudget}, nil)
			},
			wantErr:  true,
			wantKind: apperr.KindValidation,
			wantMsgs: []string{"Only one monthly budget account is allowed per user"},
		},
		{
			name:   "IndexRejectsConcurrentSecondMonthlyBudget",
			userID: userID,
			params: account.CreateParams{Name: "Race", Type: account.TypeMonthlyBudget},
			setupMock: func(m *account.MockRepository) {
				m.EXPECT().FindMonthlyBudget(gomock.Any(), userID).Return(nil, account.ErrNotFound)
				m.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).Return(account.ErrMonthlyBudgetTaken)
			},
			wantErr:  true,
			wantKind: apperr.KindValidation,
			wantMsgs: []string{"Only one monthly budget account is allowed per user"},
		},
		{
			name:     "InvalidType",
			userID:   userID,
			params:   account.CreateParams{Name: "Savings", Type: account.Type("savings")},
			wantErr:  true,
			wantKind: apperr.KindValidation,
			wantMsgs: []string{"Account type is not included in the list"},
		},
		{
			name:   "StartingBalanceTooLarge",
			userID: userID,
			params: account.CreateParams{
				Name:            "Lottery",
				Type:            account.TypeLoan,
				StartingBalance: decimal.RequireFromString("184467440737095516.17"),
			},
			wantErr:  true,
			wantKind: apperr.KindValidation,
			wantMsgs: []string{"Starting balance is too large"},
		},
		{
			name:     "NoUser",
			userID:   uuid.Nil,
			params:   account.CreateParams{Type: account.TypeLoan},
			wantErr:  true,
			wantKind: apperr.KindUnauthorized,
		},
		{
			name:   "RepoError",
			userID: userID,
			params: account.CreateParams{Type: account.TypeLoan},
			setupMock: func(m *account.MockRepository) {
				m.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).Return(errors.New("db error"))
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := account.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			svc := account.NewService(repo)
			got, err := svc.Create(context.Background(), tt.userID, tt.params)

			if tt.wantErr {
				require.Error(t, err)
				assert.Nil(t, got)
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))

				if tt.wantMsgs != nil {
					assert.Equal(t, tt.wantMsgs, apperr.Messages(err))
				}

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.params.Type, got.Type)
		})
	}
}

func TestService_Update(t *testing.T) {
	userID := uuid.New()
	budgetID := uuid.New()
	loanID := uuid.New()

	t.Run("KeepingOwnMonthlyBudget", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := account.NewMockRepository(ctrl)

		budget := &account.Account{ID: budgetID, UserID: userID, Type: account.TypeMonthlyBudget}
		name := "Renamed"

		repo.EXPECT().GetAccount(gomock.Any(), budgetID).Return(budget, nil)
		repo.EXPECT().FindMonthlyBudget(gomock.Any(), userID).Return(budget, nil)
		repo.EXPECT().UpdateAccount(gomock.Any(), budget).Return(nil)

		got, err := account.NewService(repo).Update(context.Background(), userID, budgetID, account.UpdateParams{Name: &name})
		require.NoError(t, err)
		assert.Equal(t, "Renamed", got.Name)
	})

	t.Run("LoanToSecondMonthlyBudget", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := account.NewMockRepository(ctrl)

		typ := account.TypeMonthlyBudget

		repo.EXPECT().
			GetAccount(gomock.Any(), loanID).
			Return(&account.Account{ID: loanID, UserID: userID, Type: account.TypeLoan}, nil)
		repo.EXPECT().
			FindMonthlyBudget(gomock.Any(), userID).
			Return(&account.Account{ID: budgetID, UserID: userID, Type: account.TypeMonthlyBudget}, nil)

		got, err := account.NewService(repo).Update(context.Background(), userID, loanID, account.UpdateParams{Type: &typ})
		assert.Nil(t, got)
		assert.True(t, apperr.Is(err, apperr.KindValidation))
		assert.Contains(t, err.Error(), "Only one monthly budget account is allowed")
	})

	t.Run("StartingBalance", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := account.NewMockRepository(ctrl)

		balance := decimal.RequireFromString("12.345")

		repo.EXPECT().
			GetAccount(gomock.Any(), loanID).
			Return(&account.Account{ID: loanID, UserID: userID, Type: account.TypeLoan}, nil)
		repo.EXPECT().UpdateAccount(gomock.Any(), gomock.Any()).Return(nil)

		got, err := account.NewService(repo).Update(context.Background(), userID, loanID, account.UpdateParams{StartingBalance: &balance})
		require.NoError(t, err)
		assert.Equal(t, int64(1235), got.StartingBalanceCents)
	})
	t.Run("StartingBalanceTooLarge", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := account.NewMockRepository(ctrl)

		balance := decimal.RequireFromString("-92233720368547758.09")

		repo.EXPECT().
			GetAccount(gomock.Any(), loanID).
			Return(&account.Account{ID: loanID, UserID: userID, Type: account.TypeLoan}, nil)

		got, err := account.NewService(repo).Update(context.Background(), userID, loanID, account.UpdateParams{StartingBalance: &balance})
		assert.Nil(t, got)
		assert.Equal(t, []string{"Starting balance is too large"}, apperr.Messages(err))
	})
}

func TestService_Get(t *testing.T) {
	userID := uuid.New()
	id := uuid.New()

	type testCase struct {
		name      string
		userID    uuid.UUID
		setupMock func(m *account.MockRepository)
		wantKind  apperr.Kind
		wantErr   bool
	}

	tests := []testCase{
		{
			name:   "Owned",
			userID: userID,
			setupMock: func(m *account.MockRepository) {
				m.EXPECT().GetAccount(gomock.Any(), id).Return(&account.Account{ID: id, UserID: userID}, nil)
			},
		},
		{
			name:   "OtherUser",
			userID: userID,
			setupMock: func(m *account.MockRepository) {
				m.EXPECT().GetAccount(gomock.Any(), id).Return(&account.Account{ID: id, UserID: uuid.New()}, nil)
			},
			wantErr:  true,
			wantKind: apperr.KindUnauthorized,
		},
		{
			name:   "Missing",
			userID: userID,
			setupMock: func(m *account.MockRepository) {
				m.EXPECT().GetAccount(gomock.Any(), id).Return(nil, account.ErrNotFound)
			},
			wantErr:  true,
			wantKind: apperr.KindNotFound,
		},
		{
			name:     "NoUser",
			userID:   uuid.Nil,
			wantErr:  true,
			wantKind: apperr.KindUnauthorized,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			repo := account.NewMockRepository(ctrl)
			if tt.setupMock != nil {
				tt.setupMock(repo)
			}

			got, err := account.NewService(repo).Get(context.Background(), tt.userID, id)

			if tt.wantErr {
				assert.Nil(t, got)
				assert.Equal(t, tt.wantKind, apperr.KindOf(err))

				return
			}

			require.NoError(t, err)
			assert.Equal(t, id, got.ID)
		})
	}
}

func TestService_MonthlyBudget(t *testing.T) {
	userID := uuid.New()

	ctrl := gomock.NewController(t)
	repo := account.NewMockRepository(ctrl)
	repo.EXPECT().FindMonthlyBudget(gomock.Any(), userID).Return(nil, account.ErrNotFound)

	got, err := account.NewService(repo).MonthlyBudget(context.Background(), userID)
	assert.Nil(t, got)
	assert.True(t, apperr.Is(err, apperr.KindArgument))
	assert.Equal(t, []string{"No monthly budget account found"}, apperr.Messages(err))
}

func TestService_Balance(t *testing.T) {
	a := &account.Account{ID: uuid.New(), Type: account.TypeLoan, StartingBalanceCents: 20000}

	ctrl := gomock.NewController(t)
	repo := account.NewMockRepository(ctrl)
	repo.EXPECT().
		Totals(gomock.Any(), a.ID).
		Return(account.Totals{SumCents: 2500, CreditCents: 2500}, nil).
		Times(2)

	svc := account.NewService(repo)

	first, err := svc.Balance(context.Background(), a)
	require.NoError(t, err)

	second, err := svc.Balance(context.Background(), a)
	require.NoError(t, err)

	assert.Equal(t, first, second)
	assert.Equal(t, int64(22500), first.CurrentCents)
	assert.Equal(t, int64(2500), first.SpendingOrPaymentsCents)
}

func TestService_Delete(t *testing.T) {
	userID := uuid.New()
	id := uuid.New()

	ctrl := gomock.NewController(t)
	repo := account.NewMockRepository(ctrl)
	repo.EXPECT().GetAccount(gomock.Any(), id).Return(&account.Account{ID: id, UserID: userID}, nil)
	repo.EXPECT().DeleteAccount(gomock.Any(), id).Return(nil)

	got, err := account.NewService(repo).Delete(context.Background(), userID, id)
	require.NoError(t, err)
	assert.Equal(t, id, got.ID)
}
