package export_test

import (
	"bytes"
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/budgetapp/internal/account"
	"github.com/MrJamesThe3rd/budgetapp/internal/apperr"
	"github.com/MrJamesThe3rd/budgetapp/internal/category"
	"github.com/MrJamesThe3rd/budgetapp/internal/export"
	"github.com/MrJamesThe3rd/budgetapp/internal/transaction"
)

func date(y, m, d int) time.Time {
	return time.Date(y, time.Month(m), d, 0, 0, 0, 0, time.UTC)
}

func TestService_WriteStatement(t *testing.T) {
	userID := uuid.New()
	budget := &account.Account{ID: uuid.New(), UserID: userID, Type: account.TypeMonthlyBudget, StartingBalanceCents: 100000}
	groceries := &category.Category{ID: uuid.New(), UserID: userID, Name: "Groceries"}

	txs := []*transaction.Transaction{
		{ID: uuid.New(), AccountID: budget.ID, AmountCents: -5000, OccurredOn: date(2024, 4, 28), Memo: "Rent share"},
		{ID: uuid.New(), AccountID: budget.ID, BudgetCategoryID: &groceries.ID, AmountCents: -4250, OccurredOn: date(2024, 5, 2), Memo: "Market, weekly"},
		{ID: uuid.New(), AccountID: budget.ID, AmountCents: -750, OccurredOn: date(2024, 5, 9), Memo: "Coffee"},
	}

	type testCase struct {
		name      string
		period    export.Period
		setupMock func(a *export.MockAccounts, c *export.MockCategories, tr *export.MockTransactions)
		want      string
		wantErr   error
	}

	start := date(2024, 5, 1)

	tests := []testCase{
		{
			name: "WholeHistory",
			setupMock: func(a *export.MockAccounts, c *export.MockCategories, tr *export.MockTransactions) {
				a.EXPECT().Get(gomock.Any(), userID, budget.ID).Return(budget, nil)
				tr.EXPECT().List(gomock.Any(), userID, transaction.ListFilter{AccountID: &budget.ID}).Return(txs, nil)
				c.EXPECT().List(gomock.Any(), userID).Return([]*category.Category{groceries}, nil)
			},
			want: "date,memo,category,amount,balance\n" +
				",Opening balance,,,1000.00\n" +
				"2024-04-28,Rent share,,-50.00,950.00\n" +
				"2024-05-02,\"Market, weekly\",Groceries,-42.50,907.50\n" +
				"2024-05-09,Coffee,,-7.50,900.00\n" +
				",Closing balance,,,900.00\n",
		},
		{
			name:   "EarlierRowsFoldIntoOpening",
			period: export.Period{Start: &start},
			setupMock: func(a *export.MockAccounts, c *export.MockCategories, tr *export.MockTransactions) {
				a.EXPECT().Get(gomock.Any(), userID, budget.ID).Return(budget, nil)
				tr.EXPECT().List(gomock.Any(), userID, transaction.ListFilter{AccountID: &budget.ID}).Return(txs, nil)
				c.EXPECT().List(gomock.Any(), userID).Return([]*category.Category{groceries}, nil)
			},
			want: "date,memo,category,amount,balance\n" +
				",Opening balance,,,950.00\n" +
				"2024-05-02,\"Market, weekly\",Groceries,-42.50,907.50\n" +
				"2024-05-09,Coffee,,-7.50,900.00\n" +
				",Closing balance,,,900.00\n",
		},
		{
			name: "AccountNotOwned",
			setupMock: func(a *export.MockAccounts, _ *export.MockCategories, _ *export.MockTransactions) {
				a.EXPECT().Get(gomock.Any(), userID, budget.ID).Return(nil, apperr.Unauthorized())
			},
			wantErr: apperr.Unauthorized(),
		},
		{
			name: "ListFails",
			setupMock: func(a *export.MockAccounts, _ *export.MockCategories, tr *export.MockTransactions) {
				a.EXPECT().Get(gomock.Any(), userID, budget.ID).Return(budget, nil)
				tr.EXPECT().List(gomock.Any(), userID, gomock.Any()).Return(nil, errors.New("db down"))
			},
			wantErr: errors.New("listing transactions: db down"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)

			accounts := export.NewMockAccounts(ctrl)
			categories := export.NewMockCategories(ctrl)
			transactions := export.NewMockTransactions(ctrl)
			tt.setupMock(accounts, categories, transactions)

			var buf bytes.Buffer

			err := export.NewService(accounts, categories, transactions).
				WriteStatement(context.Background(), userID, budget.ID, tt.period, &buf)

			if tt.wantErr != nil {
				require.Error(t, err)
				assert.Equal(t, tt.wantErr.Error(), err.Error())

				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, buf.String())
		})
	}
}
