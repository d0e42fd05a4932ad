package account_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/MrJamesThe3rd/budgetapp/internal/account"
	"github.com/MrJamesThe3rd/budgetapp/internal/http/auth"
	httpaccount "github.com/MrJamesThe3rd/budgetapp/internal/http/account"
	"github.com/MrJamesThe3rd/budgetapp/internal/http/respond"
	"github.com/MrJamesThe3rd/budgetapp/internal/transaction"
)

type env struct {
	userID uuid.UUID
	repo   *account.MockRepository
	txRepo *transaction.MockRepository
	router chi.Router
}

func newEnv(t *testing.T) *env {
	t.Helper()

	ctrl := gomock.NewController(t)

	e := &env{
		userID: uuid.New(),
		repo:   account.NewMockRepository(ctrl),
		txRepo: transaction.NewMockRepository(ctrl),
	}

	accounts := account.NewService(e.repo)
	txs := transaction.NewService(e.txRepo, accounts, transaction.NewMockCategories(ctrl))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), e.userID)))
		})
	})
	r.Route("/accounts", httpaccount.NewHandler(accounts, txs, respond.New(false)).Routes)

	e.router = r

	return e
}

func (e *env) do(method, target, body string) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest(method, target, strings.NewReader(body)))

	return rec
}

func TestHandler_Get(t *testing.T) {
	t.Run("DerivesBalances", func(t *testing.T) {
		e := newEnv(t)
		loan := &account.Account{ID: uuid.New(), UserID: e.userID, Name: "Car", Type: account.TypeLoan, StartingBalanceCents: 20000}

		e.repo.EXPECT().GetAccount(gomock.Any(), loan.ID).Return(loan, nil)
		e.repo.EXPECT().Totals(gomock.Any(), loan.ID).Return(account.Totals{SumCents: 2500, CreditCents: 2500}, nil)

		rec := e.do(http.MethodGet, "/accounts/"+loan.ID.String(), "")

		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `"currentBalance":225`)
		assert.Contains(t, body, `"currentBalanceCents":22500`)
		assert.Contains(t, body, `"totalSpendingOrPayments":25`)
		assert.Contains(t, body, `"accountType":"loan"`)
		assert.NotContains(t, body, `"transactions"`)
	})

	t.Run("IncludeTransactions", func(t *testing.T) {
		e := newEnv(t)
		budget := &account.Account{ID: uuid.New(), UserID: e.userID, Type: account.TypeMonthlyBudget, StartingBalanceCents: 100000}
		row := &transaction.Transaction{
			ID: uuid.New(), AccountID: budget.ID, AmountCents: -5000,
			OccurredOn: time.Date(2024, 5, 14, 0, 0, 0, 0, time.UTC), Memo: "Groceries",
		}

		e.repo.EXPECT().GetAccount(gomock.Any(), budget.ID).Return(budget, nil)
		e.repo.EXPECT().Totals(gomock.Any(), budget.ID).Return(account.Totals{SumCents: -5000, DebitCents: -5000}, nil)
		e.txRepo.EXPECT().
			ListTransactions(gomock.Any(), transaction.ListFilter{UserID: e.userID, AccountID: &budget.ID}).
			Return([]*transaction.Transaction{row}, nil)

		rec := e.do(http.MethodGet, "/accounts/"+budget.ID.String()+"?include=transactions", "")

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"currentBalanceCents":95000`)
		assert.Contains(t, rec.Body.String(), `"memo":"Groceries"`)
	})

	t.Run("OtherUser", func(t *testing.T) {
		e := newEnv(t)
		theirs := &account.Account{ID: uuid.New(), UserID: uuid.New(), Type: account.TypeLoan}

		e.repo.EXPECT().GetAccount(gomock.Any(), theirs.ID).Return(theirs, nil)

		rec := e.do(http.MethodGet, "/accounts/"+theirs.ID.String(), "")

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t, `{"data":{"account":null,"errors":["Unauthorized"]}}`, rec.Body.String())
	})
}

func TestHandler_Create(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		e := newEnv(t)

		e.repo.EXPECT().FindMonthlyBudget(gomock.Any(), e.userID).Return(nil, account.ErrNotFound)
		e.repo.EXPECT().CreateAccount(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, a *account.Account) error {
			a.ID = uuid.New()
			return nil
		})

		rec := e.do(http.MethodPost, "/accounts",
			`{"name":"Checking","accountType":"monthly_budget","startingBalance":"1000.005"}`)

		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), `"startingBalanceCents":100001`)
		assert.Contains(t, rec.Body.String(), `"currentBalanceCents":100001`)
	})

	t.Run("SecondMonthlyBudget", func(t *testing.T) {
		e := newEnv(t)

		e.repo.EXPECT().FindMonthlyBudget(gomock.Any(), e.userID).Return(&account.Account{ID: uuid.New(), UserID: e.userID}, nil)

		rec := e.do(http.MethodPost, "/accounts", `{"name":"Second","accountType":"monthly_budget","startingBalance":1}`)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.JSONEq(t,
			`{"data":{"account":null,"errors":["Only one monthly budget account is allowed per user"]}}`,
			rec.Body.String())
	})
}

func TestHandler_List(t *testing.T) {
	e := newEnv(t)
	budget := &account.Account{ID: uuid.New(), UserID: e.userID, Type: account.TypeMonthlyBudget, StartingBalanceCents: 100000}
	loan := &account.Account{ID: uuid.New(), UserID: e.userID, Type: account.TypeLoan, StartingBalanceCents: 20000}

	e.repo.EXPECT().ListAccounts(gomock.Any(), e.userID).Return([]*account.Account{budget, loan}, nil)
	e.repo.EXPECT().Totals(gomock.Any(), budget.ID).Return(account.Totals{SumCents: -7500, DebitCents: -7500}, nil)
	e.repo.EXPECT().Totals(gomock.Any(), loan.ID).Return(account.Totals{SumCents: 2500, CreditCents: 2500}, nil)

	rec := e.do(http.MethodGet, "/accounts", "")

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"currentBalanceCents":92500`)
	assert.Contains(t, rec.Body.String(), `"currentBalanceCents":22500`)
}

func TestHandler_Delete(t *testing.T) {
	e := newEnv(t)
	loan := &account.Account{ID: uuid.New(), UserID: e.userID, Type: account.TypeLoan, StartingBalanceCents: 20000}

	e.repo.EXPECT().GetAccount(gomock.Any(), loan.ID).Return(loan, nil)
	e.repo.EXPECT().DeleteAccount(gomock.Any(), loan.ID).Return(nil)

	rec := e.do(http.MethodDelete, "/accounts/"+loan.ID.String(), "")

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), loan.ID.String())
}
