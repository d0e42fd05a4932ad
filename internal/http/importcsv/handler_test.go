package importcsv_test

import (
	"bytes"
	"context"
	"mime/multipart"
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
	"github.com/MrJamesThe3rd/budgetapp/internal/http/importcsv"
	"github.com/MrJamesThe3rd/budgetapp/internal/http/respond"
	"github.com/MrJamesThe3rd/budgetapp/internal/importer"
	"github.com/MrJamesThe3rd/budgetapp/internal/rule"
	"github.com/MrJamesThe3rd/budgetapp/internal/transaction"
)

type env struct {
	userID   uuid.UUID
	budget   *account.Account
	rules    *rule.MockRepository
	repo     *transaction.MockRepository
	tx       *transaction.MockTx
	accounts *transaction.MockAccounts
	cats     *transaction.MockCategories
	router   chi.Router
}

func newEnv(t *testing.T) *env {
	t.Helper()

	ctrl := gomock.NewController(t)
	userID := uuid.New()

	e := &env{
		userID:   userID,
		budget:   &account.Account{ID: uuid.New(), UserID: userID, Type: account.TypeMonthlyBudget},
		rules:    rule.NewMockRepository(ctrl),
		repo:     transaction.NewMockRepository(ctrl),
		tx:       transaction.NewMockTx(ctrl),
		accounts: transaction.NewMockAccounts(ctrl),
		cats:     transaction.NewMockCategories(ctrl),
	}

	h := importcsv.NewHandler(
		importer.NewService(),
		transaction.NewService(e.repo, e.accounts, e.cats),
		rule.NewService(e.rules, rule.NewMockCategories(ctrl)),
		respond.New(false),
	)

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(auth.WithUserID(r.Context(), userID)))
		})
	})
	r.Route("/accounts/{id}/import", h.Routes)

	e.router = r

	return e
}

func funded(a *account.Account) account.Balance {
	return account.NewBalance(a, account.Totals{SumCents: 100000})
}

func upload(t *testing.T, target, bank, content string) *http.Request {
	t.Helper()

	var body bytes.Buffer

	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("bank", bank))

	fw, err := mw.CreateFormFile("file", "statement.csv")
	require.NoError(t, err)

	_, err = fw.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	return req
}

const statement = "date,memo,amount\n2024-05-01,COMPRA CONTINENTE,-12.50\n2024-05-02,TRF SALARIO,1500\n"

func TestHandler_Import(t *testing.T) {
	t.Run("PostsLinesWithSuggestedCategory", func(t *testing.T) {
		e := newEnv(t)
		groceries := uuid.New()

		e.rules.EXPECT().FindMatch(gomock.Any(), e.userID, "COMPRA CONTINENTE").Return(&groceries, nil)
		e.rules.EXPECT().FindMatch(gomock.Any(), e.userID, "TRF SALARIO").Return(nil, nil)
		e.accounts.EXPECT().Get(gomock.Any(), e.userID, e.budget.ID).Return(e.budget, nil)
		e.cats.EXPECT().Get(gomock.Any(), e.userID, groceries).Return(nil, nil)
		e.repo.EXPECT().BeginImport(gomock.Any(), e.budget.ID).Return(e.tx, nil)
		e.tx.EXPECT().FindDuplicates(gomock.Any(), e.budget.ID, gomock.Len(2)).Return(nil, nil)
		e.accounts.EXPECT().Balance(gomock.Any(), e.budget).Return(funded(e.budget), nil)
		e.tx.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, t *transaction.Transaction) error {
			t.ID = uuid.New()
			return nil
		}).Times(2)
		e.tx.EXPECT().Commit().Return(nil)
		e.tx.EXPECT().Rollback().Return(nil)

		rec := httptest.NewRecorder()
		e.router.ServeHTTP(rec, upload(t, "/accounts/"+e.budget.ID.String()+"/import", "plain", statement))

		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `"imported":2`)
		assert.Contains(t, body, `"budgetCategoryId":"`+groceries.String()+`"`)
		assert.Contains(t, body, `"amountCents":150000`)
	})

	t.Run("ReturnsConflicts", func(t *testing.T) {
		e := newEnv(t)
		existing := &transaction.Transaction{
			ID: uuid.New(), AccountID: e.budget.ID, AmountCents: -1250,
			OccurredOn: time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), Memo: "COMPRA CONTINENTE",
		}

		e.rules.EXPECT().FindMatch(gomock.Any(), e.userID, gomock.Any()).Return(nil, nil).Times(2)
		e.accounts.EXPECT().Get(gomock.Any(), e.userID, e.budget.ID).Return(e.budget, nil)
		e.repo.EXPECT().BeginImport(gomock.Any(), e.budget.ID).Return(e.tx, nil)
		e.tx.EXPECT().FindDuplicates(gomock.Any(), e.budget.ID, gomock.Any()).Return([]*transaction.Transaction{existing}, nil)
		e.tx.EXPECT().Rollback().Return(nil)

		rec := httptest.NewRecorder()
		e.router.ServeHTTP(rec, upload(t, "/accounts/"+e.budget.ID.String()+"/import", "plain", statement))

		require.Equal(t, http.StatusOK, rec.Code)
		body := rec.Body.String()
		assert.Contains(t, body, `"imported":0`)
		assert.Contains(t, body, existing.ID.String())
		assert.Contains(t, body, `"memo":"TRF SALARIO"`)
	})

	t.Run("UnknownBank", func(t *testing.T) {
		e := newEnv(t)

		rec := httptest.NewRecorder()
		e.router.ServeHTTP(rec, upload(t, "/accounts/"+e.budget.ID.String()+"/import", "acme", statement))

		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.JSONEq(t, `{"errors":["unknown bank: acme"]}`, rec.Body.String())
	})
}

func TestHandler_Confirm(t *testing.T) {
	e := newEnv(t)

	e.accounts.EXPECT().Get(gomock.Any(), e.userID, e.budget.ID).Return(e.budget, nil)
	e.accounts.EXPECT().Balance(gomock.Any(), e.budget).Return(funded(e.budget), nil)
	e.repo.EXPECT().BeginImport(gomock.Any(), e.budget.ID).Return(e.tx, nil)
	e.tx.EXPECT().CreateTransaction(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, t *transaction.Transaction) error {
		t.ID = uuid.New()
		return nil
	})
	e.tx.EXPECT().Commit().Return(nil)
	e.tx.EXPECT().Rollback().Return(nil)

	body := `{"lines":[{"occurredOn":"2024-05-01","amountCents":-1250,"memo":"COMPRA CONTINENTE"}]}`
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
		"/accounts/"+e.budget.ID.String()+"/import/confirm", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"imported":1`)
	assert.Contains(t, rec.Body.String(), `"occurredOn":"2024-05-01"`)
}

func TestHandler_Confirm_EmptyBudget(t *testing.T) {
	e := newEnv(t)

	e.accounts.EXPECT().Get(gomock.Any(), e.userID, e.budget.ID).Return(e.budget, nil)
	e.accounts.EXPECT().Balance(gomock.Any(), e.budget).Return(account.NewBalance(e.budget, account.Totals{}), nil)

	body := `{"lines":[{"occurredOn":"2024-05-01","amountCents":-1250,"memo":"COMPRA CONTINENTE"}]}`
	rec := httptest.NewRecorder()
	e.router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost,
		"/accounts/"+e.budget.ID.String()+"/import/confirm", strings.NewReader(body)))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Insufficient funds: monthly budget balance is $0.00")
}
