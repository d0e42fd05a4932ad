package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/MrJamesThe3rd/budgetapp/internal/http/account"
	"github.com/MrJamesThe3rd/budgetapp/internal/http/auth"
	"github.com/MrJamesThe3rd/budgetapp/internal/http/category"
	"github.com/MrJamesThe3rd/budgetapp/internal/http/export"
	"github.com/MrJamesThe3rd/budgetapp/internal/http/importcsv"
	"github.com/MrJamesThe3rd/budgetapp/internal/http/rule"
	"github.com/MrJamesThe3rd/budgetapp/internal/http/transaction"
)

type Handlers struct {
	Auth         *auth.Handler
	Accounts     *account.Handler
	Categories   *category.Handler
	Transactions *transaction.Handler
	Import       *importcsv.Handler
	Rules        *rule.Handler
	Export       *export.Handler
}

func New(corsOrigins []string, h Handlers) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(middleware.Logger)
	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   corsOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-Id"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	router.Get("/up", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	router.Route("/api/v1", func(r chi.Router) {
		r.Route("/auth", h.Auth.Routes)

		r.Group(func(r chi.Router) {
			r.Use(h.Auth.Require)

			r.Route("/accounts", func(r chi.Router) {
				r.With(middleware.AllowContentType("application/json")).Group(h.Accounts.Routes)
				r.Route("/{id}/import", h.Import.Routes)
				r.Route("/{id}/statement", h.Export.Routes)
			})

			r.Route("/budget-categories", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Categories.Routes(r)
			})

			r.Route("/transactions", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Transactions.Routes(r)
			})

			r.Route("/rules", func(r chi.Router) {
				r.Use(middleware.AllowContentType("application/json"))
				h.Rules.Routes(r)
			})
		})
	})

	return router
}
