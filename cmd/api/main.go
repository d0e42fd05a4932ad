package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/MrJamesThe3rd/budgetapp/internal/account"
	accountStore "github.com/MrJamesThe3rd/budgetapp/internal/account/store"
	"github.com/MrJamesThe3rd/budgetapp/internal/category"
	categoryStore "github.com/MrJamesThe3rd/budgetapp/internal/category/store"
	"github.com/MrJamesThe3rd/budgetapp/internal/config"
	"github.com/MrJamesThe3rd/budgetapp/internal/database"
	"github.com/MrJamesThe3rd/budgetapp/internal/export"
	budgetHttp "github.com/MrJamesThe3rd/budgetapp/internal/http"
	accountHandler "github.com/MrJamesThe3rd/budgetapp/internal/http/account"
	authHandler "github.com/MrJamesThe3rd/budgetapp/internal/http/auth"
	categoryHandler "github.com/MrJamesThe3rd/budgetapp/internal/http/category"
	exportHandler "github.com/MrJamesThe3rd/budgetapp/internal/http/export"
	importHandler "github.com/MrJamesThe3rd/budgetapp/internal/http/importcsv"
	"github.com/MrJamesThe3rd/budgetapp/internal/http/ratelimit"
	"github.com/MrJamesThe3rd/budgetapp/internal/http/respond"
	ruleHandler "github.com/MrJamesThe3rd/budgetapp/internal/http/rule"
	txHandler "github.com/MrJamesThe3rd/budgetapp/internal/http/transaction"
	"github.com/MrJamesThe3rd/budgetapp/internal/importer"
	"github.com/MrJamesThe3rd/budgetapp/internal/rule"
	ruleStore "github.com/MrJamesThe3rd/budgetapp/internal/rule/store"
	"github.com/MrJamesThe3rd/budgetapp/internal/session"
	"github.com/MrJamesThe3rd/budgetapp/internal/transaction"
	txStore "github.com/MrJamesThe3rd/budgetapp/internal/transaction/store"
	"github.com/MrJamesThe3rd/budgetapp/internal/user"
	userStore "github.com/MrJamesThe3rd/budgetapp/internal/user/store"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if cfg.IsProduction() {
		slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, nil)))
	}

	if cfg.DB.MigrateOnStart {
		if err := database.Migrate(cfg.ConnectionString()); err != nil {
			return err
		}

		slog.Info("migrations applied")
	}

	db, err := database.New(ctx, cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	var (
		userService        = user.NewService(userStore.New(db))
		accountService     = account.NewService(accountStore.New(db))
		categoryService    = category.NewService(categoryStore.New(db))
		transactionService = transaction.NewService(txStore.New(db), accountService, categoryService)
		ruleService        = rule.NewService(ruleStore.New(db), categoryService)
		importService      = importer.NewService()
		exportService      = export.NewService(accountService, categoryService, transactionService)
		sessions           = session.NewManager(cfg.Auth.Secret, cfg.Auth.TokenTTL)
	)

	rs := respond.New(cfg.IsProduction())
	limiter := ratelimit.New(ctx, cfg.RateLimit.PerMinute, cfg.RateLimit.Burst)

	router := budgetHttp.New(cfg.Server.CORSOrigins, budgetHttp.Handlers{
		Auth: authHandler.NewHandler(userService, sessions, rs, authHandler.CookieConfig{
			Name:   cfg.Auth.CookieName,
			Secure: cfg.Auth.SecureCookie,
		}, limiter),
		Accounts:     accountHandler.NewHandler(accountService, transactionService, rs),
		Categories:   categoryHandler.NewHandler(categoryService, transactionService, rs),
		Transactions: txHandler.NewHandler(transactionService, rs),
		Import:       importHandler.NewHandler(importService, transactionService, ruleService, rs),
		Rules:        ruleHandler.NewHandler(ruleService, rs),
		Export:       exportHandler.NewHandler(exportService, rs),
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.App.Port),
		Handler:           router,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      cfg.Server.Timeout,
		IdleTimeout:       2 * cfg.Server.Timeout,
	}

	errCh := make(chan error, 1)

	go func() {
		slog.Info("starting server", "app", cfg.App.Name, "port", srv.Addr, "env", cfg.App.Env)

		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}

		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	slog.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutting down: %w", err)
	}

	return nil
}
