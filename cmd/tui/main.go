package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budgetapp/cmd/tui/internal/view"
	"github.com/MrJamesThe3rd/budgetapp/internal/account"
	accountStore "github.com/MrJamesThe3rd/budgetapp/internal/account/store"
	"github.com/MrJamesThe3rd/budgetapp/internal/category"
	categoryStore "github.com/MrJamesThe3rd/budgetapp/internal/category/store"
	"github.com/MrJamesThe3rd/budgetapp/internal/config"
	"github.com/MrJamesThe3rd/budgetapp/internal/database"
	"github.com/MrJamesThe3rd/budgetapp/internal/export"
	"github.com/MrJamesThe3rd/budgetapp/internal/importer"
	"github.com/MrJamesThe3rd/budgetapp/internal/rule"
	ruleStore "github.com/MrJamesThe3rd/budgetapp/internal/rule/store"
	"github.com/MrJamesThe3rd/budgetapp/internal/transaction"
	txStore "github.com/MrJamesThe3rd/budgetapp/internal/transaction/store"
	"github.com/MrJamesThe3rd/budgetapp/internal/user"
	userStore "github.com/MrJamesThe3rd/budgetapp/internal/user/store"
)

const logFile = "budget-tui.log"

type model struct {
	app   *view.App
	email string

	login view.LoginModel
	// stack holds the open screens above the menu, topmost last.
	stack []view.View

	width  int
	height int
}

func newModel(app *view.App) model {
	return model{app: app, login: view.NewLoginModel(app)}
}

func (m model) Init() tea.Cmd {
	return m.login.Init()
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height

	case view.LoggedInMsg:
		m.app.UserID = msg.User.ID
		m.email = msg.User.Email
		slog.Info("signed in", "user_id", msg.User.ID)

		return m, nil

	case view.OpenMsg:
		m.stack = append(m.stack, msg.View)
		width, height := m.width, m.height

		return m, tea.Batch(msg.View.Init(), func() tea.Msg {
			return tea.WindowSizeMsg{Width: width, Height: height}
		})

	case view.BackMsg:
		if len(m.stack) > 0 {
			m.stack = m.stack[:len(m.stack)-1]
		}

		if len(m.stack) == 0 {
			return m, nil
		}

		return m, func() tea.Msg { return view.ResumeMsg{} }
	}

	if m.app.UserID == uuid.Nil {
		next, cmd := m.login.Update(msg)
		m.login = next.(view.LoginModel)

		return m, cmd
	}

	if len(m.stack) == 0 {
		return m.updateMenu(msg)
	}

	top := len(m.stack) - 1

	next, cmd := m.stack[top].Update(msg)
	m.stack[top] = next.(view.View)

	return m, cmd
}

func (m model) updateMenu(msg tea.Msg) (tea.Model, tea.Cmd) {
	keyMsg, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch keyMsg.String() {
	case "q":
		return m, tea.Quit
	case "1":
		return m, view.Open(view.NewAccountsModel(m.app))
	case "2":
		return m, view.Open(view.NewEntryModel(m.app, nil))
	}

	return m, nil
}

func (m model) View() string {
	if m.app.UserID == uuid.Nil {
		return m.login.View()
	}

	if len(m.stack) > 0 {
		return m.stack[len(m.stack)-1].View()
	}

	return lipgloss.NewStyle().Padding(2).Render(
		"Budget\n" +
			lipgloss.NewStyle().Faint(true).Render("Signed in as "+m.email) + "\n\n" +
			"1. Accounts\n" +
			"2. Record Transaction\n\n" +
			"q. Quit",
	)
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	// The terminal belongs to the program, so logs go to a file.
	f, err := tea.LogToFile(logFile, "tui")
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	slog.SetDefault(slog.New(slog.NewTextHandler(f, nil)))

	db, err := database.New(context.Background(), cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer db.Close()

	accounts := account.NewService(accountStore.New(db))
	categories := category.NewService(categoryStore.New(db))
	transactions := transaction.NewService(txStore.New(db), accounts, categories)

	app := &view.App{
		Users:        user.NewService(userStore.New(db)),
		Accounts:     accounts,
		Categories:   categories,
		Transactions: transactions,
		Rules:        rule.NewService(ruleStore.New(db), categories),
		Importer:     importer.NewService(),
		Export:       export.NewService(accounts, categories, transactions),
	}

	p := tea.NewProgram(newModel(app), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running TUI: %w", err)
	}

	return nil
}

func main() {
	if err := run(); err != nil {
		slog.Error("tui failed", "error", err)
		os.Exit(1)
	}
}
