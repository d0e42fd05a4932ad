package view

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/uuid"

	"github.com/MrJamesThe3rd/budgetapp/internal/account"
	"github.com/MrJamesThe3rd/budgetapp/internal/category"
	"github.com/MrJamesThe3rd/budgetapp/internal/export"
	"github.com/MrJamesThe3rd/budgetapp/internal/importer"
	"github.com/MrJamesThe3rd/budgetapp/internal/rule"
	"github.com/MrJamesThe3rd/budgetapp/internal/transaction"
	"github.com/MrJamesThe3rd/budgetapp/internal/user"
)

// View is the interface that all TUI screens implement.
type View interface {
	tea.Model
	Title() string
	ShortHelp() string
}

// App carries the services every screen works against and the signed in user.
type App struct {
	Users        *user.Service
	Accounts     *account.Service
	Categories   *category.Service
	Transactions *transaction.Service
	Rules        *rule.Service
	Importer     *importer.Service
	Export       *export.Service

	UserID uuid.UUID
}

// CommonModel is embedded by all views.
type CommonModel struct {
	app *App
}

// BackMsg pops the current screen.
type BackMsg struct{}

func Back() tea.Msg {
	return BackMsg{}
}

// OpenMsg pushes View on top of the current screen.
type OpenMsg struct {
	View View
}

func Open(v View) tea.Cmd {
	return func() tea.Msg {
		return OpenMsg{View: v}
	}
}

// ResumeMsg is sent to a screen when the one above it is closed.
type ResumeMsg struct{}
