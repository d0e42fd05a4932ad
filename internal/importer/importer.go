package importer

import (
	"io"

	"github.com/MrJamesThe3rd/budgetapp/internal/transaction"
)

type Bank string

const (
	BankCGD   Bank = "cgd"
	BankPlain Bank = "plain"
)

// Importer turns a bank export into statement lines with signed cents.
type Importer interface {
	Parse(r io.Reader) ([]transaction.ImportParams, error)
}
