package cgd

import (
	"strings"

	"github.com/shopspring/decimal"

	"github.com/MrJamesThe3rd/budgetapp/internal/money"
)

// layout is the column set of one CGD export. An export carries either one signed
// amount column or a pair of unsigned debit and credit columns.
type layout struct {
	name   string
	date   string
	memo   string
	signed string
	debit  string
	credit string
}

func (l layout) columns() []string {
	if l.signed != "" {
		return []string{l.date, l.memo, l.signed}
	}

	return []string{l.date, l.memo, l.debit, l.credit}
}

// matches reports whether every column of l is present in cols.
func (l layout) matches(cols colIndex) bool {
	for _, name := range l.columns() {
		if _, ok := cols[name]; !ok {
			return false
		}
	}

	return true
}

// amount returns the signed cents of row: debits negative, credits positive.
// Rows without a non-zero amount are reported as not ok.
func (l layout) amount(cols colIndex, row []string) (int64, bool) {
	if l.signed != "" {
		return cellCents(row, cols[l.signed])
	}

	if cents, ok := cellCents(row, cols[l.debit]); ok {
		return -abs(cents), true
	}

	if cents, ok := cellCents(row, cols[l.credit]); ok {
		return abs(cents), true
	}

	return 0, false
}

// layouts are tried in order, most specific first.
var layouts = []layout{
	{name: "cartão", date: "Data", memo: "Descrição", debit: "Débito", credit: "Crédito"},
	{name: "extrato", date: "Data mov.", memo: "Descrição", signed: "Movimento"},
	{name: "conta", date: "Data mov.", memo: "Descrição", signed: "Montante"},
}

func cellCents(row []string, idx int) (int64, bool) {
	s := cellValue(row, idx)
	if s == "" {
		return 0, false
	}

	cents, err := parseEuropeanAmount(s)
	if err != nil || cents == 0 {
		return 0, false
	}

	return cents, true
}

// parseEuropeanAmount parses amounts such as "1.234,56", "-588,74" or "1 234,56 €" into cents.
func parseEuropeanAmount(s string) (int64, error) {
	clean := strings.Map(func(r rune) rune {
		switch r {
		case '.', ' ', '\u00a0', '€':
			return -1
		case ',':
			return '.'
		}

		return r
	}, s)

	d, err := decimal.NewFromString(clean)
	if err != nil {
		return 0, err
	}

	return money.ToCents(d)
}

func abs(n int64) int64 {
	if n < 0 {
		return -n
	}

	return n
}
