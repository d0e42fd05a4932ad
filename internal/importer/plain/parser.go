package plain

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	enc "github.com/MrJamesThe3rd/budgetapp/internal/encoding"
	"github.com/MrJamesThe3rd/budgetapp/internal/money"
	"github.com/MrJamesThe3rd/budgetapp/internal/transaction"
)

const (
	colDate   = "date"
	colMemo   = "memo"
	colAmount = "amount"
)

// Parser reads a comma separated export with a date,memo,amount header.
// Dates are ISO (2006-01-02) and amounts are signed dollars ("-12.50").
// The statement export of this app is accepted as input.
type Parser struct{}

func NewParser() *Parser {
	return &Parser{}
}

func (p *Parser) Parse(r io.Reader) ([]transaction.ImportParams, error) {
	utf8r, charset, err := enc.NewUTF8Reader(r)
	if err != nil {
		return nil, fmt.Errorf("detect encoding: %w", err)
	}

	slog.Debug("decoding statement", "charset", charset)

	reader := csv.NewReader(utf8r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	if len(rows) == 0 {
		return nil, nil
	}

	cols := make(map[string]int, len(rows[0]))
	for i, name := range rows[0] {
		cols[strings.ToLower(strings.TrimSpace(name))] = i
	}

	for _, required := range []string{colDate, colMemo, colAmount} {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("missing column %q", required)
		}
	}

	var lines []transaction.ImportParams

	for i, row := range rows[1:] {
		// Footer rows such as a closing balance carry no date or no amount.
		on, err := time.Parse(time.DateOnly, cell(row, cols[colDate]))
		if err != nil {
			continue
		}

		rawAmount := cell(row, cols[colAmount])
		if rawAmount == "" {
			continue
		}

		amount, err := decimal.NewFromString(strings.ReplaceAll(rawAmount, ",", ""))
		if err != nil {
			return nil, fmt.Errorf("row %d: invalid amount %q", i+2, rawAmount)
		}

		cents, err := money.ToCents(amount)
		if err != nil {
			return nil, fmt.Errorf("row %d: amount %q: %w", i+2, rawAmount, err)
		}

		lines = append(lines, transaction.ImportParams{
			OccurredOn:  on,
			AmountCents: cents,
			Memo:        cell(row, cols[colMemo]),
		})
	}

	return lines, nil
}

func cell(row []string, idx int) string {
	if idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
