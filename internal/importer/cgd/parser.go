package cgd

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	enc "github.com/MrJamesThe3rd/budgetapp/internal/encoding"
	"github.com/MrJamesThe3rd/budgetapp/internal/transaction"
)

// Parser reads CGD bank CSV exports into statement lines with signed amounts.
// The export format (conta, extrato, cartão) is detected from the column headers.
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
	reader.Comma = ';'
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	l, cols, headerIdx := detectLayout(rows)
	if l == nil {
		return nil, fmt.Errorf("no matching CGD format found: expected columns for conta, extrato, or cartão")
	}

	slog.Debug("detected statement layout", "layout", l.name, "header_row", headerIdx+1)

	return parseRows(l, cols, rows[headerIdx+1:], headerIdx)
}

// colIndex maps column names to their index in the row.
type colIndex map[string]int

// detectLayout scans rows for a header naming every column of a known layout and
// returns it with its column positions and the header's row index.
func detectLayout(rows [][]string) (*layout, colIndex, int) {
	for rowIdx, row := range rows {
		cols := make(colIndex)

		for i, cell := range row {
			if name := strings.TrimSpace(cell); name != "" {
				cols[name] = i
			}
		}

		for i := range layouts {
			if layouts[i].matches(cols) {
				return &layouts[i], cols, rowIdx
			}
		}
	}

	return nil, nil, 0
}

// parseRows turns the data rows below the header at headerIdx into statement lines.
// Rows without a date or an amount are footers and are skipped.
func parseRows(l *layout, cols colIndex, rows [][]string, headerIdx int) ([]transaction.ImportParams, error) {
	var lines []transaction.ImportParams

	for i, row := range rows {
		date, ok := parseDate(cellValue(row, cols[l.date]))
		if !ok {
			continue
		}

		memo := cellValue(row, cols[l.memo])
		if memo == "" {
			return nil, fmt.Errorf("row %d: missing description", headerIdx+i+2)
		}

		cents, ok := l.amount(cols, row)
		if !ok {
			continue
		}

		lines = append(lines, transaction.ImportParams{
			OccurredOn:  date,
			AmountCents: cents,
			Memo:        memo,
		})
	}

	return lines, nil
}

func parseDate(s string) (time.Time, bool) {
	if s == "" {
		return time.Time{}, false
	}

	t, err := time.Parse("02-01-2006", s)
	if err != nil {
		return time.Time{}, false
	}

	return t, true
}

func cellValue(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}

	return strings.TrimSpace(row[idx])
}
