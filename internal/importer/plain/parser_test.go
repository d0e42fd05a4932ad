package plain_test

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budgetapp/internal/importer/plain"
)

func TestParser_Parse(t *testing.T) {
	input := "Date,Memo,Amount\n" +
		"2024-05-01,Paycheck,\"1,500.00\"\n" +
		"2024-05-03,Groceries,-42.195\n" +
		",Closing balance,1457.81\n"

	lines, err := plain.NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, lines, 2)

	assert.Equal(t, time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC), lines[0].OccurredOn)
	assert.Equal(t, "Paycheck", lines[0].Memo)
	assert.Equal(t, int64(150000), lines[0].AmountCents)

	assert.Equal(t, "Groceries", lines[1].Memo)
	assert.Equal(t, int64(-4220), lines[1].AmountCents)
	assert.Nil(t, lines[1].BudgetCategoryID)
}

func TestParser_StatementExportRoundTrip(t *testing.T) {
	input := "date,memo,category,amount,balance\n" +
		"2024-05-14,Car payment,Car loan,-25.00,75.00\n" +
		"2024-05-14,Closing balance,,,75.00\n"

	lines, err := plain.NewParser().Parse(strings.NewReader(input))
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, int64(-2500), lines[0].AmountCents)
}

func TestParser_MissingColumn(t *testing.T) {
	_, err := plain.NewParser().Parse(strings.NewReader("date,amount\n2024-05-01,10.00\n"))
	assert.ErrorContains(t, err, `missing column "memo"`)
}

func TestParser_InvalidAmount(t *testing.T) {
	_, err := plain.NewParser().Parse(strings.NewReader("date,memo,amount\n2024-05-01,Coffee,abc\n"))
	assert.ErrorContains(t, err, "row 2")
}

func TestParser_Empty(t *testing.T) {
	lines, err := plain.NewParser().Parse(strings.NewReader(""))
	require.NoError(t, err)
	assert.Empty(t, lines)
}
