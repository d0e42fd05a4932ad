package cgd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budgetapp/internal/money"
)

func TestParseEuropeanAmount(t *testing.T) {
	tests := []struct {
		in   string
		want int64
	}{
		{"10,00", 1000},
		{"-588,74", -58874},
		{"1.234,56", 123456},
		{"1 234,56 €", 123456},
		{"1\u00a0234,56", 123456},
		{"0,005", 1},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseEuropeanAmount(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	_, err := parseEuropeanAmount("abc")
	assert.Error(t, err)

	_, err = parseEuropeanAmount("184.467.440.737.095.516,17")
	assert.ErrorIs(t, err, money.ErrOutOfRange)
}

func TestLayout_Amount(t *testing.T) {
	card := layouts[0]
	cols := colIndex{"Data": 0, "Descrição": 1, "Débito": 2, "Crédito": 3}

	got, ok := card.amount(cols, []string{"30-01-2026", "SHOP", "12,50", ""})
	require.True(t, ok)
	assert.Equal(t, int64(-1250), got)

	got, ok = card.amount(cols, []string{"30-01-2026", "REFUND", "", "3,00"})
	require.True(t, ok)
	assert.Equal(t, int64(300), got)

	_, ok = card.amount(cols, []string{"30-01-2026", "NOTHING", "", ""})
	assert.False(t, ok)
}
