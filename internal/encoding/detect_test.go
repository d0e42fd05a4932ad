package encoding_test

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/budgetapp/internal/encoding"
)

const header = "Data mov.;Descrição;Montante\n"

func TestNewUTF8Reader(t *testing.T) {
	type testCase struct {
		name        string
		input       []byte
		wantCharset encoding.Charset
		want        string
	}

	tests := []testCase{
		{
			name:        "UTF8Passthrough",
			input:       []byte("Descrição;Montante\nCafé;12,50\nOperação;-3,00\n"),
			wantCharset: encoding.UTF8,
			want:        "Descrição;Montante\nCafé;12,50\nOperação;-3,00\n",
		},
		{
			name:        "UTF8BOMStripped",
			input:       append([]byte{0xEF, 0xBB, 0xBF}, header...),
			wantCharset: encoding.UTF8BOM,
			want:        header,
		},
		{
			// ç = 0xE7, ã = 0xE3
			name: "Latin1",
			input: []byte{
				'D', 'e', 's', 'c', 'r', 'i', 0xE7, 0xE3, 'o', ';',
				'M', 'o', 'n', 't', 'a', 'n', 't', 'e', '\n',
			},
			wantCharset: encoding.Windows1252,
			want:        "Descrição;Montante\n",
		},
		{
			name:        "UTF16LE",
			input:       []byte{0xFF, 0xFE, 'A', 0, ';', 0, '1', 0, '\n', 0},
			wantCharset: encoding.UTF16LE,
			want:        "A;1\n",
		},
		{
			name:        "Empty",
			input:       nil,
			wantCharset: encoding.UTF8,
			want:        "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, cs, err := encoding.NewUTF8Reader(bytes.NewReader(tt.input))
			require.NoError(t, err)
			assert.Equal(t, tt.wantCharset, cs)

			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, tt.want, string(got))
		})
	}
}

func TestNewUTF8Reader_LongInput(t *testing.T) {
	row := "2024-05-14;COMPRA CONTINENTE;-12,50\n"
	input := bytes.Repeat([]byte(row), 500)

	r, cs, err := encoding.NewUTF8Reader(bytes.NewReader(input))
	require.NoError(t, err)
	assert.Equal(t, encoding.UTF8, cs)

	got, err := io.ReadAll(r)
	require.NoError(t, err)
	assert.Len(t, got, len(input))
}
