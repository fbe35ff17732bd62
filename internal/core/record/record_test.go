package record

import (
	"encoding/json"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatField(t *testing.T) {
	cases := []struct {
		name  string
		value any
		width int
		align Align
		pad   byte
		want  string
	}{
		{"left pads right", "AGUA", 10, AlignLeft, ' ', "AGUA      "},
		{"right pads left", "42", 5, AlignRight, '0', "00042"},
		{"nil is empty", nil, 3, AlignLeft, ' ', "   "},
		{"strips accents", "Pêssego Ção", 12, AlignLeft, ' ', "Pessego Cao "},
		{"float without trailing zeros", 20.5, 6, AlignRight, ' ', "  20.5"},
		{"exact width", "ABCDE", 5, AlignLeft, ' ', "ABCDE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := FormatField(tc.value, tc.width, tc.align, tc.pad)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestFormatFieldOverflow(t *testing.T) {
	_, err := FormatField("ABCDEFGHIJK", 10, AlignLeft, ' ')
	assert.ErrorIs(t, err, ErrTextOverflow)

	got, err := formatField("ABCDEFGHIJK", 10, AlignLeft, ' ', OverflowTruncate)
	require.NoError(t, err)
	assert.Equal(t, "ABCDEFGHIJ", got)
}

func TestStripDiacritics(t *testing.T) {
	assert.Equal(t, "Agua Eletrica", StripDiacritics("Água Elétrica"))
	assert.Equal(t, "a b", StripDiacritics("a\tb"))
	assert.Equal(t, "Stra e", StripDiacritics("Straße"))
}

func TestParseOverflow(t *testing.T) {
	o, err := ParseOverflow("")
	require.NoError(t, err)
	assert.Equal(t, OverflowReject, o)

	o, err = ParseOverflow(" Truncate ")
	require.NoError(t, err)
	assert.Equal(t, OverflowTruncate, o)

	_, err = ParseOverflow("wrap")
	assert.Error(t, err)
}

func TestEncodeAmount(t *testing.T) {
	cases := []struct {
		value any
		width int
		want  string
	}{
		{"12.34", 14, "00000000001234"},
		{"5", 14, "00000000000500"},
		{"-5", 14, "00000000000500"},
		{10, 14, "00000000001000"},
		{20.5, 15, "000000000002050"},
		{0, 14, "00000000000000"},
		{nil, 14, "00000000000000"},
		{"", 14, "00000000000000"},
		{"abc", 14, "00000000000000"},
		{"1.005", 6, "000101"},
		{"0.004", 6, "000000"},
		{"R$ 1.234,56", 10, "0000123456"},
		{"1,234.56", 10, "0000123456"},
		{"(10,00)", 6, "001000"},
		{json.Number("7.5"), 4, "0750"},
		{"1e5", 14, "00000010000000"},
		{"1.5E+3", 8, "00150000"},
		{"1,5E+3", 8, "00150000"},
		{"1.23457E+11", 14, "12345700000000"},
		{"abc12", 14, "00000000000000"},
		{"12-34", 14, "00000000000000"},
		{"N/A 3", 14, "00000000000000"},
		{"(11) 9999-8888", 14, "00000000000000"},
		{"1e", 14, "00000000000000"},
		{math.NaN(), 14, "00000000000000"},
		{math.Inf(1), 14, "00000000000000"},
		{float32(math.Inf(-1)), 14, "00000000000000"},
	}
	for _, tc := range cases {
		got, err := EncodeAmount(tc.value, tc.width)
		require.NoError(t, err, "value %v", tc.value)
		assert.Equal(t, tc.want, got, "value %v", tc.value)
		assert.Len(t, got, tc.width)
	}
}

func TestEncodeAmountSignDropped(t *testing.T) {
	neg, err := EncodeAmount("-5", 14)
	require.NoError(t, err)
	pos, err := EncodeAmount("5", 14)
	require.NoError(t, err)
	assert.Equal(t, pos, neg)
}

func TestEncodeAmountOverflow(t *testing.T) {
	_, err := EncodeAmount("1000000", 8)
	assert.ErrorIs(t, err, ErrAmountOverflow)

	got, err := EncodeAmount("999999.99", 8)
	require.NoError(t, err)
	assert.Equal(t, "99999999", got)
}

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"2025-01-31", "31/01/2025"},
		{"31/01/2025", "31/01/2025"},
		{"1/2/2025", "01/02/2025"},
		{"01/02/2025 13:45:00", "01/02/2025"},
		{"2025-01-31T10:00:00Z", "31/01/2025"},
		{"2025-1-5", "05/01/2025"},
		{"not-a-date", DateSentinel},
		{"", DateSentinel},
		{nil, DateSentinel},
		{"30/02/2025", DateSentinel},
		{"01/13/2025", DateSentinel},
		{"29/02/2024", "29/02/2024"},
		{"29/02/2025", DateSentinel},
		{"2025/01/31", DateSentinel},
		{"31/01/25", DateSentinel},
		{"31/01", DateSentinel},
		{time.Date(2024, time.March, 5, 15, 0, 0, 0, time.UTC), "05/03/2024"},
		{time.Time{}, DateSentinel},
		{45688.0, "31/01/2025"},
		{45688, "31/01/2025"},
		{-3.0, DateSentinel},
		{math.NaN(), DateSentinel},
		{math.Inf(1), DateSentinel},
		{json.Number("NaN"), DateSentinel},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeDate(tc.in), "input %#v", tc.in)
	}
}

func TestFormatParteCodigo(t *testing.T) {
	cases := []struct {
		in   any
		want string
	}{
		{"A42", "A000042"},
		{"42", "0000042"},
		{"a7", "a000007"},
		{"B", "B000000"},
		{"AB12", "A000000"},
		{"", "0000000"},
		{nil, "0000000"},
		{"xyz", "x000000"},
		{"-5", "0000000"},
		{"12abc", "0000012"},
		{42.0, "0000042"},
		{" C123 ", "C000123"},
	}
	for _, tc := range cases {
		got, err := FormatParteCodigo(tc.in)
		require.NoError(t, err, "input %#v", tc.in)
		assert.Equal(t, tc.want, got, "input %#v", tc.in)
		assert.Len(t, got, ParteCodigoWidth)
	}
}

func TestFormatParteCodigoOverflow(t *testing.T) {
	_, err := FormatParteCodigo("A1234567")
	assert.ErrorIs(t, err, ErrCodeOverflow)

	_, err = FormatParteCodigo("12345678")
	assert.ErrorIs(t, err, ErrCodeOverflow)
}

func TestFormatPeriodo(t *testing.T) {
	got, err := FormatPeriodo("12025")
	require.NoError(t, err)
	assert.Equal(t, "012025", got)

	got, err = FormatPeriodo(22025.0)
	require.NoError(t, err)
	assert.Equal(t, "022025", got)

	got, err = FormatPeriodo(nil)
	require.NoError(t, err)
	assert.Equal(t, "000000", got)

	_, err = FormatPeriodo("2025012")
	assert.ErrorIs(t, err, ErrCodeOverflow)
}

func TestResolve(t *testing.T) {
	row := map[string]any{
		"PARTE_CODIGO": "A1",
		"parteCodigo":  "B2",
		"valor_1":      "",
		"VALOR1":       3,
		"codigo item":  "77",
	}
	assert.Equal(t, "B2", Resolve(row, FieldParteCodigo))
	assert.Equal(t, 3, Resolve(row, FieldValor1))
	assert.Equal(t, "77", Resolve(row, FieldCodigoItem))
	assert.Equal(t, DefaultCategoria, Resolve(row, FieldCategoria))
	assert.Equal(t, 0, Resolve(row, FieldValor2))
	assert.Nil(t, Resolve(row, FieldData))
}

func TestResolveCanonicalFirst(t *testing.T) {
	row := map[string]any{"data": "01/01/2025", "DATA": "02/02/2025", "date": "03/03/2025"}
	assert.Equal(t, "01/01/2025", Resolve(row, FieldData))

	row = map[string]any{"data": "  ", "date": "03/03/2025"}
	assert.Equal(t, "03/03/2025", Resolve(row, FieldData))
}

func TestAliasesStartWithCanonical(t *testing.T) {
	for field, aliases := range Aliases {
		require.NotEmpty(t, aliases, field)
		assert.Equal(t, field, aliases[0])
	}
}

func TestHeaderMatcher(t *testing.T) {
	m := NewHeaderMatcher(false)
	cases := map[string]string{
		"Código Item":  FieldCodigoItem,
		"CODIGO_ITEM":  FieldCodigoItem,
		"parteCodigo":  FieldParteCodigo,
		"Parte Código": FieldParteCodigo,
		"Período":      FieldPeriodo,
		"VALOR 3":      FieldValor3,
		"Date":         FieldData,
	}
	for header, want := range cases {
		got, ok := m.Canonical(header)
		assert.True(t, ok, header)
		assert.Equal(t, want, got, header)
	}

	_, ok := m.Canonical("Observação")
	assert.False(t, ok)
	_, ok = m.Canonical("")
	assert.False(t, ok)
}

func TestHeaderMatcherFuzzy(t *testing.T) {
	_, ok := NewHeaderMatcher(false).Canonical("Categorias")
	assert.False(t, ok)

	got, ok := NewHeaderMatcher(true).Canonical("Categorias")
	assert.True(t, ok)
	assert.Equal(t, FieldCategoria, got)

	_, ok = NewHeaderMatcher(true).Canonical("Observação")
	assert.False(t, ok)

	for _, header := range []string{"Valor 5", "Valor Total", "Valor Liquido", "Parte Contraria", "Datas Vencimento"} {
		got, ok := NewHeaderMatcher(true).Canonical(header)
		assert.False(t, ok, "%s -> %s", header, got)
	}

	got, ok = NewHeaderMatcher(true).Canonical("Periodos")
	assert.True(t, ok)
	assert.Equal(t, FieldPeriodo, got)
}

func TestLayoutWidth(t *testing.T) {
	total := 0
	for _, f := range Layout() {
		total += f.Width
	}
	assert.Equal(t, LineWidth, total)
}

func TestLayoutIsCopy(t *testing.T) {
	fields := Layout()
	fields[0].Width = 99
	fields[0].Encode = nil

	assert.Equal(t, 10, Layout()[0].Width)
	got, err := Assemble(map[string]any{}, Options{})
	require.NoError(t, err)
	assert.Len(t, got.Line, LineWidth)
}

func TestAssembleNonFiniteNumbers(t *testing.T) {
	row := map[string]any{"data": math.NaN(), "valor1": math.NaN(), "valor2": math.Inf(1)}
	got, err := Assemble(row, Options{})
	require.NoError(t, err)
	assert.Contains(t, got.Line, DateSentinel)
	assert.True(t, strings.HasSuffix(got.Line, strings.Repeat("0", 58)))
}

func TestAssembleExample(t *testing.T) {
	row := map[string]any{
		"categoria":    "AGUA",
		"codigo_item":  "1",
		"parte_codigo": "A1",
		"data":         "01/02/2025",
		"periodo":      "022025",
		"valor1":       10,
		"valor2":       20.5,
		"valor3":       0,
		"valor4":       1,
	}
	got, err := Assemble(row, Options{})
	require.NoError(t, err)
	assert.Len(t, got.Line, LineWidth)
	assert.True(t, strings.HasPrefix(got.Line, "AGUA      "))
	assert.Contains(t, got.Line, "01/02/2025022025")
	assert.Equal(t,
		"AGUA      "+"1         "+"A000001"+"01/02/2025"+"022025"+
			"00000000001000"+"000000000002050"+"00000000000000"+"000000000000100",
		got.Line)
	assert.Empty(t, got.Truncated)
}

func TestAssembleDefaults(t *testing.T) {
	got, err := Assemble(map[string]any{}, Options{})
	require.NoError(t, err)
	assert.Len(t, got.Line, LineWidth)
	assert.True(t, strings.HasPrefix(got.Line, "AGUA      "))
	assert.Contains(t, got.Line, DateSentinel)
}

func TestAssembleFieldError(t *testing.T) {
	row := map[string]any{"valor1": "99999999999999"}
	_, err := Assemble(row, Options{})
	var fe *FieldEncodingError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, FieldValor1, fe.Field)
	assert.ErrorIs(t, err, ErrAmountOverflow)
}

func TestAssembleTextOverflow(t *testing.T) {
	row := map[string]any{"categoria": "ENERGIA ELETRICA"}

	_, err := Assemble(row, Options{TextOverflow: OverflowReject})
	var fe *FieldEncodingError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, FieldCategoria, fe.Field)

	got, err := Assemble(row, Options{TextOverflow: OverflowTruncate})
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(got.Line, "ENERGIA EL"))
	assert.Equal(t, []string{FieldCategoria}, got.Truncated)
}

func TestAssembleInvariantViolation(t *testing.T) {
	saved := layout
	defer func() { layout = saved }()

	layout = Layout()
	layout[0].Encode = func(value any, f Field, opts Options) (string, error) {
		return "SHORT", nil
	}
	_, err := Assemble(map[string]any{}, Options{})
	var iv *FormatInvariantViolation
	require.True(t, errors.As(err, &iv))
	assert.NotEqual(t, LineWidth, iv.Length)
}
