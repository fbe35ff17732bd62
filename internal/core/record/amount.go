package record

import (
	"encoding/json"
	"math"
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// plainNumber é o que sobra de um valor válido depois de normalizar os separadores.
var plainNumber = regexp.MustCompile(`^(\d+\.?\d*|\.\d+)([eE][+-]?\d{1,3})?$`)

// parseAmount interpreta valores monetários brasileiros ou anglo-saxões.
// Qualquer entrada que não seja número vira zero.
func parseAmount(v any) decimal.Decimal {
	switch val := v.(type) {
	case nil:
		return decimal.Zero
	case float64:
		if math.IsNaN(val) || math.IsInf(val, 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat(val)
	case float32:
		if math.IsNaN(float64(val)) || math.IsInf(float64(val), 0) {
			return decimal.Zero
		}
		return decimal.NewFromFloat32(val)
	case int:
		return decimal.NewFromInt(int64(val))
	case int64:
		return decimal.NewFromInt(val)
	case int32:
		return decimal.NewFromInt(int64(val))
	case json.Number:
		if d, err := decimal.NewFromString(val.String()); err == nil {
			return d
		}
		return decimal.Zero
	case decimal.Decimal:
		return val
	}
	return parseBRLNumber(ToText(v))
}

// parseBRLNumber: heurística para "R$ 1.234,56", "1,234.56", "(10,00)" e "1,5E+3".
func parseBRLNumber(val string) decimal.Decimal {
	s := strings.TrimSpace(val)
	s = strings.ReplaceAll(s, "R$", "")
	s = strings.ReplaceAll(s, " ", "")
	s = strings.ReplaceAll(s, "\u00a0", "")
	if s == "" {
		return decimal.Zero
	}

	neg := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		neg = true
		s = strings.TrimPrefix(strings.TrimSuffix(s, ")"), "(")
	}
	if strings.HasPrefix(s, "-") {
		neg = true
		s = strings.TrimPrefix(s, "-")
	} else {
		s = strings.TrimPrefix(s, "+")
	}

	// a última ocorrência de . ou , decide qual é o separador decimal
	lastDot := strings.LastIndex(s, ".")
	lastComma := strings.LastIndex(s, ",")

	switch {
	case lastComma > lastDot:
		s = strings.ReplaceAll(s, ".", "")
		s = strings.ReplaceAll(s, ",", ".")
	case lastDot > lastComma:
		s = strings.ReplaceAll(s, ",", "")
		if strings.Count(s, ".") > 1 {
			parts := strings.Split(s, ".")
			s = strings.Join(parts[:len(parts)-1], "") + "." + parts[len(parts)-1]
		}
	}

	// "1.5E+3" é aceito; "12-34", "N/A 3" e afins viram zero
	if !plainNumber.MatchString(s) {
		return decimal.Zero
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	if neg {
		d = d.Neg()
	}
	return d
}

// EncodeAmount escala o valor por 100 (centavos), arredonda (meio para longe do zero),
// descarta o sinal e completa com zeros à esquerda até width dígitos.
func EncodeAmount(value any, width int) (string, error) {
	cents := parseAmount(value).Mul(hundred).Round(0).Abs()
	digits := cents.StringFixed(0)
	if len(digits) > width {
		return "", ErrAmountOverflow
	}
	return strings.Repeat("0", width-len(digits)) + digits, nil
}
