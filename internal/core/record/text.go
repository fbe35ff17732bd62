package record

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Align define o lado do preenchimento de um campo.
type Align int

const (
	AlignLeft Align = iota
	AlignRight
)

// Overflow define o que acontece com texto maior que a largura do campo.
type Overflow string

const (
	OverflowReject   Overflow = "reject"
	OverflowTruncate Overflow = "truncate"
)

// ParseOverflow aceita "reject" e "truncate" (vazio = reject).
func ParseOverflow(s string) (Overflow, error) {
	switch Overflow(strings.ToLower(strings.TrimSpace(s))) {
	case "", OverflowReject:
		return OverflowReject, nil
	case OverflowTruncate:
		return OverflowTruncate, nil
	}
	return "", fmt.Errorf("política de excesso de texto inválida: %q", s)
}

func isCombiningMark(r rune) bool {
	return r >= 0x0300 && r <= 0x036F
}

// StripDiacritics decompõe (NFD) e remove as marcas combinantes U+0300–U+036F,
// preservando a letra base. Controles e runas fora do ASCII viram espaço.
func StripDiacritics(s string) string {
	t := transform.Chain(norm.NFD, transform.RemoveFunc(isCombiningMark))
	result, _, err := transform.String(t, s)
	if err != nil {
		result = s
	}

	var b strings.Builder
	b.Grow(len(result))
	for _, r := range result {
		if r > unicode.MaxASCII || r < 32 || r == 127 {
			b.WriteByte(' ')
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// ToText converte um valor de linha em texto. nil vira string vazia.
func ToText(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case json.Number:
		return val.String()
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case int:
		return strconv.Itoa(val)
	case int64:
		return strconv.FormatInt(val, 10)
	case int32:
		return strconv.FormatInt(int64(val), 10)
	case uint:
		return strconv.FormatUint(uint64(val), 10)
	case uint64:
		return strconv.FormatUint(val, 10)
	case bool:
		return strconv.FormatBool(val)
	case time.Time:
		return val.Format("02/01/2006")
	case fmt.Stringer:
		return val.String()
	}
	return fmt.Sprint(v)
}

// FormatField converte o valor para texto ASCII e completa até width com pad.
// Texto maior que width é rejeitado com ErrTextOverflow.
func FormatField(value any, width int, align Align, pad byte) (string, error) {
	return formatField(value, width, align, pad, OverflowReject)
}

func formatField(value any, width int, align Align, pad byte, overflow Overflow) (string, error) {
	str := StripDiacritics(ToText(value))

	if len(str) > width {
		if overflow != OverflowTruncate {
			return "", ErrTextOverflow
		}
		str = str[:width]
	}

	fill := strings.Repeat(string(pad), width-len(str))
	if align == AlignRight {
		return fill + str, nil
	}
	return str + fill, nil
}
