package record

import (
	"strconv"
	"strings"
)

const (
	ParteCodigoWidth = 7
	PeriodoWidth     = 6
)

func isASCIILetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}

// leadingInt lê a sequência inicial de dígitos; sem dígitos devolve 0.
func leadingInt(s string) (uint64, bool) {
	end := 0
	for end < len(s) && s[end] >= '0' && s[end] <= '9' {
		end++
	}
	if end == 0 {
		return 0, true
	}
	n, err := strconv.ParseUint(s[:end], 10, 64)
	if err != nil {
		return 0, false
	}
	return n, true
}

func zeroPad(n uint64, width int) (string, bool) {
	digits := strconv.FormatUint(n, 10)
	if len(digits) > width {
		return "", false
	}
	return strings.Repeat("0", width-len(digits)) + digits, true
}

// FormatParteCodigo formata o código da parte em 7 posições.
//
// Iniciado por letra: a letra é mantida e o restante vira número com 6 dígitos ("A42" -> "A000042").
// Caso contrário o número inicial ocupa 7 dígitos ("42" -> "0000042"). Não numérico vale 0.
func FormatParteCodigo(value any) (string, error) {
	str := strings.TrimSpace(ToText(value))

	if str != "" && isASCIILetter(str[0]) {
		n, ok := leadingInt(strings.TrimSpace(str[1:]))
		if !ok {
			return "", ErrCodeOverflow
		}
		digits, ok := zeroPad(n, ParteCodigoWidth-1)
		if !ok {
			return "", ErrCodeOverflow
		}
		return str[:1] + digits, nil
	}

	n, ok := leadingInt(str)
	if !ok {
		return "", ErrCodeOverflow
	}
	digits, ok := zeroPad(n, ParteCodigoWidth)
	if !ok {
		return "", ErrCodeOverflow
	}
	return digits, nil
}

// FormatPeriodo completa o período com zeros à esquerda até 6 posições, sem validar o calendário.
func FormatPeriodo(value any) (string, error) {
	str := StripDiacritics(strings.TrimSpace(ToText(value)))
	if len(str) > PeriodoWidth {
		return "", ErrCodeOverflow
	}
	return strings.Repeat("0", PeriodoWidth-len(str)) + str, nil
}
