package record

import (
	"errors"
	"fmt"
)

var (
	// ErrAmountOverflow indica valor monetário que não cabe na largura do campo.
	ErrAmountOverflow = errors.New("valor excede a largura do campo")
	// ErrCodeOverflow indica código numérico maior que o espaço reservado.
	ErrCodeOverflow = errors.New("código excede a largura do campo")
	// ErrTextOverflow indica texto maior que a largura do campo sob a política reject.
	ErrTextOverflow = errors.New("texto excede a largura do campo")
)

// FieldEncodingError descreve um campo cujo valor não pôde ser codificado na largura fixa.
type FieldEncodingError struct {
	Field string
	Value string
	Err   error
}

func (e *FieldEncodingError) Error() string {
	return fmt.Sprintf("campo %s (%q): %v", e.Field, e.Value, e.Err)
}

func (e *FieldEncodingError) Unwrap() error { return e.Err }

// FormatInvariantViolation é um defeito de layout: a linha montada não tem LineWidth caracteres.
type FormatInvariantViolation struct {
	Length int
	Line   string
}

func (e *FormatInvariantViolation) Error() string {
	return fmt.Sprintf("linha com %d caracteres, esperado %d", e.Length, LineWidth)
}
