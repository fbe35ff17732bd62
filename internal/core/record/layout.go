package record

import "slices"

// LineWidth é o tamanho fixo de toda linha do arquivo TXT.
const LineWidth = 101

// Options ajusta a codificação de uma linha.
type Options struct {
	TextOverflow Overflow
}

// Kind classifica o tipo de conteúdo de uma coluna.
type Kind int

const (
	KindText Kind = iota
	KindCode
	KindDate
	KindAmount
)

// Field descreve uma coluna do layout: largura fixa, alinhamento, preenchimento e codificador.
type Field struct {
	Name   string
	Kind   Kind
	Width  int
	Align  Align
	Pad    byte
	Encode func(value any, f Field, opts Options) (string, error)
}

func encodeText(value any, f Field, opts Options) (string, error) {
	return formatField(value, f.Width, f.Align, f.Pad, opts.TextOverflow)
}

func encodeParteCodigo(value any, _ Field, _ Options) (string, error) {
	return FormatParteCodigo(value)
}

func encodeDate(value any, _ Field, _ Options) (string, error) {
	return NormalizeDate(value), nil
}

func encodePeriodo(value any, _ Field, _ Options) (string, error) {
	return FormatPeriodo(value)
}

func encodeAmount(value any, f Field, _ Options) (string, error) {
	return EncodeAmount(value, f.Width)
}

// layout é a ordem e a largura das colunas da linha de 101 posições.
var layout = []Field{
	{Name: FieldCategoria, Kind: KindText, Width: 10, Align: AlignLeft, Pad: ' ', Encode: encodeText},
	{Name: FieldCodigoItem, Kind: KindText, Width: 10, Align: AlignLeft, Pad: ' ', Encode: encodeText},
	{Name: FieldParteCodigo, Kind: KindCode, Width: ParteCodigoWidth, Align: AlignRight, Pad: '0', Encode: encodeParteCodigo},
	{Name: FieldData, Kind: KindDate, Width: len(DateSentinel), Align: AlignLeft, Pad: ' ', Encode: encodeDate},
	{Name: FieldPeriodo, Kind: KindCode, Width: PeriodoWidth, Align: AlignRight, Pad: '0', Encode: encodePeriodo},
	{Name: FieldValor1, Kind: KindAmount, Width: 14, Align: AlignRight, Pad: '0', Encode: encodeAmount},
	{Name: FieldValor2, Kind: KindAmount, Width: 15, Align: AlignRight, Pad: '0', Encode: encodeAmount},
	{Name: FieldValor3, Kind: KindAmount, Width: 14, Align: AlignRight, Pad: '0', Encode: encodeAmount},
	{Name: FieldValor4, Kind: KindAmount, Width: 15, Align: AlignRight, Pad: '0', Encode: encodeAmount},
}

// Layout devolve uma cópia das colunas, na ordem da linha.
func Layout() []Field {
	return slices.Clone(layout)
}

// Assembled é a linha montada, com os avisos de campos truncados.
type Assembled struct {
	Line      string
	Truncated []string
}

// Assemble monta a linha de uma planilha. Erros de campo voltam como *FieldEncodingError;
// uma linha fora de LineWidth volta como *FormatInvariantViolation.
func Assemble(row map[string]any, opts Options) (Assembled, error) {
	buf := make([]byte, 0, LineWidth)
	var truncated []string

	for _, f := range layout {
		value := Resolve(row, f.Name)
		encoded, err := f.Encode(value, f, opts)
		if err != nil {
			return Assembled{}, &FieldEncodingError{Field: f.Name, Value: ToText(value), Err: err}
		}
		if len(encoded) != f.Width {
			return Assembled{}, &FormatInvariantViolation{Length: len(buf) + len(encoded), Line: string(buf) + encoded}
		}
		if f.Kind == KindText && opts.TextOverflow == OverflowTruncate && len(StripDiacritics(ToText(value))) > f.Width {
			truncated = append(truncated, f.Name)
		}
		buf = append(buf, encoded...)
	}

	if len(buf) != LineWidth {
		return Assembled{}, &FormatInvariantViolation{Length: len(buf), Line: string(buf)}
	}
	return Assembled{Line: string(buf), Truncated: truncated}, nil
}
