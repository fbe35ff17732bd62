package record

import (
	"strings"
	"unicode"

	"github.com/agext/levenshtein"
	"github.com/schollz/closestmatch"
)

// Nomes canônicos dos campos de entrada.
const (
	FieldCategoria   = "categoria"
	FieldCodigoItem  = "codigo_item"
	FieldParteCodigo = "parte_codigo"
	FieldData        = "data"
	FieldPeriodo     = "periodo"
	FieldValor1      = "valor1"
	FieldValor2      = "valor2"
	FieldValor3      = "valor3"
	FieldValor4      = "valor4"
)

// DefaultCategoria é usada quando a linha não traz categoria.
const DefaultCategoria = "AGUA"

// Aliases lista, em ordem de prioridade, as chaves aceitas para cada campo canônico.
// A primeira posição é sempre o próprio nome canônico.
var Aliases = map[string][]string{
	FieldCategoria:   {"categoria", "CATEGORIA", "Categoria"},
	FieldCodigoItem:  {"codigo_item", "codigo item", "CODIGO_ITEM", "CODIGO ITEM", "codigoItem", "Codigo Item"},
	FieldParteCodigo: {"parte_codigo", "parteCodigo", "PARTE_CODIGO", "parte codigo", "PARTE CODIGO"},
	FieldData:        {"data", "date", "DATA", "DATE", "Data"},
	FieldPeriodo:     {"periodo", "PERIODO", "Periodo"},
	FieldValor1:      {"valor1", "valor_1", "VALOR1", "VALOR_1", "valor 1"},
	FieldValor2:      {"valor2", "valor_2", "VALOR2", "VALOR_2", "valor 2"},
	FieldValor3:      {"valor3", "valor_3", "VALOR3", "VALOR_3", "valor 3"},
	FieldValor4:      {"valor4", "valor_4", "VALOR4", "VALOR_4", "valor 4"},
}

var defaults = map[string]any{
	FieldCategoria: DefaultCategoria,
	FieldValor1:    0,
	FieldValor2:    0,
	FieldValor3:    0,
	FieldValor4:    0,
}

func isEmpty(v any) bool {
	switch val := v.(type) {
	case nil:
		return true
	case string:
		return strings.TrimSpace(val) == ""
	}
	return false
}

// Resolve devolve o primeiro valor não vazio do campo, tentando os aliases em ordem,
// ou o valor padrão do campo.
func Resolve(row map[string]any, field string) any {
	for _, key := range Aliases[field] {
		if v, ok := row[key]; ok && !isEmpty(v) {
			return v
		}
	}
	return defaults[field]
}

// normalizeHeader reduz um cabeçalho a snake_case minúsculo sem acentos:
// "Código Item" -> "codigo_item", "parteCodigo" -> "parte_codigo".
func normalizeHeader(h string) string {
	h = strings.TrimSpace(StripDiacritics(h))

	var b strings.Builder
	prevLower := false
	pendingSep := false
	for _, r := range h {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			if unicode.IsUpper(r) && prevLower {
				pendingSep = true
			}
			if pendingSep && b.Len() > 0 {
				b.WriteByte('_')
			}
			pendingSep = false
			b.WriteRune(unicode.ToLower(r))
			prevLower = unicode.IsLower(r) || unicode.IsDigit(r)
		default:
			pendingSep = true
			prevLower = false
		}
	}
	return b.String()
}

var headerIndex = buildHeaderIndex()

func buildHeaderIndex() map[string]string {
	idx := make(map[string]string)
	for field, aliases := range Aliases {
		for _, a := range aliases {
			idx[normalizeHeader(a)] = field
		}
	}
	return idx
}

// fuzzyPrefix é o prefixo mínimo em comum para aceitar uma sugestão do closestmatch.
const fuzzyPrefix = 4

// fuzzyMaxEdits limita a distância de edição aceita: 1 para nomes curtos, 2 a partir de 8 letras.
func fuzzyMaxEdits(key string) int {
	if len(key) >= 8 {
		return 2
	}
	return 1
}

func digitsOf(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// HeaderMatcher associa cabeçalhos de planilha aos campos canônicos.
type HeaderMatcher struct {
	fuzzy *closestmatch.ClosestMatch
	keys  []string
}

// NewHeaderMatcher cria o associador; com fuzzy, cabeçalhos parecidos também são aceitos.
func NewHeaderMatcher(fuzzy bool) *HeaderMatcher {
	m := &HeaderMatcher{}
	if fuzzy {
		for k := range headerIndex {
			m.keys = append(m.keys, k)
		}
		m.fuzzy = closestmatch.New(m.keys, []int{2, 3, 4})
	}
	return m
}

// Canonical devolve o campo canônico do cabeçalho, se houver.
func (m *HeaderMatcher) Canonical(header string) (string, bool) {
	key := normalizeHeader(header)
	if key == "" {
		return "", false
	}
	if field, ok := headerIndex[key]; ok {
		return field, true
	}
	if m.fuzzy == nil || len(key) < fuzzyPrefix {
		return "", false
	}
	match := m.fuzzy.Closest(key)
	if len(match) < fuzzyPrefix || match[:fuzzyPrefix] != key[:fuzzyPrefix] {
		return "", false
	}
	// "valor_5" não é "valor_2"
	if digitsOf(match) != digitsOf(key) {
		return "", false
	}
	if levenshtein.Distance(key, match, nil) > fuzzyMaxEdits(key) {
		return "", false
	}
	return headerIndex[match], true
}
