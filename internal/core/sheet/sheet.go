// Package sheet lê planilhas (.xlsx, .xls, .csv) e devolve as linhas como domain.Row,
// com a primeira linha preenchida como cabeçalho.
package sheet

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"txt-converter-service/internal/core/record"
	"txt-converter-service/internal/domain"

	"github.com/shakinm/xlsReader/xls"
	"github.com/xuri/excelize/v2"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

var (
	ErrUnsupportedFormat = errors.New("formato de arquivo não suportado")
	ErrNoSheets          = errors.New("a planilha não contém abas")
	ErrNoHeader          = errors.New("cabeçalho não encontrado")
)

// Format é o tipo de arquivo reconhecido.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatXLS  Format = "xls"
	FormatCSV  Format = "csv"
)

// Options ajusta a leitura.
type Options struct {
	// FuzzyHeaders aceita cabeçalhos parecidos com os nomes conhecidos (ex.: "Categorias").
	FuzzyHeaders bool
}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Detect identifica o formato pelos bytes iniciais e, na falta deles, pela extensão.
func Detect(data []byte, filename string) (Format, error) {
	switch {
	case bytes.HasPrefix(data, []byte{0x50, 0x4B, 0x03, 0x04}):
		return FormatXLSX, nil
	case bytes.HasPrefix(data, []byte{0xD0, 0xCF, 0x11, 0xE0}):
		return FormatXLS, nil
	}

	switch ext := strings.ToLower(filepath.Ext(filename)); ext {
	case ".csv", ".txt":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %s", ErrUnsupportedFormat, ext)
	}
}

// Load lê todo o arquivo e devolve as linhas de dados da primeira aba.
func Load(file io.Reader, filename string, opts Options) ([]domain.Row, error) {
	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("erro ao ler arquivo: %w", err)
	}

	format, err := Detect(data, filename)
	if err != nil {
		return nil, err
	}

	var records [][]string
	switch format {
	case FormatXLSX:
		records, err = readXLSX(data)
	case FormatXLS:
		records, err = readXLS(data)
	case FormatCSV:
		records, err = readCSV(data)
	}
	if err != nil {
		return nil, fmt.Errorf("erro ao ler arquivo %s: %w", format, err)
	}

	return toRows(records, record.NewHeaderMatcher(opts.FuzzyHeaders))
}

func readXLSX(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, ErrNoSheets
	}
	return f.GetRows(sheets[0])
}

func readXLS(data []byte) ([][]string, error) {
	workbook, err := xls.OpenReader(bytes.NewReader(data))
	if err != nil {
		// talvez seja xlsx com cabeçalho estranho; tentar excelize
		if rows, errX := readXLSX(data); errX == nil {
			return rows, nil
		}
		return nil, err
	}
	if len(workbook.GetSheets()) == 0 {
		return nil, ErrNoSheets
	}

	sheet, err := workbook.GetSheet(0)
	if err != nil {
		return nil, fmt.Errorf("erro ao obter planilha do arquivo .xls: %w", err)
	}

	var allRows [][]string
	for _, row := range sheet.GetRows() {
		var cells []string
		for _, cell := range row.GetCols() {
			cells = append(cells, cell.GetString())
		}
		allRows = append(allRows, cells)
	}
	return allRows, nil
}

func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		decoded, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), data)
		if err != nil {
			return nil, err
		}
		data = decoded
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1
	return reader.ReadAll()
}

// sniffDelimiter escolhe entre ';', ',' e tab pela primeira linha. Empate fica com ';'.
func sniffDelimiter(data []byte) rune {
	line := data
	if i := bytes.IndexByte(data, '\n'); i >= 0 {
		line = data[:i]
	}
	best, bestCount := ';', bytes.Count(line, []byte{';'})
	for _, c := range []rune{',', '\t'} {
		if n := bytes.Count(line, []byte(string(c))); n > bestCount {
			best, bestCount = c, n
		}
	}
	return best
}

func isBlank(cells []string) bool {
	for _, c := range cells {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}

// headerKeys troca cada cabeçalho conhecido pelo nome canônico do campo. Cabeçalhos
// desconhecidos ficam como vieram; vazios viram "coluna_N"; repetidos ganham sufixo.
func headerKeys(header []string, matcher *record.HeaderMatcher) []string {
	keys := make([]string, len(header))
	used := make(map[string]bool)

	for i, h := range header {
		key := strings.TrimSpace(h)
		if field, ok := matcher.Canonical(key); ok && !used[field] {
			key = field
		}
		if key == "" {
			key = fmt.Sprintf("coluna_%d", i+1)
		}
		// o sufixo também pode colidir com um cabeçalho já visto ("a", "a", "a_2")
		for n, base := 2, key; used[key]; n++ {
			key = fmt.Sprintf("%s_%d", base, n)
		}
		used[key] = true
		keys[i] = key
	}
	return keys
}

func toRows(records [][]string, matcher *record.HeaderMatcher) ([]domain.Row, error) {
	start := 0
	for start < len(records) && isBlank(records[start]) {
		start++
	}
	if start == len(records) {
		return nil, ErrNoHeader
	}

	keys := headerKeys(records[start], matcher)

	var rows []domain.Row
	for _, cells := range records[start+1:] {
		if isBlank(cells) {
			continue
		}
		row := make(domain.Row, len(keys))
		for i, key := range keys {
			value := ""
			if i < len(cells) {
				value = strings.TrimSpace(cells[i])
			}
			row[key] = value
		}
		rows = append(rows, row)
	}
	return rows, nil
}
