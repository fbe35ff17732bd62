package record

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// DateSentinel é devolvido para qualquer data que não possa ser interpretada.
const DateSentinel = "00/00/0000"

// Faixa de seriais do Excel aceitos como data (1900-01-01 a 9999-12-31).
const (
	minExcelSerial = 1
	maxExcelSerial = 2958465
)

var excelEpoch = time.Date(1899, 12, 30, 0, 0, 0, 0, time.UTC)

// NormalizeDate devolve a data em DD/MM/YYYY ou DateSentinel.
//
// Strings com "/" são lidas como dia/mês/ano; strings com "-" como ano-mês-dia (ISO).
// Qualquer hora após espaço ou "T" é descartada. Valores numéricos são seriais do Excel.
func NormalizeDate(value any) string {
	switch v := value.(type) {
	case nil:
		return DateSentinel
	case time.Time:
		if v.IsZero() {
			return DateSentinel
		}
		return formatDate(v.Day(), int(v.Month()), v.Year())
	case *time.Time:
		if v == nil {
			return DateSentinel
		}
		return NormalizeDate(*v)
	case float64:
		return fromExcelSerial(v)
	case float32:
		return fromExcelSerial(float64(v))
	case int:
		return fromExcelSerial(float64(v))
	case int64:
		return fromExcelSerial(float64(v))
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return DateSentinel
		}
		return fromExcelSerial(f)
	case string:
		return normalizeDateString(v)
	}
	return normalizeDateString(ToText(value))
}

func normalizeDateString(s string) string {
	datePart := strings.TrimSpace(s)
	if i := strings.IndexAny(datePart, " \t"); i >= 0 {
		datePart = datePart[:i]
	}
	if datePart == "" {
		return DateSentinel
	}

	var dayS, monthS, yearS string
	switch {
	case strings.Contains(datePart, "/"):
		parts := strings.Split(datePart, "/")
		if len(parts) != 3 {
			return DateSentinel
		}
		dayS, monthS, yearS = parts[0], parts[1], parts[2]
	case strings.Contains(datePart, "-"):
		if i := strings.IndexByte(datePart, 'T'); i >= 0 {
			datePart = datePart[:i]
		}
		parts := strings.Split(datePart, "-")
		if len(parts) != 3 {
			return DateSentinel
		}
		yearS, monthS, dayS = parts[0], parts[1], parts[2]
	default:
		return DateSentinel
	}

	if !isDigits(dayS, 1, 2) || !isDigits(monthS, 1, 2) || !isDigits(yearS, 4, 4) {
		return DateSentinel
	}
	day, _ := strconv.Atoi(dayS)
	month, _ := strconv.Atoi(monthS)
	year, _ := strconv.Atoi(yearS)

	if !validDate(day, month, year) {
		return DateSentinel
	}
	return formatDate(day, month, year)
}

// validDate rejeita 30/02, mês 13 e afins: time.Date normaliza, então basta comparar.
func validDate(day, month, year int) bool {
	if month < 1 || month > 12 || day < 1 || year < 1 {
		return false
	}
	t := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	return t.Day() == day && int(t.Month()) == month && t.Year() == year
}

func fromExcelSerial(serial float64) string {
	if math.IsNaN(serial) || serial < minExcelSerial || serial > maxExcelSerial {
		return DateSentinel
	}
	t := excelEpoch.AddDate(0, 0, int(serial))
	return formatDate(t.Day(), int(t.Month()), t.Year())
}

func formatDate(day, month, year int) string {
	return fmt.Sprintf("%02d/%02d/%04d", day, month, year)
}

func isDigits(s string, minLen, maxLen int) bool {
	if len(s) < minLen || len(s) > maxLen {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
