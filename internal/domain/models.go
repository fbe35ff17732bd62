// package domain/models.go
package domain

import "time"

// Row é uma linha de planilha já lida: nome da coluna -> valor (texto, número ou data).
type Row map[string]any

// BatchState descreve em que ponto está uma conversão em lote.
type BatchState string

// Estados possíveis de uma conversão.
const (
	StateIdle       BatchState = "idle"
	StateConverting BatchState = "converting"
	StateDone       BatchState = "done"
	StateFailed     BatchState = "failed"
	StateCancelled  BatchState = "cancelled"
)

// FailurePolicy define o que fazer quando uma linha não pode ser convertida.
type FailurePolicy string

// Políticas de falha por linha.
const (
	PolicyAbort FailurePolicy = "abort"
	PolicySkip  FailurePolicy = "skip"
)

// LineEnding é o terminador de linha do TXT gerado.
type LineEnding string

// Terminadores suportados.
const (
	LineEndingLF   LineEnding = "\n"
	LineEndingCRLF LineEnding = "\r\n"
)

// SkippedRow registra uma linha descartada pela política skip.
type SkippedRow struct {
	Index  int    `json:"index"`
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
}

// ConversionResult é o resultado de uma chamada de conversão; nunca é reaproveitado.
type ConversionResult struct {
	Content   string       `json:"content"`
	LineCount int          `json:"lineCount"`
	Skipped   []SkippedRow `json:"skipped,omitempty"`
	State     BatchState   `json:"state"`
}

// ConversionRecord é o resumo de uma conversão guardado no histórico.
type ConversionRecord struct {
	ID            string    `json:"id" firestore:"-"`
	FileName      string    `json:"fileName" firestore:"fileName"`
	Source        string    `json:"source" firestore:"source"`
	LineCount     int       `json:"lineCount" firestore:"lineCount"`
	SkippedCount  int       `json:"skippedCount" firestore:"skippedCount"`
	FailurePolicy string    `json:"failurePolicy" firestore:"failurePolicy"`
	State         string    `json:"state" firestore:"state"`
	Username      string    `json:"username,omitempty" firestore:"username,omitempty"`
	CreatedAt     time.Time `json:"createdAt" firestore:"createdAt"`
}
