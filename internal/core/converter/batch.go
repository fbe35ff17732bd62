package converter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"txt-converter-service/internal/core/record"
	"txt-converter-service/internal/domain"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNoRows é o erro de entrada: nenhuma linha para converter.
var ErrNoRows = errors.New("dados inválidos ou vazios")

// RowError identifica a linha (índice na entrada, a partir de 0) que interrompeu o lote.
type RowError struct {
	Index int
	Row   domain.Row
	Err   error
}

func (e *RowError) Error() string {
	return fmt.Sprintf("erro na linha %d: %v", e.Index, e.Err)
}

func (e *RowError) Unwrap() error { return e.Err }

// Field devolve o campo que falhou, quando conhecido.
func (e *RowError) Field() string {
	var fe *record.FieldEncodingError
	if errors.As(e.Err, &fe) {
		return fe.Field
	}
	return ""
}

// Options configura uma conversão em lote.
type Options struct {
	FailurePolicy domain.FailurePolicy
	TextOverflow  record.Overflow
	Workers       int
	LineEnding    domain.LineEnding
	FuzzyHeaders  bool
}

// DefaultOptions: aborta na primeira falha, rejeita texto longo, uma linha por vez, "\n".
func DefaultOptions() Options {
	return Options{
		FailurePolicy: domain.PolicyAbort,
		TextOverflow:  record.OverflowReject,
		Workers:       1,
		LineEnding:    domain.LineEndingLF,
	}
}

// ParseFailurePolicy aceita "abort" e "skip" (vazio = abort).
func ParseFailurePolicy(s string) (domain.FailurePolicy, error) {
	switch domain.FailurePolicy(strings.ToLower(strings.TrimSpace(s))) {
	case "", domain.PolicyAbort:
		return domain.PolicyAbort, nil
	case domain.PolicySkip:
		return domain.PolicySkip, nil
	}
	return "", fmt.Errorf("política de falha inválida: %q", s)
}

// ParseLineEnding aceita "lf" e "crlf" (vazio = lf).
func ParseLineEnding(s string) (domain.LineEnding, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "lf":
		return domain.LineEndingLF, nil
	case "crlf":
		return domain.LineEndingCRLF, nil
	}
	return "", fmt.Errorf("terminador de linha inválido: %q", s)
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.FailurePolicy == "" {
		o.FailurePolicy = d.FailurePolicy
	}
	if o.TextOverflow == "" {
		o.TextOverflow = d.TextOverflow
	}
	if o.Workers < 1 {
		o.Workers = d.Workers
	}
	if o.LineEnding == "" {
		o.LineEnding = d.LineEnding
	}
	return o
}

// Batch converte sequências de linhas no TXT de layout fixo. Não guarda estado entre chamadas.
type Batch struct {
	opts     Options
	logger   *zap.Logger
	assemble func(row map[string]any, opts record.Options) (record.Assembled, error)
}

// NewBatch cria um conversor em lote. logger nil vira zap.NewNop().
func NewBatch(opts Options, logger *zap.Logger) *Batch {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Batch{opts: opts.withDefaults(), logger: logger, assemble: record.Assemble}
}

type outcome struct {
	done      bool
	line      string
	truncated []string
	err       error
}

// run guarda o estado de uma única chamada de Convert.
type run struct {
	state  domain.BatchState
	logger *zap.Logger
}

func (r *run) transition(to domain.BatchState) {
	r.logger.Debug("transição de estado", zap.String("from", string(r.state)), zap.String("to", string(to)))
	r.state = to
}

// Convert monta uma linha de 101 posições por registro, na ordem de entrada.
//
// Com PolicyAbort a primeira linha com erro encerra o lote e volta como *RowError.
// Com PolicySkip a linha é registrada em Skipped e o lote continua.
// Violações de layout sempre encerram o lote. Se ctx for cancelado, as linhas já
// produzidas voltam no resultado junto com ctx.Err().
func (b *Batch) Convert(ctx context.Context, rows []domain.Row) (*domain.ConversionResult, error) {
	r := &run{state: domain.StateIdle, logger: b.logger}

	if len(rows) == 0 {
		r.transition(domain.StateFailed)
		return nil, ErrNoRows
	}

	r.transition(domain.StateConverting)

	var outcomes []outcome
	if b.opts.Workers > 1 && len(rows) > 1 {
		outcomes = b.encodeParallel(ctx, rows)
	} else {
		outcomes = b.encodeSequential(ctx, rows)
	}

	var content strings.Builder
	content.Grow(len(rows) * (record.LineWidth + len(b.opts.LineEnding)))
	result := &domain.ConversionResult{}

	for i, o := range outcomes {
		if !o.done {
			r.transition(domain.StateCancelled)
			result.Content = content.String()
			result.State = r.state
			b.logger.Warn("conversão cancelada", zap.Int("processadas", i), zap.Int("total", len(rows)))
			err := ctx.Err()
			if err == nil {
				err = context.Canceled
			}
			return result, err
		}

		if o.err != nil {
			rowErr := &RowError{Index: i, Row: rows[i], Err: o.err}
			var iv *record.FormatInvariantViolation
			if b.opts.FailurePolicy != domain.PolicySkip || errors.As(o.err, &iv) {
				r.transition(domain.StateFailed)
				b.logger.Error("conversão interrompida", zap.Int("linha", i), zap.Error(o.err))
				return nil, rowErr
			}
			b.logger.Warn("linha ignorada", zap.Int("linha", i), zap.String("campo", rowErr.Field()), zap.Error(o.err))
			result.Skipped = append(result.Skipped, domain.SkippedRow{Index: i, Field: rowErr.Field(), Reason: o.err.Error()})
			continue
		}

		if len(o.truncated) > 0 {
			b.logger.Info("campos truncados", zap.Int("linha", i), zap.Strings("campos", o.truncated))
		}
		content.WriteString(o.line)
		content.WriteString(string(b.opts.LineEnding))
		result.LineCount++
	}

	r.transition(domain.StateDone)
	result.Content = content.String()
	result.State = r.state
	return result, nil
}

func (b *Batch) encodeRow(row domain.Row) outcome {
	a, err := b.assemble(row, record.Options{TextOverflow: b.opts.TextOverflow})
	return outcome{done: true, line: a.Line, truncated: a.Truncated, err: err}
}

func (b *Batch) encodeSequential(ctx context.Context, rows []domain.Row) []outcome {
	outcomes := make([]outcome, len(rows))
	for i, row := range rows {
		if ctx.Err() != nil {
			break
		}
		outcomes[i] = b.encodeRow(row)
		if outcomes[i].err != nil && b.opts.FailurePolicy != domain.PolicySkip {
			break
		}
	}
	return outcomes
}

// encodeParallel processa as linhas em paralelo; cada resultado fica no índice da
// linha de origem, então a junção preserva a ordem de entrada.
func (b *Batch) encodeParallel(ctx context.Context, rows []domain.Row) []outcome {
	outcomes := make([]outcome, len(rows))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(b.opts.Workers)

	for i := range rows {
		if gctx.Err() != nil {
			break
		}
		i := i
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			outcomes[i] = b.encodeRow(rows[i])
			return nil
		})
	}
	_ = g.Wait()
	return outcomes
}
