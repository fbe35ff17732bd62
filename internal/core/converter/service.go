package converter

import (
	"context"
	"fmt"
	"io"

	"txt-converter-service/internal/core/sheet"
	"txt-converter-service/internal/domain"

	"go.uber.org/zap"
)

// Service define a interface para os serviços de conversão de planilhas em TXT de layout fixo.
type Service interface {
	ConvertRows(ctx context.Context, rows []domain.Row, opts Options) (*domain.ConversionResult, error)
	ConvertFile(ctx context.Context, file io.Reader, filename string, opts Options) (*domain.ConversionResult, error)
}

type service struct {
	logger *zap.Logger
}

// NewService cria uma nova instância do serviço de conversão.
func NewService(logger *zap.Logger) Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &service{logger: logger}
}

// ConvertRows converte linhas já lidas. Cada chamada usa um Batch novo.
func (svc *service) ConvertRows(ctx context.Context, rows []domain.Row, opts Options) (*domain.ConversionResult, error) {
	return NewBatch(opts, svc.logger).Convert(ctx, rows)
}

// ConvertFile lê a planilha (.xlsx, .xls, .csv) e converte suas linhas.
func (svc *service) ConvertFile(ctx context.Context, file io.Reader, filename string, opts Options) (*domain.ConversionResult, error) {
	rows, err := sheet.Load(file, filename, sheet.Options{FuzzyHeaders: opts.FuzzyHeaders})
	if err != nil {
		return nil, fmt.Errorf("erro ao carregar planilha: %w", err)
	}
	svc.logger.Info("planilha carregada", zap.String("arquivo", filename), zap.Int("linhas", len(rows)))

	return svc.ConvertRows(ctx, rows, opts)
}
