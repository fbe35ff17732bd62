package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"txt-converter-service/internal/api/middleware"
	"txt-converter-service/internal/api/responses"
	"txt-converter-service/internal/core/converter"
	"txt-converter-service/internal/core/history"
	"txt-converter-service/internal/core/record"
	"txt-converter-service/internal/core/sheet"
	"txt-converter-service/internal/domain"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// ConverterHandler lida com as requisições da API relacionadas à conversão para TXT.
type ConverterHandler struct {
	service  converter.Service
	history  history.Recorder
	defaults converter.Options
	logger   *zap.Logger
	now      func() time.Time
}

// NewConverterHandler cria um novo handler de conversão.
func NewConverterHandler(service converter.Service, recorder history.Recorder, defaults converter.Options, logger *zap.Logger) *ConverterHandler {
	if recorder == nil {
		recorder = history.NewNop()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ConverterHandler{
		service:  service,
		history:  recorder,
		defaults: defaults,
		logger:   logger,
		now:      time.Now,
	}
}

// RowsRequest é o corpo de /convert/rows.
type RowsRequest struct {
	Rows          []domain.Row `json:"rows"`
	FailurePolicy string       `json:"failurePolicy"`
	TextOverflow  string       `json:"textOverflow"`
}

// resolveOptions aplica sobre os padrões do servidor as políticas pedidas na requisição.
func (h *ConverterHandler) resolveOptions(failurePolicy, textOverflow string) (converter.Options, error) {
	opts := h.defaults
	if strings.TrimSpace(failurePolicy) != "" {
		p, err := converter.ParseFailurePolicy(failurePolicy)
		if err != nil {
			return opts, err
		}
		opts.FailurePolicy = p
	}
	if strings.TrimSpace(textOverflow) != "" {
		o, err := record.ParseOverflow(textOverflow)
		if err != nil {
			return opts, err
		}
		opts.TextOverflow = o
	}
	return opts, nil
}

// HandleTxtConversion converte uma planilha enviada (.xlsx, .xls, .csv) e devolve o TXT.
func (h *ConverterHandler) HandleTxtConversion(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Arquivo (.xlsx, .xls, .csv) não encontrado ou inválido")
		return
	}

	ext := strings.ToLower(filepath.Ext(fileHeader.Filename))
	if ext != ".csv" && ext != ".xls" && ext != ".xlsx" {
		responses.Error(c, http.StatusBadRequest, fmt.Sprintf("Extensão de arquivo não suportada: %s", ext))
		return
	}

	opts, err := h.resolveOptions(c.PostForm("failurePolicy"), c.PostForm("textOverflow"))
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Parâmetros de conversão inválidos", err.Error())
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		responses.Error(c, http.StatusInternalServerError, "Não foi possível abrir o arquivo")
		return
	}
	defer file.Close()

	result, err := h.service.ConvertFile(c.Request.Context(), file, fileHeader.Filename, opts)
	if err != nil {
		h.writeConversionError(c, err)
		return
	}

	h.record(c, fileHeader.Filename, "upload", opts, result)

	fileName := fmt.Sprintf("Conversao_%s.txt", h.now().Format("20060102_150405"))
	c.Header("Content-Disposition", "attachment; filename="+fileName)
	c.Header("X-Line-Count", strconv.Itoa(result.LineCount))
	c.Header("X-Skipped-Count", strconv.Itoa(len(result.Skipped)))
	c.Data(http.StatusOK, "text/plain; charset=utf-8", []byte(result.Content))
}

// HandleRowsConversion converte linhas enviadas em JSON e devolve o conteúdo no envelope padrão.
func (h *ConverterHandler) HandleRowsConversion(c *gin.Context) {
	var req RowsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		responses.Error(c, http.StatusBadRequest, "Requisição inválida", err.Error())
		return
	}

	opts, err := h.resolveOptions(req.FailurePolicy, req.TextOverflow)
	if err != nil {
		responses.Error(c, http.StatusBadRequest, "Parâmetros de conversão inválidos", err.Error())
		return
	}

	result, err := h.service.ConvertRows(c.Request.Context(), req.Rows, opts)
	if err != nil {
		h.writeConversionError(c, err)
		return
	}

	h.record(c, "", "json", opts, result)
	responses.Success(c, result, fmt.Sprintf("%d linhas convertidas", result.LineCount))
}

// HandleRecentConversions lista as últimas conversões registradas.
func (h *ConverterHandler) HandleRecentConversions(c *gin.Context) {
	limit := history.DefaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 || n > 100 {
			responses.Error(c, http.StatusBadRequest, "Parâmetro limit inválido (1 a 100)")
			return
		}
		limit = n
	}

	records, err := h.history.Recent(c.Request.Context(), limit)
	if errors.Is(err, history.ErrDisabled) {
		responses.Error(c, http.StatusNotImplemented, "Histórico de conversões não configurado")
		return
	}
	if err != nil {
		h.logger.Error("erro ao listar histórico", zap.Error(err))
		responses.Error(c, http.StatusInternalServerError, "Erro ao consultar o histórico", err.Error())
		return
	}

	if records == nil {
		records = []domain.ConversionRecord{}
	}
	responses.Success(c, records, "Histórico de conversões")
}

func (h *ConverterHandler) record(c *gin.Context, fileName, source string, opts converter.Options, result *domain.ConversionResult) {
	rec := domain.ConversionRecord{
		FileName:      fileName,
		Source:        source,
		LineCount:     result.LineCount,
		SkippedCount:  len(result.Skipped),
		FailurePolicy: string(opts.FailurePolicy),
		State:         string(result.State),
		Username:      c.GetString(middleware.ContextUsername),
		CreatedAt:     h.now().UTC(),
	}
	if err := h.history.Record(c.Request.Context(), rec); err != nil {
		h.logger.Warn("falha ao registrar histórico", zap.Error(err))
	}
}

// writeConversionError traduz os erros da conversão em respostas HTTP.
func (h *ConverterHandler) writeConversionError(c *gin.Context, err error) {
	var rowErr *converter.RowError
	var iv *record.FormatInvariantViolation

	switch {
	case errors.Is(err, converter.ErrNoRows):
		responses.Error(c, http.StatusBadRequest, "Dados inválidos ou vazios", err.Error())
	case errors.Is(err, sheet.ErrUnsupportedFormat), errors.Is(err, sheet.ErrNoHeader), errors.Is(err, sheet.ErrNoSheets):
		responses.Error(c, http.StatusBadRequest, "Não foi possível ler a planilha", err.Error())
	case errors.As(err, &iv):
		h.logger.Error("violação do layout de 101 posições", zap.Error(err))
		responses.Error(c, http.StatusInternalServerError, "Erro interno de layout", err.Error())
	case errors.As(err, &rowErr):
		details := gin.H{"index": rowErr.Index, "field": rowErr.Field()}
		responses.ErrorWithData(c, http.StatusUnprocessableEntity, "Erro ao converter linha", details, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		responses.Error(c, http.StatusRequestTimeout, "Conversão cancelada", err.Error())
	default:
		h.logger.Error("erro ao processar conversão", zap.Error(err))
		responses.Error(c, http.StatusInternalServerError, "Erro ao processar os arquivos", err.Error())
	}
}
