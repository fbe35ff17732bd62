// Package cli implementa o txtconv, conversão de planilhas em TXT pela linha de comando.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"

	"txt-converter-service/internal/config"
	"txt-converter-service/internal/core/converter"
	"txt-converter-service/internal/core/record"
	"txt-converter-service/internal/domain"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type convertFlags struct {
	output       string
	onError      string
	overflow     string
	workers      int
	crlf         bool
	fuzzyHeaders bool
	verbose      bool
}

// NewRootCommand monta o comando raiz; stdout recebe o TXT quando -o não é informado
// e stderr recebe os logs.
func NewRootCommand(stdout, stderr io.Writer) *cobra.Command {
	root := &cobra.Command{
		Use:           "txtconv",
		Short:         "Converte planilhas em TXT de layout fixo (101 posições)",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.AddCommand(newConvertCommand(stdout, stderr))
	return root
}

func newConvertCommand(stdout, stderr io.Writer) *cobra.Command {
	flags := &convertFlags{}

	cmd := &cobra.Command{
		Use:   "convert <planilha>",
		Short: "Converte uma planilha (.xlsx, .xls, .csv) em TXT",
		Long: `Lê a primeira aba da planilha, associa os cabeçalhos aos campos do registro
e grava uma linha de 101 caracteres por linha de dados.

Os padrões vêm das variáveis CONVERTER_* (ou do .env); as flags têm precedência.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := newLogger(stderr, flags.verbose)
			defer logger.Sync()

			opts, err := flags.options(cmd)
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			err = runConvert(ctx, args[0], flags.output, stdout, opts, logger)
			if err != nil {
				logger.Error("conversão falhou", zap.Error(err))
			}
			return err
		},
	}

	f := cmd.Flags()
	f.StringVarP(&flags.output, "output", "o", "", "arquivo TXT de saída (padrão: stdout)")
	f.StringVar(&flags.onError, "on-error", "", "política para linhas inválidas: abort ou skip")
	f.StringVar(&flags.overflow, "overflow", "", "texto maior que o campo: reject ou truncate")
	f.IntVar(&flags.workers, "workers", 0, "linhas convertidas em paralelo")
	f.BoolVar(&flags.crlf, "crlf", false, "termina as linhas com CRLF")
	f.BoolVar(&flags.fuzzyHeaders, "fuzzy-headers", false, "aceita cabeçalhos aproximados")
	f.BoolVarP(&flags.verbose, "verbose", "v", false, "logs de depuração")

	return cmd
}

// options parte da configuração do ambiente e aplica as flags informadas.
func (f *convertFlags) options(cmd *cobra.Command) (converter.Options, error) {
	cfg, err := config.Load()
	if err != nil {
		return converter.Options{}, err
	}
	opts := cfg.Conversion

	if cmd.Flags().Changed("on-error") {
		if opts.FailurePolicy, err = converter.ParseFailurePolicy(f.onError); err != nil {
			return opts, err
		}
	}
	if cmd.Flags().Changed("overflow") {
		if opts.TextOverflow, err = record.ParseOverflow(f.overflow); err != nil {
			return opts, err
		}
	}
	if cmd.Flags().Changed("workers") {
		if f.workers < 1 {
			return opts, fmt.Errorf("--workers deve ser maior que zero: %d", f.workers)
		}
		opts.Workers = f.workers
	}
	if f.crlf {
		opts.LineEnding = domain.LineEndingCRLF
	}
	if f.fuzzyHeaders {
		opts.FuzzyHeaders = true
	}
	return opts, nil
}

func runConvert(ctx context.Context, input, output string, stdout io.Writer, opts converter.Options, logger *zap.Logger) error {
	in, err := os.Open(input)
	if err != nil {
		return fmt.Errorf("erro ao abrir %s: %w", input, err)
	}
	defer in.Close()

	result, err := converter.NewService(logger).ConvertFile(ctx, in, filepath.Base(input), opts)
	if err != nil {
		return err
	}

	for _, s := range result.Skipped {
		logger.Warn("linha ignorada", zap.Int("linha", s.Index), zap.String("campo", s.Field), zap.String("motivo", s.Reason))
	}

	if output == "" {
		if _, err := io.WriteString(stdout, result.Content); err != nil {
			return err
		}
	} else if err := os.WriteFile(output, []byte(result.Content), 0o644); err != nil {
		return fmt.Errorf("erro ao gravar %s: %w", output, err)
	}

	logger.Info("conversão concluída",
		zap.String("entrada", input),
		zap.String("saida", output),
		zap.Int("linhas", result.LineCount),
		zap.Int("ignoradas", len(result.Skipped)))
	return nil
}

// newLogger grava em console no stderr, mantendo o stdout livre para o TXT.
func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.InfoLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	encCfg := zap.NewDevelopmentEncoderConfig()
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(encCfg), zapcore.AddSync(w), level)
	return zap.New(core)
}
