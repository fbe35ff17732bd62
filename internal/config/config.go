// Package config carrega a configuração do serviço a partir de variáveis de ambiente
// e, se existir, de um arquivo .env.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"txt-converter-service/internal/core/converter"
	"txt-converter-service/internal/core/record"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
	"go.uber.org/zap/zapcore"
)

// Config reúne as opções do servidor e do conversor.
type Config struct {
	Port        string
	JWTSecret   string
	MaxUploadMB int
	LogLevel    zapcore.Level

	Conversion converter.Options

	FirestoreProject    string
	FirestoreDatabase   string
	FirestoreCollection string
}

// HistoryEnabled indica se o histórico em Firestore foi configurado.
func (c Config) HistoryEnabled() bool {
	return c.FirestoreProject != ""
}

// LoadEnvFile carrega variáveis de path sem sobrescrever as já definidas.
// Arquivo ausente não é erro.
func LoadEnvFile(path string) error {
	err := godotenv.Load(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return err
}

func getenv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return def
}

// Load lê .env (se houver) e o ambiente.
func Load() (Config, error) {
	if err := LoadEnvFile(".env"); err != nil {
		return Config{}, fmt.Errorf("erro ao carregar .env: %w", err)
	}
	return FromEnv()
}

// FromEnv monta a Config apenas com as variáveis de ambiente atuais.
func FromEnv() (Config, error) {
	cfg := Config{
		Port:                getenv("PORT", "8083"),
		JWTSecret:           getenv("JWT_SECRET", ""),
		FirestoreProject:    getenv("FIRESTORE_PROJECT", ""),
		FirestoreDatabase:   getenv("FIRESTORE_DATABASE", ""),
		FirestoreCollection: getenv("FIRESTORE_COLLECTION", "conversions"),
		Conversion:          converter.DefaultOptions(),
	}

	var err error
	if cfg.MaxUploadMB, err = cast.ToIntE(getenv("MAX_UPLOAD_MB", "20")); err != nil || cfg.MaxUploadMB <= 0 {
		return Config{}, fmt.Errorf("MAX_UPLOAD_MB inválido: %q", os.Getenv("MAX_UPLOAD_MB"))
	}

	if cfg.LogLevel, err = zapcore.ParseLevel(getenv("LOG_LEVEL", "info")); err != nil {
		return Config{}, fmt.Errorf("LOG_LEVEL inválido: %w", err)
	}

	if cfg.Conversion.FailurePolicy, err = converter.ParseFailurePolicy(getenv("CONVERTER_FAILURE_POLICY", "")); err != nil {
		return Config{}, err
	}
	if cfg.Conversion.TextOverflow, err = record.ParseOverflow(getenv("CONVERTER_TEXT_OVERFLOW", "")); err != nil {
		return Config{}, err
	}
	if cfg.Conversion.LineEnding, err = converter.ParseLineEnding(getenv("CONVERTER_LINE_ENDING", "")); err != nil {
		return Config{}, err
	}
	if cfg.Conversion.Workers, err = cast.ToIntE(getenv("CONVERTER_WORKERS", "1")); err != nil || cfg.Conversion.Workers < 1 {
		return Config{}, fmt.Errorf("CONVERTER_WORKERS inválido: %q", os.Getenv("CONVERTER_WORKERS"))
	}
	if cfg.Conversion.FuzzyHeaders, err = cast.ToBoolE(getenv("CONVERTER_FUZZY_HEADERS", "false")); err != nil {
		return Config{}, fmt.Errorf("CONVERTER_FUZZY_HEADERS inválido: %w", err)
	}

	return cfg, nil
}
