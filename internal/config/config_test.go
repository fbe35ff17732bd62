package config

import (
	"os"
	"path/filepath"
	"testing"

	"txt-converter-service/internal/core/record"
	"txt-converter-service/internal/domain"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

var envKeys = []string{
	"PORT", "JWT_SECRET", "MAX_UPLOAD_MB", "LOG_LEVEL",
	"CONVERTER_FAILURE_POLICY", "CONVERTER_TEXT_OVERFLOW", "CONVERTER_WORKERS",
	"CONVERTER_LINE_ENDING", "CONVERTER_FUZZY_HEADERS",
	"FIRESTORE_PROJECT", "FIRESTORE_DATABASE", "FIRESTORE_COLLECTION",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestFromEnvDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "8083", cfg.Port)
	assert.Equal(t, 20, cfg.MaxUploadMB)
	assert.Equal(t, zapcore.InfoLevel, cfg.LogLevel)
	assert.Equal(t, domain.PolicyAbort, cfg.Conversion.FailurePolicy)
	assert.Equal(t, record.OverflowReject, cfg.Conversion.TextOverflow)
	assert.Equal(t, domain.LineEndingLF, cfg.Conversion.LineEnding)
	assert.Equal(t, 1, cfg.Conversion.Workers)
	assert.False(t, cfg.Conversion.FuzzyHeaders)
	assert.Equal(t, "conversions", cfg.FirestoreCollection)
	assert.False(t, cfg.HistoryEnabled())
}

func TestFromEnvOverrides(t *testing.T) {
	clearEnv(t)
	t.Setenv("PORT", "9000")
	t.Setenv("CONVERTER_FAILURE_POLICY", "skip")
	t.Setenv("CONVERTER_TEXT_OVERFLOW", "truncate")
	t.Setenv("CONVERTER_WORKERS", "4")
	t.Setenv("CONVERTER_LINE_ENDING", "crlf")
	t.Setenv("CONVERTER_FUZZY_HEADERS", "true")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("FIRESTORE_PROJECT", "projeto")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, domain.PolicySkip, cfg.Conversion.FailurePolicy)
	assert.Equal(t, record.OverflowTruncate, cfg.Conversion.TextOverflow)
	assert.Equal(t, 4, cfg.Conversion.Workers)
	assert.Equal(t, domain.LineEndingCRLF, cfg.Conversion.LineEnding)
	assert.True(t, cfg.Conversion.FuzzyHeaders)
	assert.Equal(t, zapcore.DebugLevel, cfg.LogLevel)
	assert.True(t, cfg.HistoryEnabled())
}

func TestFromEnvInvalid(t *testing.T) {
	cases := map[string]string{
		"CONVERTER_FAILURE_POLICY": "retry",
		"CONVERTER_TEXT_OVERFLOW":  "wrap",
		"CONVERTER_WORKERS":        "zero",
		"CONVERTER_LINE_ENDING":    "cr",
		"CONVERTER_FUZZY_HEADERS":  "talvez",
		"MAX_UPLOAD_MB":            "-1",
		"LOG_LEVEL":                "verbose",
	}
	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestLoadEnvFile(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("CONVERTER_WORKERS")
	t.Setenv("PORT", "7000")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("PORT=1234\nCONVERTER_WORKERS=3\n"), 0o600))

	require.NoError(t, LoadEnvFile(path))
	t.Cleanup(func() { os.Unsetenv("CONVERTER_WORKERS") })

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "7000", cfg.Port)
	assert.Equal(t, 3, cfg.Conversion.Workers)
}

func TestLoadEnvFileMissing(t *testing.T) {
	assert.NoError(t, LoadEnvFile(filepath.Join(t.TempDir(), "nao-existe.env")))
}
