// cmd/converter/main.go
package main

import (
	"context"
	"log"

	"txt-converter-service/internal/api"
	"txt-converter-service/internal/api/handlers"
	"txt-converter-service/internal/api/responses"
	"txt-converter-service/internal/config"
	"txt-converter-service/internal/core/converter"
	"txt-converter-service/internal/core/history"

	"cloud.google.com/go/firestore"
	"go.uber.org/zap"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Configuração inválida: %v", err)
	}

	logger, err := responses.InitLogger(zap.NewAtomicLevelAt(cfg.LogLevel))
	if err != nil {
		log.Fatalf("Falha ao iniciar o logger: %v", err)
	}
	defer logger.Sync()

	recorder := history.NewNop()
	if cfg.HistoryEnabled() {
		client, err := newFirestoreClient(context.Background(), cfg)
		if err != nil {
			logger.Fatal("Falha ao conectar ao Firestore", zap.Error(err))
		}
		defer client.Close()
		recorder = history.NewFirestoreRecorder(client, cfg.FirestoreCollection)
		logger.Info("Histórico de conversões ativo",
			zap.String("projeto", cfg.FirestoreProject),
			zap.String("colecao", cfg.FirestoreCollection))
	}

	converterService := converter.NewService(logger)
	converterHandler := handlers.NewConverterHandler(converterService, recorder, cfg.Conversion, logger)

	router := api.NewRouter(converterHandler, cfg.JWTSecret, cfg.MaxUploadMB)
	if cfg.JWTSecret == "" {
		logger.Warn("JWT_SECRET não definido: rotas /api/v1 sem autenticação")
	}

	logger.Info("🚀 Converter Service (Go) iniciado", zap.String("porta", cfg.Port))
	if err := router.Run(":" + cfg.Port); err != nil {
		logger.Fatal("Falha ao iniciar o servidor de conversão", zap.Error(err))
	}
}

func newFirestoreClient(ctx context.Context, cfg config.Config) (*firestore.Client, error) {
	if cfg.FirestoreDatabase != "" {
		return firestore.NewClientWithDatabase(ctx, cfg.FirestoreProject, cfg.FirestoreDatabase)
	}
	return firestore.NewClient(ctx, cfg.FirestoreProject)
}
