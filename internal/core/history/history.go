// Package history guarda o resumo das conversões realizadas.
package history

import (
	"context"
	"errors"
	"fmt"

	"txt-converter-service/internal/domain"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
)

// ErrDisabled é devolvido quando nenhum armazenamento de histórico foi configurado.
var ErrDisabled = errors.New("histórico de conversões não configurado")

// DefaultLimit é o tamanho padrão da listagem de conversões recentes.
const DefaultLimit = 20

// Recorder registra e lista conversões.
type Recorder interface {
	Record(ctx context.Context, rec domain.ConversionRecord) error
	Recent(ctx context.Context, limit int) ([]domain.ConversionRecord, error)
}

type nopRecorder struct{}

// NewNop devolve um Recorder que descarta os registros.
func NewNop() Recorder {
	return nopRecorder{}
}

func (nopRecorder) Record(context.Context, domain.ConversionRecord) error { return nil }

func (nopRecorder) Recent(context.Context, int) ([]domain.ConversionRecord, error) {
	return nil, ErrDisabled
}

type firestoreRecorder struct {
	db         *firestore.Client
	collection string
}

// NewFirestoreRecorder grava os registros na coleção informada.
func NewFirestoreRecorder(db *firestore.Client, collection string) Recorder {
	return &firestoreRecorder{db: db, collection: collection}
}

func (r *firestoreRecorder) Record(ctx context.Context, rec domain.ConversionRecord) error {
	if _, _, err := r.db.Collection(r.collection).Add(ctx, rec); err != nil {
		return fmt.Errorf("erro ao gravar histórico: %w", err)
	}
	return nil
}

func (r *firestoreRecorder) Recent(ctx context.Context, limit int) ([]domain.ConversionRecord, error) {
	if limit <= 0 {
		limit = DefaultLimit
	}

	query := r.db.Collection(r.collection).OrderBy("createdAt", firestore.Desc).Limit(limit).Documents(ctx)
	defer query.Stop()

	var records []domain.ConversionRecord
	for {
		doc, err := query.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("erro ao consultar histórico: %w", err)
		}

		var rec domain.ConversionRecord
		if err := doc.DataTo(&rec); err != nil {
			return nil, fmt.Errorf("erro ao ler registro %s: %w", doc.Ref.ID, err)
		}
		rec.ID = doc.Ref.ID
		records = append(records, rec)
	}
	return records, nil
}
