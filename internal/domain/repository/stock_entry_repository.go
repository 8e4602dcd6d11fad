package repository

import (
	"context"
	"time"

	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// EntryCursor posición de paginación por (Timestamp, ID).
type EntryCursor struct {
	Timestamp time.Time
	ID        int64
}

// EntryQuery filtro de historial. From/To son inclusivos; After excluye todo lo anterior o igual.
type EntryQuery struct {
	From  *time.Time
	To    *time.Time
	After *EntryCursor
	Limit int
}

// StockEntryRepository puerto del libro de stock. Solo agrega; no expone Update ni Delete.
type StockEntryRepository interface {
	// Append persiste el asiento y asigna ID. Devuelve false si la clave de idempotencia ya existe.
	Append(ctx context.Context, entry *entity.StockEntry) (bool, error)
	FindByKey(ctx context.Context, key entity.PostingKey) (*entity.StockEntry, error)
	ListByReference(ctx context.Context, reference string) ([]entity.StockEntry, error)
	// ListByProduct ordena por Timestamp y luego por ID.
	ListByProduct(ctx context.Context, productID string, q EntryQuery) ([]entity.StockEntry, error)
	// SumByProduct devuelve Σ IN − Σ OUT hasta upTo (nil = todo el historial).
	SumByProduct(ctx context.Context, productID string, upTo *time.Time) (decimal.Decimal, error)
}
