package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/shopspring/decimal"
)

var _ repository.StockEntryRepository = (*StockEntryRepo)(nil)

const entryColumns = `id, product_id, transaction_type, quantity, unit_cost, total_value, reference, created_by, created_at`

// StockEntryRepo libro de stock append-only. La clave (reference, product_id, transaction_type) es única.
type StockEntryRepo struct {
	q Querier
}

// NewStockEntryRepository construye el adaptador. Pasar pool o tx (Querier).
func NewStockEntryRepository(q Querier) *StockEntryRepo {
	return &StockEntryRepo{q: q}
}

// Append inserta el asiento con ON CONFLICT DO NOTHING; false si la clave ya estaba registrada.
func (r *StockEntryRepo) Append(ctx context.Context, e *entity.StockEntry) (bool, error) {
	query := `
		INSERT INTO stock_entries (product_id, transaction_type, quantity, unit_cost, total_value, reference, created_by, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (reference, product_id, transaction_type) DO NOTHING
		RETURNING id`
	err := r.q.QueryRow(ctx, query,
		e.ProductID, e.TransactionType, e.Quantity, e.UnitCost, e.TotalValue, e.Reference, e.CreatedBy, e.Timestamp,
	).Scan(&e.ID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return false, nil
		}
		return false, fmt.Errorf("insert stock entry: %w", err)
	}
	return true, nil
}

// FindByKey busca el asiento por su clave de idempotencia; nil si no existe.
func (r *StockEntryRepo) FindByKey(ctx context.Context, key entity.PostingKey) (*entity.StockEntry, error) {
	row := r.q.QueryRow(ctx, `
		SELECT `+entryColumns+` FROM stock_entries
		WHERE reference = $1 AND product_id = $2 AND transaction_type = $3`,
		key.Reference, key.ProductID, key.TransactionType)
	e, err := scanEntry(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("find stock entry: %w", err)
	}
	return &e, nil
}

// ListByReference asientos de una referencia en orden de inserción.
func (r *StockEntryRepo) ListByReference(ctx context.Context, reference string) ([]entity.StockEntry, error) {
	return r.list(ctx, `SELECT `+entryColumns+` FROM stock_entries WHERE reference = $1 ORDER BY id`, reference)
}

// ListByProduct una página del historial ordenada por (created_at, id).
func (r *StockEntryRepo) ListByProduct(ctx context.Context, productID string, q repository.EntryQuery) ([]entity.StockEntry, error) {
	var sb strings.Builder
	args := []any{productID}
	sb.WriteString(`SELECT ` + entryColumns + ` FROM stock_entries WHERE product_id = $1`)
	if q.From != nil {
		args = append(args, *q.From)
		fmt.Fprintf(&sb, " AND created_at >= $%d", len(args))
	}
	if q.To != nil {
		args = append(args, *q.To)
		fmt.Fprintf(&sb, " AND created_at <= $%d", len(args))
	}
	if q.After != nil {
		args = append(args, q.After.Timestamp, q.After.ID)
		fmt.Fprintf(&sb, " AND (created_at, id) > ($%d, $%d)", len(args)-1, len(args))
	}
	sb.WriteString(" ORDER BY created_at, id")
	if q.Limit > 0 {
		args = append(args, q.Limit)
		fmt.Fprintf(&sb, " LIMIT $%d", len(args))
	}
	return r.list(ctx, sb.String(), args...)
}

// SumByProduct Σ IN − Σ OUT hasta upTo (nil = todo).
func (r *StockEntryRepo) SumByProduct(ctx context.Context, productID string, upTo *time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.q.QueryRow(ctx, `
		SELECT COALESCE(SUM(CASE WHEN transaction_type = 'OUT' THEN -quantity ELSE quantity END), 0)
		FROM stock_entries
		WHERE product_id = $1 AND ($2::timestamptz IS NULL OR created_at <= $2)`,
		productID, upTo).Scan(&sum)
	if err != nil {
		return decimal.Zero, fmt.Errorf("sum stock entries: %w", err)
	}
	return sum, nil
}

func (r *StockEntryRepo) list(ctx context.Context, query string, args ...any) ([]entity.StockEntry, error) {
	rows, err := r.q.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list stock entries: %w", err)
	}
	defer rows.Close()
	var out []entity.StockEntry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan stock entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func scanEntry(row pgx.Row) (entity.StockEntry, error) {
	var e entity.StockEntry
	err := row.Scan(
		&e.ID, &e.ProductID, &e.TransactionType, &e.Quantity, &e.UnitCost, &e.TotalValue,
		&e.Reference, &e.CreatedBy, &e.Timestamp,
	)
	return e, err
}
