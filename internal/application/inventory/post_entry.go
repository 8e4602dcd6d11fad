package inventory

import (
	"context"
	"strings"
	"time"

	"github.com/jhoicas/Produccion-api/internal/application/auth"
	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/application/ports"
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/jhoicas/Produccion-api/internal/domain/inventory"
	"github.com/jhoicas/Produccion-api/internal/domain/repository"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

const defaultPageSize = 200

// LedgerUseCase libro de stock: única vía para modificar el stock cacheado de un producto.
// Cada posteo agrega el asiento y aplica su delta en la misma transacción, bajo el lock del producto.
type LedgerUseCase struct {
	repos    repository.Repositories
	tx       ports.TxRunner
	locker   ports.Locker
	authz    auth.Authorizer
	log      zerolog.Logger
	pageSize int
	now      func() time.Time
}

// NewLedgerUseCase construye el caso de uso. pageSize <= 0 usa 200 asientos por página de historial.
func NewLedgerUseCase(
	repos repository.Repositories,
	tx ports.TxRunner,
	locker ports.Locker,
	authz auth.Authorizer,
	log zerolog.Logger,
	pageSize int,
) *LedgerUseCase {
	if pageSize <= 0 {
		pageSize = defaultPageSize
	}
	return &LedgerUseCase{
		repos:    repos,
		tx:       tx,
		locker:   locker,
		authz:    authz,
		log:      log.With().Str("component", "ledger").Logger(),
		pageSize: pageSize,
		now:      func() time.Time { return time.Now().UTC() },
	}
}

// Post registra un asiento manual (recepción, ajuste) con autorización del actor.
func (uc *LedgerUseCase) Post(ctx context.Context, actor auth.Actor, in dto.PostEntryRequest) (*dto.PostEntryResult, error) {
	if err := uc.authz.Authorize(ctx, actor, auth.OpStockPost); err != nil {
		return nil, err
	}
	in.CreatedBy = actor.UserID
	return uc.Apply(ctx, in)
}

// Apply agrega el asiento y aplica su delta firmado al stock cacheado de forma atómica.
// Un OUT que deje el stock negativo falla con *domain.ShortfallError. Un reintento con la misma
// clave (reference, product, type) devuelve el asiento existente con Duplicate=true.
func (uc *LedgerUseCase) Apply(ctx context.Context, in dto.PostEntryRequest) (*dto.PostEntryResult, error) {
	if err := validatePosting(in); err != nil {
		return nil, err
	}

	unlock, err := uc.locker.Lock(ctx, ports.ProductKey(in.ProductID))
	if err != nil {
		return nil, err
	}
	defer unlock()

	var res dto.PostEntryResult
	err = uc.tx.Run(ctx, func(r repository.Repositories) error {
		res = dto.PostEntryResult{}
		existing, err := r.Entries.FindByKey(ctx, in.Key())
		if err != nil {
			return err
		}
		if existing != nil {
			res = dto.PostEntryResult{Entry: *existing, Duplicate: true}
			return nil
		}

		// Bloquea la fila del producto (SELECT FOR UPDATE) dentro de la tx
		product, err := r.Products.GetForUpdate(ctx, in.ProductID)
		if err != nil {
			return err
		}
		if product == nil {
			return domain.ErrNotFound
		}

		unitCost := product.UnitCost
		if in.UnitCost != nil {
			unitCost = *in.UnitCost
		}
		newCost := product.UnitCost
		delta := in.Quantity
		switch in.TransactionType {
		case entity.TransactionTypeOUT:
			if product.CurrentStock.LessThan(in.Quantity) {
				return &domain.ShortfallError{
					ProductID: product.ID,
					Required:  in.Quantity,
					Available: product.CurrentStock,
				}
			}
			delta = in.Quantity.Neg()
		case entity.TransactionTypeIN:
			newCost = inventory.WeightedAverageCost(product.CurrentStock, product.UnitCost, in.Quantity, unitCost)
		}

		entry := entity.StockEntry{
			ProductID:       in.ProductID,
			TransactionType: in.TransactionType,
			Quantity:        in.Quantity,
			UnitCost:        unitCost,
			TotalValue:      inventory.LineValue(in.Quantity, unitCost),
			Reference:       in.Reference,
			CreatedBy:       in.CreatedBy,
			Timestamp:       uc.now(),
		}
		inserted, err := r.Entries.Append(ctx, &entry)
		if err != nil {
			return err
		}
		if !inserted {
			// Otra instancia ganó la carrera sobre el índice único de la clave
			existing, err := r.Entries.FindByKey(ctx, in.Key())
			if err != nil {
				return err
			}
			if existing == nil {
				return domain.ErrConflict
			}
			res = dto.PostEntryResult{Entry: *existing, Duplicate: true}
			return nil
		}
		if err := r.Products.ApplyStockDelta(ctx, in.ProductID, delta, newCost); err != nil {
			return err
		}
		res.Entry = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	if res.Duplicate {
		uc.log.Debug().
			Str("product_id", in.ProductID).
			Str("reference", in.Reference).
			Str("type", in.TransactionType).
			Msg("posteo repetido, sin efecto")
	} else {
		uc.log.Info().
			Int64("entry_id", res.Entry.ID).
			Str("product_id", in.ProductID).
			Str("reference", in.Reference).
			Str("type", in.TransactionType).
			Str("quantity", in.Quantity.String()).
			Msg("asiento registrado")
	}
	return &res, nil
}

// FindPosting busca un asiento por su clave de idempotencia; (nil, nil) si no existe.
func (uc *LedgerUseCase) FindPosting(ctx context.Context, key entity.PostingKey) (*entity.StockEntry, error) {
	return uc.repos.Entries.FindByKey(ctx, key)
}

// ByReference lista los asientos de una referencia (p. ej. un intento de consumo de una orden).
func (uc *LedgerUseCase) ByReference(ctx context.Context, reference string) ([]entity.StockEntry, error) {
	return uc.repos.Entries.ListByReference(ctx, reference)
}

func validatePosting(in dto.PostEntryRequest) error {
	if in.ProductID == "" {
		return domain.NewValidationError("product_id", "obligatorio")
	}
	if in.TransactionType != entity.TransactionTypeIN && in.TransactionType != entity.TransactionTypeOUT {
		return domain.NewValidationError("transaction_type", "debe ser IN u OUT")
	}
	if !in.Quantity.GreaterThan(decimal.Zero) {
		return domain.NewValidationError("quantity", "debe ser mayor que 0")
	}
	if in.UnitCost != nil && in.UnitCost.LessThan(decimal.Zero) {
		return domain.NewValidationError("unit_cost", "no puede ser negativo")
	}
	if strings.TrimSpace(in.Reference) == "" {
		return domain.NewValidationError("reference", "obligatoria: forma parte de la clave de idempotencia")
	}
	return nil
}
