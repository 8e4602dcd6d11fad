package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de transacción del libro de stock.
const (
	TransactionTypeIN  = "IN"
	TransactionTypeOUT = "OUT"
)

// StockEntry asiento del libro de stock. Solo se agrega; nunca se actualiza ni elimina.
// Las correcciones se hacen con un asiento compensatorio.
type StockEntry struct {
	ID              int64 // monotónico, orden de inserción
	ProductID       string
	TransactionType string
	Quantity        decimal.Decimal // siempre > 0; el signo lo da TransactionType
	UnitCost        decimal.Decimal
	TotalValue      decimal.Decimal // Quantity * UnitCost
	Reference       string
	CreatedBy       string
	Timestamp       time.Time
}

// SignedQuantity devuelve +Quantity para IN y -Quantity para OUT.
func (e *StockEntry) SignedQuantity() decimal.Decimal {
	if e.TransactionType == TransactionTypeOUT {
		return e.Quantity.Neg()
	}
	return e.Quantity
}

// Key devuelve la clave de idempotencia del asiento.
func (e *StockEntry) Key() PostingKey {
	return PostingKey{Reference: e.Reference, ProductID: e.ProductID, TransactionType: e.TransactionType}
}

// PostingKey clave de idempotencia: un reintento con la misma clave no genera un asiento nuevo.
type PostingKey struct {
	Reference       string
	ProductID       string
	TransactionType string
}
