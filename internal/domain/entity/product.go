package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Tipos de producto rastreable.
const (
	ProductTypeRawMaterial  = "RAW_MATERIAL"
	ProductTypeSemiFinished = "SEMI_FINISHED"
	ProductTypeFinishedGood = "FINISHED_GOOD"
)

// ValidProductType indica si t es uno de los tipos soportados.
func ValidProductType(t string) bool {
	switch t {
	case ProductTypeRawMaterial, ProductTypeSemiFinished, ProductTypeFinishedGood:
		return true
	}
	return false
}

// Manufacturable indica si el tipo admite lista de materiales.
func Manufacturable(t string) bool {
	return t == ProductTypeSemiFinished || t == ProductTypeFinishedGood
}

// Product representa un ítem rastreable del catálogo (materia prima, semielaborado o terminado).
// CurrentStock es una vista materializada del libro de stock: solo la modifica el poster del ledger.
type Product struct {
	ID            string
	Name          string
	NameKey       string // nombre normalizado, único
	Type          string
	UnitOfMeasure string
	UnitCost      decimal.Decimal // costo promedio ponderado
	CurrentStock  decimal.Decimal
	RetiredAt     *time.Time
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// Retired indica si el producto fue dado de baja (soft-retire).
func (p *Product) Retired() bool {
	return p.RetiredAt != nil
}
