package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// BOM lista de materiales versionada de un producto semielaborado o terminado.
// Identidad: (ProductID, Version). Locked se activa cuando una orden confirmada la referencia;
// desde ese momento los componentes no se pueden modificar.
type BOM struct {
	ProductID  string
	Version    int
	Active     bool
	Locked     bool
	Components []BOMComponent
	CreatedBy  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// BOMComponent línea de la lista de materiales: cantidad requerida por unidad del padre.
// Cost es una foto del costo unitario del componente al momento de crear la versión.
type BOMComponent struct {
	Line               int
	ComponentProductID string
	Quantity           decimal.Decimal
	Unit               string
	Cost               decimal.Decimal
	Total              decimal.Decimal // Quantity * Cost
}

// SnapshotTotal suma los totales de las líneas (costo a la fecha de autoría).
func (b *BOM) SnapshotTotal() decimal.Decimal {
	total := decimal.Zero
	for _, c := range b.Components {
		total = total.Add(c.Total)
	}
	return total
}
