package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// MOStatus estado de una orden de fabricación.
type MOStatus string

// Estados de la orden de fabricación.
const (
	MOStatusDraft      MOStatus = "DRAFT"
	MOStatusConfirmed  MOStatus = "CONFIRMED"
	MOStatusInProgress MOStatus = "IN_PROGRESS"
	MOStatusDone       MOStatus = "DONE"
	MOStatusCancelled  MOStatus = "CANCELLED"
)

// Terminal indica si el estado ya no admite transiciones.
func (s MOStatus) Terminal() bool {
	return s == MOStatusDone || s == MOStatusCancelled
}

// MaterialRequirement materia prima y cantidad que necesita una corrida de producción.
type MaterialRequirement struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

// ManufacturingOrder orden de fabricación de un producto con una versión fija de su BOM.
// Requirements es la explosión congelada al confirmar; los pasos siguientes no vuelven a resolver la BOM.
type ManufacturingOrder struct {
	ID                 string
	Reference          string
	ProductID          string
	Quantity           decimal.Decimal
	BOMVersion         int
	Status             MOStatus
	Requirements       []MaterialRequirement
	ConsumptionAttempt int  // intento de consumo vigente; sube tras compensar un start fallido
	Aborted            bool // cancelada desde IN_PROGRESS con reversa de consumos
	CreatedBy          string
	CreatedAt          time.Time
	ConfirmedAt        *time.Time
	StartedAt          *time.Time
	CompletedAt        *time.Time
	CancelledAt        *time.Time
	UpdatedAt          time.Time
}
