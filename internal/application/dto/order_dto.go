package dto

import (
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
	"github.com/shopspring/decimal"
)

// OperationInput orden de trabajo a crear junto con la orden de fabricación.
type OperationInput struct {
	Name                   string `json:"name"`
	WorkCenterID           string `json:"work_center_id"`
	PlannedDurationMinutes int    `json:"planned_duration_minutes"`
}

// CreateOrderRequest entrada para crear una orden de fabricación en DRAFT.
// Reference vacío genera una referencia MO-XXXXXXXX.
type CreateOrderRequest struct {
	Reference  string           `json:"reference"`
	ProductID  string           `json:"product_id"`
	Quantity   decimal.Decimal  `json:"quantity"`
	Operations []OperationInput `json:"operations"`
}

// OrderDetail orden de fabricación con sus órdenes de trabajo.
type OrderDetail struct {
	Order      entity.ManufacturingOrder `json:"order"`
	WorkOrders []entity.WorkOrder        `json:"work_orders"`
}

// CompleteWorkOrderRequest cierre de una orden de trabajo. ActualDurationMinutes 0 = calcular desde StartedAt.
type CompleteWorkOrderRequest struct {
	ActualDurationMinutes int `json:"actual_duration_minutes"`
}

// OrderCostSummary costo real de una orden: materiales consumidos (neto de reversas) más mano de obra.
type OrderCostSummary struct {
	OrderID      string          `json:"order_id"`
	MaterialCost decimal.Decimal `json:"material_cost"`
	LaborCost    decimal.Decimal `json:"labor_cost"`
	TotalCost    decimal.Decimal `json:"total_cost"`
	UnitCost     decimal.Decimal `json:"unit_cost"`
}
