package dto

import "github.com/shopspring/decimal"

// BOMComponentInput línea de entrada: componente y cantidad por unidad del padre.
type BOMComponentInput struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	Unit      string          `json:"unit"` // vacío = unidad de medida del componente
}

// CreateBOMRequest entrada para crear una nueva versión de BOM (queda activa).
type CreateBOMRequest struct {
	ProductID  string              `json:"product_id"`
	Components []BOMComponentInput `json:"components"`
}
