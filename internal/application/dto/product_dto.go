package dto

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreateProductRequest entrada para dar de alta un producto. El stock inicia en 0;
// el saldo de apertura se registra con un asiento IN en el libro de stock.
type CreateProductRequest struct {
	Name          string          `json:"name" validate:"required,min=1,max=200"`
	Type          string          `json:"type" validate:"required,oneof=RAW_MATERIAL SEMI_FINISHED FINISHED_GOOD"`
	UnitOfMeasure string          `json:"unit_of_measure" validate:"required"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
}

// ProductResponse salida de un producto.
type ProductResponse struct {
	ID            string          `json:"id"`
	Name          string          `json:"name"`
	Type          string          `json:"type"`
	UnitOfMeasure string          `json:"unit_of_measure"`
	UnitCost      decimal.Decimal `json:"unit_cost"`
	CurrentStock  decimal.Decimal `json:"current_stock"`
	Retired       bool            `json:"retired"`
	RetiredAt     *time.Time      `json:"retired_at,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	UpdatedAt     time.Time       `json:"updated_at"`
}

// ProductListResponse lista paginada de productos.
type ProductListResponse struct {
	Items []ProductResponse `json:"items"`
	Page  PageResponse      `json:"page"`
}
