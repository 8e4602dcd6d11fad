package entity

import (
	"time"

	"github.com/shopspring/decimal"
)

// Estados de un centro de trabajo.
const (
	WorkCenterActive   = "ACTIVE"
	WorkCenterInactive = "INACTIVE"
)

// WorkCenter recurso productivo con capacidad (órdenes de trabajo simultáneas) y costo por hora.
type WorkCenter struct {
	ID          string
	Name        string
	NameKey     string
	Capacity    int
	CostPerHour decimal.Decimal
	Status      string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
