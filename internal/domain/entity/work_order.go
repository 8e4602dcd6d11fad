package entity

import "time"

// WOStatus estado de una orden de trabajo.
type WOStatus string

// Estados de la orden de trabajo.
const (
	WOStatusPending   WOStatus = "PENDING"
	WOStatusRunning   WOStatus = "RUNNING"
	WOStatusCompleted WOStatus = "COMPLETED"
	WOStatusCancelled WOStatus = "CANCELLED"
)

// Settled indica que la orden de trabajo ya no está pendiente ni en ejecución.
func (s WOStatus) Settled() bool {
	return s == WOStatusCompleted || s == WOStatusCancelled
}

// WorkOrder operación de una orden de fabricación ejecutada en un centro de trabajo.
type WorkOrder struct {
	ID                     string
	ManufacturingOrderID   string
	Sequence               int
	Name                   string
	WorkCenterID           string
	Status                 WOStatus
	Operator               string
	PlannedDurationMinutes int
	ActualDurationMinutes  int
	StartedAt              *time.Time
	CompletedAt            *time.Time
	CancelledAt            *time.Time
	CreatedAt              time.Time
	UpdatedAt              time.Time
}
