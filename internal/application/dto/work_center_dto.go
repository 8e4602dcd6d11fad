package dto

import "github.com/shopspring/decimal"

// CreateWorkCenterRequest entrada para registrar un centro de trabajo (queda ACTIVE).
type CreateWorkCenterRequest struct {
	Name        string          `json:"name"`
	Capacity    int             `json:"capacity"`
	CostPerHour decimal.Decimal `json:"cost_per_hour"`
}

// WorkCenterUtilization ocupación actual del centro.
type WorkCenterUtilization struct {
	WorkCenterID string `json:"work_center_id"`
	Running      int    `json:"running"`
	Capacity     int    `json:"capacity"`
	Available    int    `json:"available"`
}
