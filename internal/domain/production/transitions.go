package production

import (
	"github.com/jhoicas/Produccion-api/internal/domain"
	"github.com/jhoicas/Produccion-api/internal/domain/entity"
)

// MOEvent evento que dispara una transición de la orden de fabricación.
type MOEvent string

// Eventos de la orden de fabricación.
const (
	MOEventConfirm  MOEvent = "confirm"
	MOEventStart    MOEvent = "start"
	MOEventComplete MOEvent = "complete"
	MOEventCancel   MOEvent = "cancel"
	MOEventAbort    MOEvent = "abort"
)

// WOEvent evento que dispara una transición de la orden de trabajo.
type WOEvent string

// Eventos de la orden de trabajo.
const (
	WOEventStart    WOEvent = "start"
	WOEventComplete WOEvent = "complete"
	WOEventCancel   WOEvent = "cancel"
)

// Tabla exhaustiva de transiciones de la orden de fabricación.
// Cancelar desde IN_PROGRESS solo es posible con abort (revierte consumos).
var moTransitions = map[entity.MOStatus]map[MOEvent]entity.MOStatus{
	entity.MOStatusDraft: {
		MOEventConfirm: entity.MOStatusConfirmed,
		MOEventCancel:  entity.MOStatusCancelled,
	},
	entity.MOStatusConfirmed: {
		MOEventStart:  entity.MOStatusInProgress,
		MOEventCancel: entity.MOStatusCancelled,
	},
	entity.MOStatusInProgress: {
		MOEventComplete: entity.MOStatusDone,
		MOEventAbort:    entity.MOStatusCancelled,
	},
	entity.MOStatusDone:      {},
	entity.MOStatusCancelled: {},
}

var woTransitions = map[entity.WOStatus]map[WOEvent]entity.WOStatus{
	entity.WOStatusPending: {
		WOEventStart:  entity.WOStatusRunning,
		WOEventCancel: entity.WOStatusCancelled,
	},
	entity.WOStatusRunning: {
		WOEventComplete: entity.WOStatusCompleted,
	},
	entity.WOStatusCompleted: {},
	entity.WOStatusCancelled: {},
}

// NextMOStatus devuelve el estado destino o un TransitionError si el evento no aplica.
func NextMOStatus(from entity.MOStatus, ev MOEvent) (entity.MOStatus, error) {
	if to, ok := moTransitions[from][ev]; ok {
		return to, nil
	}
	return from, &domain.TransitionError{Entity: "manufacturing_order", From: string(from), Event: string(ev)}
}

// NextWOStatus devuelve el estado destino o un TransitionError si el evento no aplica.
func NextWOStatus(from entity.WOStatus, ev WOEvent) (entity.WOStatus, error) {
	if to, ok := woTransitions[from][ev]; ok {
		return to, nil
	}
	return from, &domain.TransitionError{Entity: "work_order", From: string(from), Event: string(ev)}
}
