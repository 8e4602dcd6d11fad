package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Errores de dominio (sin dependencias de infraestructura).
var (
	ErrNotFound          = errors.New("recurso no encontrado")
	ErrInvalidInput      = errors.New("entrada inválida")
	ErrDuplicateName     = errors.New("el nombre ya está registrado")
	ErrCyclicBOM         = errors.New("la lista de materiales contiene un ciclo")
	ErrInsufficientStock = errors.New("stock insuficiente")
	ErrCapacityExceeded  = errors.New("capacidad del centro de trabajo agotada")
	ErrInvalidTransition = errors.New("transición de estado no permitida")
	ErrBusy              = errors.New("recurso ocupado, reintente")
	ErrForbidden         = errors.New("acceso denegado")
	ErrConflict          = errors.New("conflicto con el estado actual")
)

// IsRetryable indica si el caller puede reintentar la operación (con backoff exponencial).
// Solo ErrBusy es transitorio; el resto son rechazos definitivos.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrBusy)
}

// ValidationError describe una entrada malformada. Envuelve ErrInvalidInput.
type ValidationError struct {
	Field  string
	Reason string
}

// NewValidationError construye un error de validación para un campo.
func NewValidationError(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s: %s", ErrInvalidInput.Error(), e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// ShortfallError reporta el primer faltante de stock detectado. Envuelve ErrInsufficientStock.
type ShortfallError struct {
	ProductID string
	Required  decimal.Decimal
	Available decimal.Decimal
}

func (e *ShortfallError) Error() string {
	return fmt.Sprintf("%s: producto %s requiere %s, disponible %s",
		ErrInsufficientStock.Error(), e.ProductID, e.Required.String(), e.Available.String())
}

func (e *ShortfallError) Unwrap() error { return ErrInsufficientStock }

// Missing cantidad que falta para cubrir el requerimiento.
func (e *ShortfallError) Missing() decimal.Decimal {
	return e.Required.Sub(e.Available)
}

// CycleError describe el camino que cierra el ciclo, empezando y terminando en el mismo producto.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("%s: %s", ErrCyclicBOM.Error(), strings.Join(e.Path, " -> "))
}

func (e *CycleError) Unwrap() error { return ErrCyclicBOM }

// TransitionError indica que el evento no está en la tabla de transiciones para el estado actual.
type TransitionError struct {
	Entity string // "manufacturing_order" o "work_order"
	From   string
	Event  string
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%s: %s %s no admite %s", ErrInvalidTransition.Error(), e.Entity, e.From, e.Event)
}

func (e *TransitionError) Unwrap() error { return ErrInvalidTransition }
