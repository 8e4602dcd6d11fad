// Package httperr traduce los errores del motor a código HTTP y cuerpo dto.ErrorResponse
// para la capa HTTP externa. No filtra detalles de infraestructura: los errores no clasificados
// salen como 500 con un mensaje genérico.
package httperr

import (
	"errors"
	"net/http"

	"github.com/jhoicas/Produccion-api/internal/application/dto"
	"github.com/jhoicas/Produccion-api/internal/domain"
)

// Códigos de error expuestos al cliente.
const (
	CodeNotFound          = "NOT_FOUND"
	CodeValidation        = "VALIDATION"
	CodeDuplicateName     = "DUPLICATE_NAME"
	CodeCyclicBOM         = "CYCLIC_BOM"
	CodeInsufficientStock = "INSUFFICIENT_STOCK"
	CodeCapacityExceeded  = "CAPACITY_EXCEEDED"
	CodeInvalidTransition = "INVALID_TRANSITION"
	CodeConflict          = "CONFLICT"
	CodeBusy              = "BUSY"
	CodeForbidden         = "FORBIDDEN"
	CodeInternal          = "INTERNAL"
)

type mapping struct {
	target error
	status int
	code   string
}

// El orden importa solo si un error envuelve varios sentinelas; se gana el primero.
var table = []mapping{
	{domain.ErrBusy, http.StatusServiceUnavailable, CodeBusy},
	{domain.ErrForbidden, http.StatusForbidden, CodeForbidden},
	{domain.ErrNotFound, http.StatusNotFound, CodeNotFound},
	{domain.ErrInvalidInput, http.StatusBadRequest, CodeValidation},
	{domain.ErrDuplicateName, http.StatusConflict, CodeDuplicateName},
	{domain.ErrCyclicBOM, http.StatusConflict, CodeCyclicBOM},
	{domain.ErrInsufficientStock, http.StatusConflict, CodeInsufficientStock},
	{domain.ErrCapacityExceeded, http.StatusConflict, CodeCapacityExceeded},
	{domain.ErrInvalidTransition, http.StatusConflict, CodeInvalidTransition},
	{domain.ErrConflict, http.StatusConflict, CodeConflict},
}

// Status devuelve el código HTTP para err (200 si err es nil).
func Status(err error) int {
	status, _ := Map(err)
	return status
}

// Map clasifica err con errors.Is y arma el cuerpo de respuesta.
func Map(err error) (int, dto.ErrorResponse) {
	if err == nil {
		return http.StatusOK, dto.ErrorResponse{}
	}
	for _, m := range table {
		if errors.Is(err, m.target) {
			return m.status, dto.ErrorResponse{Code: m.code, Message: err.Error()}
		}
	}
	return http.StatusInternalServerError, dto.ErrorResponse{Code: CodeInternal, Message: "error interno"}
}

// Retryable indica si el cliente debe reintentar con backoff (503 Busy).
func Retryable(err error) bool {
	return domain.IsRetryable(err)
}
