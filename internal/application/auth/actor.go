package auth

import (
	"context"
	"fmt"
	"slices"

	"github.com/jhoicas/Produccion-api/internal/domain"
)

// Roles conocidos. El mapeo rol → operaciones es política externa; aquí solo hay un default.
const (
	RoleAdmin    = "admin"
	RolePlanner  = "planner"
	RoleOperator = "operator"
	RoleManager  = "manager"
)

// Operation operación mutante del motor sujeta a autorización.
type Operation string

// Operaciones autorizables.
const (
	OpProductCreate    Operation = "product.create"
	OpProductRetire    Operation = "product.retire"
	OpBOMCreate        Operation = "bom.create"
	OpBOMActivate      Operation = "bom.activate"
	OpBOMReplace       Operation = "bom.replace"
	OpStockPost        Operation = "stock.post"
	OpWorkCenterCreate Operation = "workcenter.create"
	OpWorkCenterStatus Operation = "workcenter.status"
	OpOrderCreate      Operation = "mo.create"
	OpOrderConfirm     Operation = "mo.confirm"
	OpOrderStart       Operation = "mo.start"
	OpOrderComplete    Operation = "mo.complete"
	OpOrderCancel      Operation = "mo.cancel"
	OpOrderAbort       Operation = "mo.abort"
	OpWorkOrderStart   Operation = "wo.start"
	OpWorkOrderFinish  Operation = "wo.complete"
	OpWorkOrderCancel  Operation = "wo.cancel"
)

// Actor usuario ya autenticado por el colaborador externo.
type Actor struct {
	UserID string
	Role   string
}

// System actor para herramientas internas (seed, reconciliación).
var System = Actor{UserID: "system", Role: RoleAdmin}

// Authorizer decide si el actor puede ejecutar la operación. Devuelve domain.ErrForbidden si no.
type Authorizer interface {
	Authorize(ctx context.Context, actor Actor, op Operation) error
}

// AllowAll autoriza cualquier operación de un actor identificado.
type AllowAll struct{}

// Authorize implementa Authorizer.
func (AllowAll) Authorize(_ context.Context, actor Actor, _ Operation) error {
	if actor.UserID == "" {
		return domain.ErrForbidden
	}
	return nil
}

// RolePolicy mapea cada operación a los roles que la pueden ejecutar. RoleAdmin siempre pasa.
type RolePolicy map[Operation][]string

// Authorize implementa Authorizer.
func (p RolePolicy) Authorize(_ context.Context, actor Actor, op Operation) error {
	if actor.UserID == "" || actor.Role == "" {
		return domain.ErrForbidden
	}
	if actor.Role == RoleAdmin {
		return nil
	}
	if slices.Contains(p[op], actor.Role) {
		return nil
	}
	return fmt.Errorf("%w: rol %s no puede ejecutar %s", domain.ErrForbidden, actor.Role, op)
}

// DefaultPolicy planificador crea y confirma; operador ejecuta; gerente puede todo lo operativo.
func DefaultPolicy() RolePolicy {
	planner := []string{RolePlanner, RoleManager}
	operator := []string{RoleOperator, RoleManager}
	manager := []string{RoleManager}
	return RolePolicy{
		OpProductCreate:    planner,
		OpProductRetire:    manager,
		OpBOMCreate:        planner,
		OpBOMActivate:      planner,
		OpBOMReplace:       planner,
		OpStockPost:        manager,
		OpWorkCenterCreate: manager,
		OpWorkCenterStatus: manager,
		OpOrderCreate:      planner,
		OpOrderConfirm:     planner,
		OpOrderStart:       operator,
		OpOrderComplete:    operator,
		OpOrderCancel:      planner,
		OpOrderAbort:       manager,
		OpWorkOrderStart:   operator,
		OpWorkOrderFinish:  operator,
		OpWorkOrderCancel:  operator,
	}
}
