package ports

import "context"

// Locker serializa operaciones por clave (producto, orden, centro de trabajo).
// Lock adquiere todas las claves en orden lexicográfico con espera acotada; si vence el plazo
// o se cancela ctx devuelve domain.ErrBusy. La función unlock es idempotente.
type Locker interface {
	Lock(ctx context.Context, keys ...string) (unlock func(), err error)
}

// BOMGraphKey serializa las escrituras sobre el grafo de BOMs: la detección de ciclos
// necesita ver un grafo que nadie más está modificando.
const BOMGraphKey = "bom-graph"

// Claves de bloqueo.
func ProductKey(id string) string    { return "product:" + id }
func OrderKey(id string) string      { return "mo:" + id }
func WorkCenterKey(id string) string { return "workcenter:" + id }
