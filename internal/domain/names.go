package domain

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

var folder = cases.Fold()

// NameKey normaliza un nombre para el índice único: NFKC, case folding y espacios colapsados.
// "Steel  Rod" y "steel rod" producen la misma clave.
func NameKey(name string) string {
	s := norm.NFKC.String(strings.TrimSpace(name))
	s = folder.String(s)
	return strings.Join(strings.Fields(s), " ")
}
