package utils

import (
	"slices"

	"github.com/sisoputnfrba/tp-golang-stride/utils/types"
)

// Agrega un elemento a la cola (IMPORTANTE: la cola debe coincidar con el tipo de elemento)
func Encolar[T any](cola *[]T, elemento T) {
	*cola = append(*cola, elemento)
}

// Desencola el primer elemento; el booleano indica si la cola tenia algo
func Desencolar[T any](cola *[]T) (T, bool) {
	if len(*cola) == 0 {
		var vacio T
		return vacio, false
	}
	elemento := (*cola)[0]
	*cola = (*cola)[1:] // Elimina el primer elemento
	return elemento, true
}

// Saca la primera aparicion del elemento sin alterar el orden del resto
func Quitar[T comparable](cola *[]T, elemento T) bool {
	i := slices.Index(*cola, elemento)
	if i < 0 {
		return false
	}
	*cola = slices.Delete(*cola, i, i+1)
	return true
}

// Cola de espera FIFO de una primitiva de sincronizacion. Solo guarda referencias:
// el TCB lo sigue siendo de la tabla de hilos.
type ColaEspera struct {
	refs []types.Ref
}

func (c *ColaEspera) Encolar(ref types.Ref) {
	Encolar(&c.refs, ref)
}

func (c *ColaEspera) Desencolar() (types.Ref, bool) {
	return Desencolar(&c.refs)
}

func (c *ColaEspera) Quitar(ref types.Ref) bool {
	return Quitar(&c.refs, ref)
}

func (c *ColaEspera) Contiene(ref types.Ref) bool {
	return slices.Contains(c.refs, ref)
}

func (c *ColaEspera) Len() int {
	return len(c.refs)
}

// Copia de la cola en orden de llegada
func (c *ColaEspera) Refs() []types.Ref {
	return slices.Clone(c.refs)
}
