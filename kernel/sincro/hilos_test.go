package sincro

import (
	"github.com/sisoputnfrba/tp-golang-stride/kernel/utils"
	"github.com/sisoputnfrba/tp-golang-stride/utils/types"
)

// hilosFake hace de kernel: guarda el estado de cada hilo y el orden en que se
// despiertan, sin planificador.
type hilosFake struct {
	estados    map[types.Ref]utils.Estado
	bloqueos   map[types.Ref]utils.Bloqueo
	pendientes map[types.Ref]utils.Bloqueo
	locks      map[types.Ref][]int
	semaforos  map[types.Ref]map[int]int
	despiertos []types.Ref
}

func nuevosHilos() *hilosFake {
	return &hilosFake{
		estados:    map[types.Ref]utils.Estado{},
		bloqueos:   map[types.Ref]utils.Bloqueo{},
		pendientes: map[types.Ref]utils.Bloqueo{},
		locks:      map[types.Ref][]int{},
		semaforos:  map[types.Ref]map[int]int{},
	}
}

func (h *hilosFake) Bloquear(ref types.Ref, b utils.Bloqueo) {
	h.estados[ref] = utils.BLOCKED
	h.bloqueos[ref] = b
}

func (h *hilosFake) Despertar(ref types.Ref) {
	h.estados[ref] = utils.READY
	delete(h.bloqueos, ref)
	h.despiertos = append(h.despiertos, ref)
}

func (h *hilosFake) Reintentar(ref types.Ref, b utils.Bloqueo) {
	h.pendientes[ref] = b
	h.Despertar(ref)
}

func (h *hilosFake) TomarLock(ref types.Ref, id int) {
	h.locks[ref] = append(h.locks[ref], id)
}

func (h *hilosFake) SoltarLock(ref types.Ref, id int) bool {
	tcb := utils.TCB{Locks: h.locks[ref]}
	ok := tcb.SoltarLock(id)
	h.locks[ref] = tcb.Locks
	return ok
}

func (h *hilosFake) AsignarSemaforo(ref types.Ref, id int, delta int) {
	if h.semaforos[ref] == nil {
		h.semaforos[ref] = map[int]int{}
	}
	if n := h.semaforos[ref][id] + delta; n > 0 {
		h.semaforos[ref][id] = n
	} else {
		delete(h.semaforos[ref], id)
	}
}

func (h *hilosFake) tiene(ref types.Ref, id int) bool {
	for _, l := range h.locks[ref] {
		if l == id {
			return true
		}
	}
	return false
}

func hilo(tid uint32) types.Ref {
	return types.Ref{PID: 1, TID: tid}
}
