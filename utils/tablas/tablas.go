// Package tablas tiene la tabla de descriptores abiertos por proceso. La usa el
// modulo recursos y, en memoria, el kernel cuando corre sin ese modulo.
package tablas

import (
	"errors"
	"fmt"
	"slices"

	"github.com/sisoputnfrba/tp-golang-stride/utils/generadores"
	"github.com/sisoputnfrba/tp-golang-stride/utils/types"
	"gvisor.dev/gvisor/pkg/sync"
)

var (
	// El descriptor no esta abierto (o ya se cerro)
	ErrRecursoInexistente = errors.New("no existe el recurso")
	ErrSinEspacio         = errors.New("el proceso no puede abrir mas recursos")
)

type abierto struct {
	tid    uint32
	nombre string
}

type tablaProceso struct {
	fds      generadores.GeneradorFD
	abiertos map[int]abierto
}

type Tabla struct {
	mu       sync.Mutex
	maximo   int // por proceso; 0 es sin limite
	procesos map[uint32]*tablaProceso
}

func Nueva(maximo int) *Tabla {
	return &Tabla{maximo: maximo, procesos: make(map[uint32]*tablaProceso)}
}

// Abrir asigna el menor descriptor libre del proceso
func (t *Tabla) Abrir(ref types.Ref, nombre string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tp, existe := t.procesos[ref.PID]
	if !existe {
		tp = &tablaProceso{abiertos: make(map[int]abierto)}
		t.procesos[ref.PID] = tp
	}
	if t.maximo > 0 && len(tp.abiertos) >= t.maximo {
		return 0, fmt.Errorf("pid %d: %w", ref.PID, ErrSinEspacio)
	}
	fd := tp.fds.Asignar()
	tp.abiertos[fd] = abierto{tid: ref.TID, nombre: nombre}
	return fd, nil
}

func (t *Tabla) Cerrar(pid uint32, fd int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	tp, existe := t.procesos[pid]
	if !existe {
		return fmt.Errorf("pid %d fd %d: %w", pid, fd, ErrRecursoInexistente)
	}
	if _, abierto := tp.abiertos[fd]; !abierto {
		return fmt.Errorf("pid %d fd %d: %w", pid, fd, ErrRecursoInexistente)
	}
	delete(tp.abiertos, fd)
	tp.fds.Liberar(fd)
	return nil
}

// CerrarProceso borra la tabla del proceso. Cerrar un proceso sin recursos no es error.
func (t *Tabla) CerrarProceso(pid uint32) error {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.procesos, pid)
	return nil
}

// Abiertos devuelve los descriptores abiertos de un proceso, ordenados
func (t *Tabla) Abiertos(pid uint32) []int {
	t.mu.Lock()
	defer t.mu.Unlock()

	tp, existe := t.procesos[pid]
	if !existe {
		return nil
	}
	fds := make([]int, 0, len(tp.abiertos))
	for fd := range tp.abiertos {
		fds = append(fds, fd)
	}
	slices.Sort(fds)
	return fds
}

// Nombre del recurso abierto en fd
func (t *Tabla) Nombre(pid uint32, fd int) (string, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()

	tp, existe := t.procesos[pid]
	if !existe {
		return "", false
	}
	a, abierto := tp.abiertos[fd]
	return a.nombre, abierto
}
