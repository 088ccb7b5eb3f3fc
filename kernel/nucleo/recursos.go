package nucleo

import (
	"errors"
	"fmt"
	"slices"

	"github.com/sisoputnfrba/tp-golang-stride/utils/tablas"
	"github.com/sisoputnfrba/tp-golang-stride/utils/types"
)

// El descriptor no esta abierto (o ya se cerro)
var ErrRecursoInexistente = tablas.ErrRecursoInexistente

// TablaRecursos es la tabla de descriptores abiertos. Puede vivir en otro modulo
// (client.TablaRemota) o en memoria (TablaLocal).
type TablaRecursos interface {
	Abrir(ref types.Ref, nombre string) (int, error)
	// Cerrar devuelve ErrRecursoInexistente, o un error que lo envuelve, si el
	// descriptor no estaba abierto.
	Cerrar(pid uint32, fd int) error
	// CerrarProceso cierra lo que le haya quedado abierto al proceso
	CerrarProceso(pid uint32) error
}

// TablaLocal guarda los descriptores en memoria, sin limite por proceso
type TablaLocal = tablas.Tabla

func NuevaTablaLocal() *TablaLocal {
	return tablas.Nueva(0)
}

// Open abre un recurso a nombre del hilo que ejecuta y devuelve el descriptor
func (n *Nucleo) Open(nombre string) (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	tcb, err := n.actual()
	if err != nil {
		return 0, err
	}
	fd, err := n.recursos.Abrir(tcb.Ref(), nombre)
	if err != nil {
		return 0, err
	}
	tcb.Recursos = append(tcb.Recursos, fd)
	n.logger.Info(fmt.Sprintf("## %v Abre %s - FD: %d", tcb.Ref(), nombre, fd))
	return fd, nil
}

func (n *Nucleo) Close(fd int) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	tcb, err := n.actual()
	if err != nil {
		return err
	}
	i := slices.Index(tcb.Recursos, fd)
	if i < 0 {
		return fmt.Errorf("%v fd %d: %w", tcb.Ref(), fd, ErrRecursoInexistente)
	}
	if err := n.recursos.Cerrar(tcb.PID, fd); err != nil && !errors.Is(err, ErrRecursoInexistente) {
		return err
	}
	tcb.Recursos = slices.Delete(tcb.Recursos, i, i+1)
	return nil
}
