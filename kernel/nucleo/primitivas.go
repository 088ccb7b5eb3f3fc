package nucleo

import (
	"errors"
	"fmt"

	"github.com/sisoputnfrba/tp-golang-stride/kernel/sincro"
	"github.com/sisoputnfrba/tp-golang-stride/kernel/utils"
	"github.com/sisoputnfrba/tp-golang-stride/utils/types"
)

var (
	ErrMutexInexistente    = errors.New("no existe el mutex")
	ErrSemaforoInexistente = errors.New("no existe el semaforo")
	ErrCondvarInexistente  = errors.New("no existe la condvar")
)

// Tablas de primitivas de un proceso. El id de cada una es su posicion.
type primitivas struct {
	mutexs    []*sincro.Mutex
	semaforos []*sincro.Semaforo
	condvars  []*sincro.Condvar
	deteccion bool
}

func (p *primitivas) mutex(id int) (*sincro.Mutex, error) {
	if id < 0 || id >= len(p.mutexs) {
		return nil, fmt.Errorf("mutex %d: %w", id, ErrMutexInexistente)
	}
	return p.mutexs[id], nil
}

func (p *primitivas) semaforo(id int) (*sincro.Semaforo, error) {
	if id < 0 || id >= len(p.semaforos) {
		return nil, fmt.Errorf("semaforo %d: %w", id, ErrSemaforoInexistente)
	}
	return p.semaforos[id], nil
}

func (p *primitivas) condvar(id int) (*sincro.Condvar, error) {
	if id < 0 || id >= len(p.condvars) {
		return nil, fmt.Errorf("condvar %d: %w", id, ErrCondvarInexistente)
	}
	return p.condvars[id], nil
}

// Saca al hilo de la cola de la primitiva en la que espera
func (p *primitivas) quitar(ref types.Ref, b utils.Bloqueo) bool {
	switch b.Motivo {
	case utils.MUTEX:
		if m, err := p.mutex(b.ID); err == nil {
			return m.Quitar(ref)
		}
	case utils.SEMAFORO:
		if s, err := p.semaforo(b.ID); err == nil {
			return s.Quitar(ref)
		}
	case utils.CONDVAR:
		if c, err := p.condvar(b.ID); err == nil {
			return c.Quitar(ref)
		}
	}
	return false
}

// Hilo en ejecucion y las primitivas de su proceso
func (n *Nucleo) llamador() (*utils.TCB, *primitivas, error) {
	tcb, err := n.actual()
	if err != nil {
		return nil, nil, err
	}
	prims, existe := n.prims[tcb.PID]
	if !existe {
		panic(fmt.Sprintf("nucleo: el proceso %d ejecuta sin tabla de primitivas", tcb.PID))
	}
	return tcb, prims, nil
}

// MutexCreate crea un mutex en el proceso del hilo que ejecuta. Con politica vacia
// usa la de la configuracion.
func (n *Nucleo) MutexCreate(politica string) (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	tcb, prims, err := n.llamador()
	if err != nil {
		return 0, err
	}
	pol := n.politica
	if politica != "" {
		if pol, err = sincro.PoliticaPorNombre(politica); err != nil {
			return 0, err
		}
	}
	id := len(prims.mutexs)
	prims.mutexs = append(prims.mutexs, sincro.NuevoMutex(id, pol))
	n.logger.Info(fmt.Sprintf("## %v Crea el MUTEX %d - Politica: %s", tcb.Ref(), id, pol.Nombre()))
	return id, nil
}

// Mutex devuelve el mutex de un proceso, para inspeccionarlo
func (n *Nucleo) Mutex(pid uint32, id int) (*sincro.Mutex, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	prims, existe := n.prims[pid]
	if !existe {
		return nil, fmt.Errorf("pid %d: %w", pid, utils.ErrProcesoInexistente)
	}
	return prims.mutex(id)
}

// MutexLock devuelve true si el hilo tomo el lock. Si queda bloqueado se planifica
// otro hilo y devuelve false.
func (n *Nucleo) MutexLock(id int) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	tcb, prims, err := n.llamador()
	if err != nil {
		return false, err
	}
	m, err := prims.mutex(id)
	if err != nil {
		return false, err
	}
	recurso := utils.Bloqueo{Motivo: utils.MUTEX, ID: id}
	if prims.deteccion && m.Locked() && !n.seguro(tcb, prims, recurso) {
		return false, fmt.Errorf("%v pidiendo %v: %w", tcb.Ref(), recurso, sincro.ErrInterbloqueo)
	}
	if m.Lock(tcb.Ref(), hilos{n}) {
		n.logger.Debug(fmt.Sprintf("## %v Toma el MUTEX %d", tcb.Ref(), id))
		return true, nil
	}
	n.planificar()
	return false, nil
}

// MutexUnlock entra en panico si el hilo que ejecuta no tiene el mutex
func (n *Nucleo) MutexUnlock(id int) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	tcb, prims, err := n.llamador()
	if err != nil {
		return err
	}
	m, err := prims.mutex(id)
	if err != nil {
		return err
	}
	m.Unlock(tcb.Ref(), hilos{n})
	n.logger.Debug(fmt.Sprintf("## %v Libera el MUTEX %d", tcb.Ref(), id))
	return nil
}

func (n *Nucleo) SemaphoreCreate(cantidad int) (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	tcb, prims, err := n.llamador()
	if err != nil {
		return 0, err
	}
	id := len(prims.semaforos)
	prims.semaforos = append(prims.semaforos, sincro.NuevoSemaforo(id, cantidad))
	n.logger.Info(fmt.Sprintf("## %v Crea el SEMAFORO %d - Cantidad: %d", tcb.Ref(), id, cantidad))
	return id, nil
}

func (n *Nucleo) SemaphoreUp(id int) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	tcb, prims, err := n.llamador()
	if err != nil {
		return err
	}
	s, err := prims.semaforo(id)
	if err != nil {
		return err
	}
	s.Up(tcb.Ref(), hilos{n})
	return nil
}

// SemaphoreDown devuelve true si obtuvo la unidad sin bloquearse
func (n *Nucleo) SemaphoreDown(id int) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	tcb, prims, err := n.llamador()
	if err != nil {
		return false, err
	}
	s, err := prims.semaforo(id)
	if err != nil {
		return false, err
	}
	recurso := utils.Bloqueo{Motivo: utils.SEMAFORO, ID: id}
	if prims.deteccion && s.Disponibles() == 0 && !n.seguro(tcb, prims, recurso) {
		return false, fmt.Errorf("%v pidiendo %v: %w", tcb.Ref(), recurso, sincro.ErrInterbloqueo)
	}
	if s.Down(tcb.Ref(), hilos{n}) {
		return true, nil
	}
	n.planificar()
	return false, nil
}

func (n *Nucleo) CondvarCreate() (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	tcb, prims, err := n.llamador()
	if err != nil {
		return 0, err
	}
	id := len(prims.condvars)
	prims.condvars = append(prims.condvars, sincro.NuevaCondvar(id))
	n.logger.Info(fmt.Sprintf("## %v Crea la CONDVAR %d", tcb.Ref(), id))
	return id, nil
}

func (n *Nucleo) CondvarSignal(id int) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	_, prims, err := n.llamador()
	if err != nil {
		return err
	}
	c, err := prims.condvar(id)
	if err != nil {
		return err
	}
	c.Signal(hilos{n})
	return nil
}

// CondvarWait suelta el mutex, bloquea al hilo y planifica otro
func (n *Nucleo) CondvarWait(condvar, mutex int) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	tcb, prims, err := n.llamador()
	if err != nil {
		return err
	}
	c, err := prims.condvar(condvar)
	if err != nil {
		return err
	}
	m, err := prims.mutex(mutex)
	if err != nil {
		return err
	}
	c.Wait(tcb.Ref(), m, hilos{n})
	n.planificar()
	return nil
}

// EnableDeadlockDetect prende o apaga la deteccion para el proceso del hilo que ejecuta
func (n *Nucleo) EnableDeadlockDetect(habilitado bool) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	_, prims, err := n.llamador()
	if err != nil {
		return err
	}
	prims.deteccion = habilitado
	return nil
}

// seguro arma el estado del proceso como si tcb ya estuviera esperando el
// recurso pedido y corre el algoritmo del banquero sobre el.
func (n *Nucleo) seguro(tcb *utils.TCB, prims *primitivas, pedido utils.Bloqueo) bool {
	disponible := make(map[utils.Bloqueo]int)
	for id, m := range prims.mutexs {
		libre := 0
		if !m.Locked() {
			libre = 1
		}
		disponible[utils.Bloqueo{Motivo: utils.MUTEX, ID: id}] = libre
	}
	for id, s := range prims.semaforos {
		disponible[utils.Bloqueo{Motivo: utils.SEMAFORO, ID: id}] = s.Disponibles()
	}

	pcb, err := n.procesos.Proceso(tcb.PID)
	if err != nil {
		return true
	}
	demandas := make(map[types.Ref]sincro.Demanda)
	for _, hilo := range pcb.Hilos {
		if hilo.Estado == utils.TERMINATED {
			continue
		}
		d := sincro.Demanda{
			Asignado:  make(map[utils.Bloqueo]int),
			Necesidad: make(map[utils.Bloqueo]int),
		}
		for _, id := range hilo.Locks {
			d.Asignado[utils.Bloqueo{Motivo: utils.MUTEX, ID: id}]++
		}
		for id, cantidad := range hilo.Semaforos {
			d.Asignado[utils.Bloqueo{Motivo: utils.SEMAFORO, ID: id}] += cantidad
		}
		// Solo mutex y semaforos son recursos: una condvar o un sleep no se piden
		if b := hilo.BloqueadoEn; b != nil && (b.Motivo == utils.MUTEX || b.Motivo == utils.SEMAFORO) {
			d.Necesidad[*b]++
		}
		if b := hilo.Pendiente; b != nil {
			d.Necesidad[*b]++
		}
		demandas[hilo.Ref()] = d
	}
	if d, existe := demandas[tcb.Ref()]; existe {
		d.Necesidad[pedido]++
	}
	return sincro.Seguro(disponible, demandas)
}
