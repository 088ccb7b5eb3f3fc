package nucleo

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/sisoputnfrba/tp-golang-stride/kernel/utils"
)

var (
	// Un hilo que termina con un mutex tomado es un error de logica del programa
	ErrLockRetenido   = errors.New("el hilo termina con locks tomados")
	ErrHiloVivo       = errors.New("el hilo todavia no termino")
	ErrProcesoVivo    = errors.New("el proceso todavia no termino")
	ErrEsperaASiMismo = errors.New("un hilo no puede esperarse a si mismo")
)

// ExitCurrentAndTeardown termina el hilo que ejecuta. Si es el main (TID 0) termina
// el proceso entero. Despues planifica el siguiente hilo.
func (n *Nucleo) ExitCurrentAndTeardown(codigo int32) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	tcb, err := n.actual()
	if err != nil {
		return err
	}
	pcb, err := n.procesos.Proceso(tcb.PID)
	if err != nil {
		return err
	}

	if tcb.TID == 0 {
		n.teardown(pcb, codigo)
	} else {
		comprobarLocks(tcb)
		n.devolverSemaforos(tcb)
		n.finalizarHilo(tcb, codigo)
	}
	n.planificar()
	return nil
}

// FinalizarProceso termina un proceso desde afuera. Sobre un proceso ya terminado
// no hace nada.
func (n *Nucleo) FinalizarProceso(pid uint32, codigo int32) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	pcb, err := n.procesos.Proceso(pid)
	if err != nil {
		return err
	}
	n.teardown(pcb, codigo)
	n.planificar()
	return nil
}

// teardown libera todos los hilos del proceso. Primero se verifica que nadie tenga
// locks, asi un panico deja la tabla como estaba.
func (n *Nucleo) teardown(pcb *utils.Proceso, codigo int32) {
	if pcb.Terminado {
		return
	}
	tids := pcb.TIDs()
	for _, tid := range tids {
		comprobarLocks(pcb.Hilos[tid])
	}

	for _, tid := range tids {
		n.finalizarHilo(pcb.Hilos[tid], codigo)
	}
	if err := n.recursos.CerrarProceso(pcb.PID); err != nil {
		n.logger.Warn(fmt.Sprintf("## Error al cerrar los recursos del proceso %d: %s", pcb.PID, err.Error()))
	}

	// Ya no queda ninguna referencia a los hilos fuera de la tabla
	for _, tid := range tids {
		delete(pcb.Hilos, tid)
	}
	delete(n.prims, pcb.PID)
	pcb.Terminado = true
	pcb.CodigoSalida = codigo
	n.logger.Info(fmt.Sprintf("## Finaliza el proceso %d - Codigo: %d", pcb.PID, codigo))
}

func comprobarLocks(tcb *utils.TCB) {
	if len(tcb.Locks) > 0 {
		panic(fmt.Errorf("%w: %v tiene %v", ErrLockRetenido, tcb.Ref(), tcb.Locks))
	}
}

// Un hilo que termina solo le devuelve a los demas las unidades de semaforo que
// todavia tenia. En el teardown del proceso no hace falta: nadie queda esperando.
func (n *Nucleo) devolverSemaforos(tcb *utils.TCB) {
	prims, existe := n.prims[tcb.PID]
	if !existe {
		return
	}
	for _, id := range slices.Sorted(maps.Keys(tcb.Semaforos)) {
		s, err := prims.semaforo(id)
		if err != nil {
			continue
		}
		s.Devolver(tcb.Semaforos[id], hilos{n})
		n.logger.Debug(fmt.Sprintf("## %v devuelve %d unidades del semaforo %d", tcb.Ref(), tcb.Semaforos[id], id))
	}
}

// finalizarHilo saca al hilo de la cola de ready y de cualquier cola de espera,
// cierra sus recursos y lo deja TERMINATED en la tabla.
func (n *Nucleo) finalizarHilo(tcb *utils.TCB, codigo int32) {
	if tcb.Estado == utils.TERMINATED {
		return
	}
	ref := tcb.Ref()

	n.planificador.Quitar(ref)
	if b := tcb.BloqueadoEn; b != nil {
		if b.Motivo == utils.SLEEP {
			n.dormidos.Quitar(ref)
		} else if prims, existe := n.prims[tcb.PID]; existe {
			prims.quitar(ref, *b)
		}
		tcb.BloqueadoEn = nil
	}
	tcb.Pendiente = nil
	clear(tcb.Semaforos)

	for _, fd := range tcb.Recursos {
		if err := n.recursos.Cerrar(tcb.PID, fd); err != nil {
			n.logger.Warn(fmt.Sprintf("## %v Error al cerrar FD %d: %s", ref, fd, err.Error()))
		}
	}
	tcb.Recursos = nil

	tcb.Estado = utils.TERMINATED
	tcb.CodigoSalida = codigo
	if n.ejecutando != nil && *n.ejecutando == ref {
		n.ejecutando = nil
	}
	n.logger.Info(fmt.Sprintf("## %v Finaliza el hilo", ref))
}

// WaitTid devuelve el codigo de salida de un hilo terminado del mismo proceso y
// lo borra de la tabla.
func (n *Nucleo) WaitTid(tid uint32) (int32, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	tcb, err := n.actual()
	if err != nil {
		return 0, err
	}
	if tcb.TID == tid {
		return 0, ErrEsperaASiMismo
	}
	pcb, err := n.procesos.Proceso(tcb.PID)
	if err != nil {
		return 0, err
	}
	objetivo, existe := pcb.Hilos[tid]
	if !existe {
		return 0, fmt.Errorf("tid %d: %w", tid, utils.ErrHiloInexistente)
	}
	if objetivo.Estado != utils.TERMINATED {
		return 0, fmt.Errorf("tid %d: %w", tid, ErrHiloVivo)
	}
	delete(pcb.Hilos, tid)
	return objetivo.CodigoSalida, nil
}

// Reap devuelve el codigo de salida de un proceso terminado y lo saca de la tabla
func (n *Nucleo) Reap(pid uint32) (int32, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	pcb, err := n.procesos.Proceso(pid)
	if err != nil {
		return 0, err
	}
	if !pcb.Terminado {
		return 0, fmt.Errorf("pid %d: %w", pid, ErrProcesoVivo)
	}
	n.procesos.Eliminar(pid)
	return pcb.CodigoSalida, nil
}
