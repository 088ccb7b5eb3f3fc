// Package nucleo junta la tabla de procesos, el planificador y las primitivas de
// sincronizacion en un unico kernel de un solo procesador.
//
// Todas las operaciones publicas toman la seccion critica del nucleo. Las funciones
// en minuscula asumen que ya esta tomada.
package nucleo

import (
	"errors"
	"fmt"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/sisoputnfrba/tp-golang-stride/kernel/planificador"
	"github.com/sisoputnfrba/tp-golang-stride/kernel/sincro"
	"github.com/sisoputnfrba/tp-golang-stride/kernel/stride"
	"github.com/sisoputnfrba/tp-golang-stride/kernel/utils"
	"github.com/sisoputnfrba/tp-golang-stride/utils/types"
)

var (
	ErrSinHiloEnEjecucion = errors.New("no hay ningun hilo ejecutando")
)

type Nucleo struct {
	mu utils.NucleoMutex

	procesos     *utils.TablaProcesos
	planificador *planificador.Planificador
	ejecutando   *types.Ref

	// Primitivas de cada proceso vivo, por PID
	prims map[uint32]*primitivas

	politica         sincro.Politica
	prioridadDefault int
	recursos         TablaRecursos

	// Hilos en SLEEP, por vencimiento. Los despierta Tick.
	dormidos utils.ColaTemporizadores
	ahora    func() time.Time

	// Avisa al despachador que puede haber un hilo para poner en la CPU
	hayTrabajo *utils.Semaphore

	logger *slog.Logger
}

func Nuevo(cfg utils.Config, recursos TablaRecursos, logger *slog.Logger) (*Nucleo, error) {
	arit, err := stride.Nueva(cfg.StrideBits, cfg.BigStride)
	if err != nil {
		return nil, err
	}
	politica, err := sincro.PoliticaPorNombre(cfg.MutexPolicy)
	if err != nil {
		return nil, err
	}
	if recursos == nil {
		recursos = NuevaTablaLocal()
	}
	prioridad := cfg.DefaultPriority
	if prioridad == 0 {
		prioridad = 16
	}

	n := &Nucleo{
		procesos:         utils.NuevaTablaProcesos(),
		prims:            make(map[uint32]*primitivas),
		politica:         politica,
		prioridadDefault: prioridad,
		recursos:         recursos,
		hayTrabajo:       utils.NewSemaphore(1, 0),
		ahora:            time.Now,
		logger:           logger,
	}
	n.planificador = planificador.Nuevo(arit, n.procesos, logger)
	return n, nil
}

func (n *Nucleo) Planificador() *planificador.Planificador {
	return n.planificador
}

func (n *Nucleo) Aritmetica() stride.Aritmetica {
	return n.planificador.Aritmetica()
}

// Ejecutando devuelve el hilo que tiene la CPU
func (n *Nucleo) Ejecutando() (types.Ref, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.ejecutando == nil {
		return types.Ref{}, false
	}
	return *n.ejecutando, true
}

// Hilo devuelve una copia del TCB, para consultas. La copia no comparte nada con
// el TCB vivo.
func (n *Nucleo) Hilo(ref types.Ref) (utils.TCB, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	tcb, existe := n.procesos.Buscar(ref)
	if !existe {
		return utils.TCB{}, false
	}
	copia := *tcb
	copia.Locks = slices.Clone(tcb.Locks)
	copia.Recursos = slices.Clone(tcb.Recursos)
	copia.Semaforos = maps.Clone(tcb.Semaforos)
	copia.Syscalls = maps.Clone(tcb.Syscalls)
	if tcb.BloqueadoEn != nil {
		b := *tcb.BloqueadoEn
		copia.BloqueadoEn = &b
	}
	if tcb.Pendiente != nil {
		p := *tcb.Pendiente
		copia.Pendiente = &p
	}
	return copia, true
}

func (n *Nucleo) actual() (*utils.TCB, error) {
	if n.ejecutando == nil {
		return nil, ErrSinHiloEnEjecucion
	}
	tcb, existe := n.procesos.Buscar(*n.ejecutando)
	if !existe {
		panic(fmt.Sprintf("nucleo: el hilo en ejecucion %v no esta en la tabla", *n.ejecutando))
	}
	return tcb, nil
}

func (n *Nucleo) prioridad(prioridad int) int {
	if prioridad == 0 {
		return n.prioridadDefault
	}
	return prioridad
}

// ProcessCreate crea un proceso con su hilo main en READY y devuelve el PID
func (n *Nucleo) ProcessCreate(prioridad int) (uint32, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	prioridad = n.prioridad(prioridad)
	pass, err := n.Aritmetica().Pass(prioridad)
	if err != nil {
		return 0, err
	}
	pcb := n.procesos.NuevoProceso()
	n.prims[pcb.PID] = &primitivas{}
	n.logger.Info(fmt.Sprintf("## (%d:0) Se crea el proceso - Estado: NEW", pcb.PID))

	n.encolar(pcb.NuevoHilo(prioridad, pass))
	return pcb.PID, nil
}

// ThreadCreate crea un hilo en el proceso del hilo que ejecuta y devuelve el TID
func (n *Nucleo) ThreadCreate(prioridad int) (uint32, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	tcb, err := n.actual()
	if err != nil {
		return 0, err
	}
	prioridad = n.prioridad(prioridad)
	pass, err := n.Aritmetica().Pass(prioridad)
	if err != nil {
		return 0, err
	}
	pcb, err := n.procesos.Proceso(tcb.PID)
	if err != nil {
		return 0, err
	}
	nuevo := pcb.NuevoHilo(prioridad, pass)
	n.encolar(nuevo)
	return nuevo.TID, nil
}

func (n *Nucleo) encolar(tcb *utils.TCB) {
	tcb.Estado = utils.READY
	n.planificador.AddTask(tcb.Ref())
	n.logger.Info(fmt.Sprintf("## %v Se crea el Hilo - Estado: READY", tcb.Ref()))
	n.hayTrabajo.Signal()
}

// SetPriority cambia la prioridad del hilo que ejecuta y recalcula su pass
func (n *Nucleo) SetPriority(prioridad int) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	tcb, err := n.actual()
	if err != nil {
		return err
	}
	pass, err := n.Aritmetica().Pass(prioridad)
	if err != nil {
		return err
	}
	tcb.Prioridad = prioridad
	tcb.Pass = pass
	n.logger.Debug(fmt.Sprintf("## %v Nueva prioridad: %d - Pass: %d", tcb.Ref(), prioridad, pass))
	return nil
}

// Planificar pone un hilo en la CPU si esta libre. Devuelve el que queda ejecutando.
func (n *Nucleo) Planificar() (types.Ref, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.planificar()
}

func (n *Nucleo) planificar() (types.Ref, bool) {
	for n.ejecutando == nil {
		ref, hay := n.planificador.Siguiente()
		if !hay {
			return types.Ref{}, false
		}
		n.ejecutando = &ref
		tcb, _ := n.procesos.Buscar(ref)
		n.logger.Info(fmt.Sprintf("## %v Pasa a EXEC - Stride: %d", ref, tcb.Stride))
		if tcb.PrimeraEjecucion.IsZero() {
			tcb.PrimeraEjecucion = n.ahora()
		}

		if tcb.Pendiente != nil {
			// Lo desperto un unlock que no le paso el lock: lo vuelve a pedir
			pendiente := *tcb.Pendiente
			tcb.Pendiente = nil
			n.reintentar(tcb, pendiente)
		}
	}
	return *n.ejecutando, true
}

func (n *Nucleo) reintentar(tcb *utils.TCB, b utils.Bloqueo) {
	prims := n.prims[tcb.PID]
	if prims == nil || b.Motivo != utils.MUTEX {
		return
	}
	m, err := prims.mutex(b.ID)
	if err != nil {
		return
	}
	if m.Lock(tcb.Ref(), hilos{n}) {
		n.logger.Info(fmt.Sprintf("## %v Toma el MUTEX %d al reintentar", tcb.Ref(), b.ID))
	}
}

// Yield devuelve la CPU voluntariamente y planifica el siguiente
func (n *Nucleo) Yield() (types.Ref, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	tcb, err := n.actual()
	if err != nil {
		return types.Ref{}, err
	}
	n.desalojar(tcb)
	ref, _ := n.planificar()
	return ref, nil
}

// Tick es la interrupcion de reloj: despierta a los dormidos que vencieron,
// desaloja al que ejecuta, si hay, y planifica
func (n *Nucleo) Tick() (types.Ref, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	n.despertarDormidos()

	if tcb, err := n.actual(); err == nil {
		n.logger.Info(fmt.Sprintf("## %v - Desalojado por fin de Quantum", tcb.Ref()))
		n.desalojar(tcb)
	}
	return n.planificar()
}

func (n *Nucleo) desalojar(tcb *utils.TCB) {
	n.ejecutando = nil
	tcb.Estado = utils.READY
	n.planificador.AddTask(tcb.Ref())
}

// Estado es una foto del procesador, la cola de ready y todos los hilos
func (n *Nucleo) Estado() types.EstadoKernel {
	n.mu.Lock()
	defer n.mu.Unlock()

	estado := types.EstadoKernel{Ready: n.planificador.Refs(), Dormidos: n.dormidos.Refs()}
	if n.ejecutando != nil {
		ref := *n.ejecutando
		estado.Ejecutando = &ref
	}
	for _, pid := range n.procesos.PIDs() {
		pcb, _ := n.procesos.Proceso(pid)
		for _, tid := range pcb.TIDs() {
			tcb := pcb.Hilos[tid]
			estado.Hilos = append(estado.Hilos, types.EstadoHilo{
				PID:       tcb.PID,
				TID:       tcb.TID,
				Estado:    tcb.Estado.String(),
				Prioridad: tcb.Prioridad,
				Stride:    tcb.Stride,
			})
		}
	}
	return estado
}

// hilos es la vista del nucleo que usan las primitivas. Se llama siempre con la
// seccion critica del nucleo tomada.
type hilos struct {
	n *Nucleo
}

func (h hilos) tcb(ref types.Ref) *utils.TCB {
	tcb, existe := h.n.procesos.Buscar(ref)
	if !existe {
		panic(fmt.Sprintf("nucleo: la primitiva referencia un hilo inexistente %v", ref))
	}
	return tcb
}

func (h hilos) Bloquear(ref types.Ref, b utils.Bloqueo) {
	tcb := h.tcb(ref)
	tcb.Estado = utils.BLOCKED
	tcb.BloqueadoEn = &b
	if h.n.ejecutando != nil && *h.n.ejecutando == ref {
		h.n.ejecutando = nil
	}
	h.n.logger.Info(fmt.Sprintf("## %v - Bloqueado por: %s", ref, b.Motivo))
}

func (h hilos) Despertar(ref types.Ref) {
	tcb := h.tcb(ref)
	motivo := "?"
	if tcb.BloqueadoEn != nil {
		motivo = tcb.BloqueadoEn.Motivo.String()
	}
	tcb.BloqueadoEn = nil
	tcb.Estado = utils.READY
	h.n.planificador.AddTask(ref)
	h.n.logger.Info(fmt.Sprintf("## %v - Desbloqueado por: %s", ref, motivo))
	h.n.hayTrabajo.Signal()
}

func (h hilos) Reintentar(ref types.Ref, b utils.Bloqueo) {
	h.tcb(ref).Pendiente = &b
	h.Despertar(ref)
}

func (h hilos) TomarLock(ref types.Ref, id int) {
	tcb := h.tcb(ref)
	tcb.Locks = append(tcb.Locks, id)
}

func (h hilos) SoltarLock(ref types.Ref, id int) bool {
	return h.tcb(ref).SoltarLock(id)
}

func (h hilos) AsignarSemaforo(ref types.Ref, id int, delta int) {
	tcb := h.tcb(ref)
	if tcb.Semaforos == nil {
		tcb.Semaforos = make(map[int]int)
	}
	if cantidad := tcb.Semaforos[id] + delta; cantidad > 0 {
		tcb.Semaforos[id] = cantidad
	} else {
		delete(tcb.Semaforos, id)
	}
}
