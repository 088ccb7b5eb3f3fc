package utils

import (
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/sisoputnfrba/tp-golang-stride/utils/generadores"
	"github.com/sisoputnfrba/tp-golang-stride/utils/types"
)

var (
	ErrProcesoInexistente = errors.New("no existe el proceso")
	ErrHiloInexistente    = errors.New("no existe el hilo")
)

// Estado de un hilo
type Estado int

const ( // Esto funciona mas o menos como el enum de c
	READY      Estado = iota // Vale 0
	RUNNING                  // Vale 1
	BLOCKED                  // Vale 2
	TERMINATED               // Vale 3
)

func (e Estado) String() string {
	switch e {
	case READY:
		return "READY"
	case RUNNING:
		return "RUNNING"
	case BLOCKED:
		return "BLOCKED"
	case TERMINATED:
		return "TERMINATED"
	}
	return fmt.Sprintf("Estado(%d)", int(e))
}

// Estructuras para manejar los bloqueados
type Motivo int

const (
	MUTEX Motivo = iota
	SEMAFORO
	CONDVAR
	SLEEP // en la cola de temporizadores del nucleo, sin primitiva
)

func (m Motivo) String() string {
	switch m {
	case MUTEX:
		return "MUTEX"
	case SEMAFORO:
		return "SEMAFORO"
	case CONDVAR:
		return "CONDVAR"
	case SLEEP:
		return "SLEEP"
	}
	return fmt.Sprintf("Motivo(%d)", int(m))
}

// Primitiva de sincronizacion de un proceso, identificada por su indice en la tabla
// correspondiente
type Bloqueo struct {
	Motivo Motivo
	ID     int
}

func (b Bloqueo) String() string {
	return fmt.Sprintf("%s %d", b.Motivo, b.ID)
}

// Contexto de ejecucion guardado al sacar al hilo de la CPU
type Contexto struct {
	PC uint32 // Program Counter (Proxima instruccion a ejecutar)
	AX uint32
	BX uint32
	CX uint32
	DX uint32
	EX uint32
	FX uint32
	GX uint32
	HX uint32
}

type TCB struct {
	TID       uint32
	PID       uint32 // PID del proceso al que pertenece
	Estado    Estado
	Prioridad int
	Stride    uint64
	Pass      uint64 // BigStride / Prioridad, se calcula al asignar la prioridad
	Contexto  Contexto

	// Ids de los mutex que el hilo tiene tomados
	Locks []int
	// Descriptores abiertos en la tabla de recursos
	Recursos []int

	// Primitiva en cuya cola de espera esta encolado. Un hilo espera en una sola a la vez.
	BloqueadoEn *Bloqueo
	// Lock que tiene que reintentar cuando vuelva a ejecutar (politica LIBERAR)
	Pendiente *Bloqueo

	// Unidades de cada semaforo que el hilo obtuvo y todavia no devolvio
	Semaforos map[int]int

	CodigoSalida int32

	// Para TASK_INFO: llamadas por syscall y cuando le toco la CPU por primera vez
	Syscalls         map[string]int
	PrimeraEjecucion time.Time
}

func (t *TCB) Ref() types.Ref {
	return types.Ref{PID: t.PID, TID: t.TID}
}

func (t *TCB) TieneLock(id int) bool {
	return slices.Contains(t.Locks, id)
}

// Devuelve false si el hilo no tenia el lock
func (t *TCB) SoltarLock(id int) bool {
	i := slices.Index(t.Locks, id)
	if i < 0 {
		return false
	}
	t.Locks = slices.Delete(t.Locks, i, i+1)
	return true
}

type Proceso struct {
	PID          uint32
	Hilos        map[uint32]*TCB
	Terminado    bool
	CodigoSalida int32

	tids generadores.GeneradorTID
}

// Crea el TCB, lo registra en la tabla de hilos y lo devuelve. El hilo nace en READY
// pero no se encola: eso lo hace quien lo crea.
func (p *Proceso) NuevoHilo(prioridad int, pass uint64) *TCB {
	tcb := &TCB{
		TID:       p.tids.Generar_TID(),
		PID:       p.PID,
		Estado:    READY,
		Prioridad: prioridad,
		Pass:      pass,
		Semaforos: make(map[int]int),
		Syscalls:  make(map[string]int),
	}
	p.Hilos[tcb.TID] = tcb
	return tcb
}

func (p *Proceso) Main() *TCB {
	return p.Hilos[0]
}

// TIDs ordenados, para recorrer la tabla siempre en el mismo orden
func (p *Proceso) TIDs() []uint32 {
	tids := make([]uint32, 0, len(p.Hilos))
	for tid := range p.Hilos {
		tids = append(tids, tid)
	}
	sort.Slice(tids, func(i, j int) bool { return tids[i] < tids[j] })
	return tids
}

// Tabla de procesos: es la unica duenia de los TCBs. Todo lo demas guarda types.Ref.
type TablaProcesos struct {
	procesos map[uint32]*Proceso
	pids     generadores.GeneradorPID
}

func NuevaTablaProcesos() *TablaProcesos {
	return &TablaProcesos{procesos: make(map[uint32]*Proceso)}
}

func (t *TablaProcesos) NuevoProceso() *Proceso {
	pcb := &Proceso{
		PID:   t.pids.Generar_PID(),
		Hilos: make(map[uint32]*TCB),
	}
	t.procesos[pcb.PID] = pcb
	return pcb
}

// Función para obtener el PCB a partir de un PID
func (t *TablaProcesos) Proceso(pid uint32) (*Proceso, error) {
	pcb, existe := t.procesos[pid]
	if !existe {
		return nil, fmt.Errorf("pid %d: %w", pid, ErrProcesoInexistente)
	}
	return pcb, nil
}

// Resuelve una referencia al TCB duenio
func (t *TablaProcesos) Buscar(ref types.Ref) (*TCB, bool) {
	pcb, existe := t.procesos[ref.PID]
	if !existe {
		return nil, false
	}
	tcb, existe := pcb.Hilos[ref.TID]
	return tcb, existe
}

func (t *TablaProcesos) Eliminar(pid uint32) {
	delete(t.procesos, pid)
}

func (t *TablaProcesos) PIDs() []uint32 {
	pids := make([]uint32, 0, len(t.procesos))
	for pid := range t.procesos {
		pids = append(pids, pid)
	}
	sort.Slice(pids, func(i, j int) bool { return pids[i] < pids[j] })
	return pids
}
