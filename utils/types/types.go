package types

import "fmt"

// --------------------------------- KERNEL ---------------------------------

// Referencia no propietaria a un hilo. Es lo unico que guardan la cola de
// ready y las colas de espera; el TCB se resuelve siempre contra la tabla de hilos.
type Ref struct {
	PID uint32 `json:"pid"`
	TID uint32 `json:"tid"`
}

func (r Ref) String() string {
	return fmt.Sprintf("(%d:%d)", r.PID, r.TID)
}

type PIDTID = Ref

type ProcessCreateParams struct {
	Prioridad int `json:"prioridad"`
}

type ThreadCreateParams struct {
	Prioridad int `json:"prioridad"`
}

type ExitParams struct {
	Codigo int32 `json:"codigo"`
}

type WaitParams struct {
	PID uint32 `json:"pid"`
	TID uint32 `json:"tid"`
}

type PriorityParams struct {
	Prioridad int `json:"prioridad"`
}

type MutexCreateParams struct {
	// Vacio usa la politica de la configuracion
	Politica string `json:"politica"`
}

type RecursoParams struct {
	ID int `json:"id"`
}

type SemaphoreCreateParams struct {
	Cantidad int `json:"cantidad"`
}

type CondvarWaitParams struct {
	Condvar int `json:"condvar"`
	Mutex   int `json:"mutex"`
}

type DeadlockParams struct {
	Habilitado bool `json:"habilitado"`
}

type OpenParams struct {
	Nombre string `json:"nombre"`
}

type CloseParams struct {
	FD int `json:"fd"`
}

type SleepParams struct {
	Ms int `json:"ms"`
}

// Lo que devuelve TASK_INFO del hilo que la pide. Tiempo en milisegundos desde
// que ejecuto por primera vez.
type TaskInfo struct {
	PID      uint32         `json:"pid"`
	TID      uint32         `json:"tid"`
	Estado   string         `json:"estado"`
	Syscalls map[string]int `json:"syscalls"`
	Tiempo   int64          `json:"tiempo"`
}

// Respuesta generica de las syscalls: el string es el resultado en el formato
// del simulador ("OK", "HILO_BLOQUEADO", ...) y Valor el entero de retorno.
type RespuestaSyscall struct {
	Resultado string `json:"resultado"`
	Valor     int64  `json:"valor"`
}

type EstadoHilo struct {
	PID       uint32 `json:"pid"`
	TID       uint32 `json:"tid"`
	Estado    string `json:"estado"`
	Prioridad int    `json:"prioridad"`
	Stride    uint64 `json:"stride"`
}

type EstadoKernel struct {
	Ejecutando *Ref         `json:"ejecutando"`
	Ready      []Ref        `json:"ready"`
	Dormidos   []Ref        `json:"dormidos"`
	Hilos      []EstadoHilo `json:"hilos"`
}

// --------------------------------- RECURSOS ---------------------------------

type AbrirRecurso struct {
	PID    uint32 `json:"pid"`
	TID    uint32 `json:"tid"`
	Nombre string `json:"nombre"`
}

type RecursoAbierto struct {
	FD int `json:"fd"`
}

type CerrarRecurso struct {
	PID uint32 `json:"pid"`
	FD  int    `json:"fd"`
}
