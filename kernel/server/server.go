package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sisoputnfrba/tp-golang-stride/kernel/nucleo"
	"github.com/sisoputnfrba/tp-golang-stride/kernel/sincro"
	"github.com/sisoputnfrba/tp-golang-stride/kernel/stride"
	"github.com/sisoputnfrba/tp-golang-stride/kernel/utils"
	"github.com/sisoputnfrba/tp-golang-stride/utils/conexiones"
	"github.com/sisoputnfrba/tp-golang-stride/utils/tablas"
	"github.com/sisoputnfrba/tp-golang-stride/utils/types"
)

// Valores de retorno que ve el proceso
const (
	VALOR_ERROR        = -1
	VALOR_HILO_VIVO    = -2
	VALOR_INTERBLOQUEO = -0xDEAD
)

func Iniciar_kernel(ctx context.Context, n *nucleo.Nucleo, logger *slog.Logger) error {
	return conexiones.LevantarServidor(ctx, strconv.Itoa(utils.Configs.Port), Rutas(n, logger), logger)
}

func Rutas(n *nucleo.Nucleo, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Procesos e hilos
	mux.HandleFunc("POST /PROCESS_CREATE", PROCESS_CREATE(n, logger))
	mux.HandleFunc("POST /PROCESS_EXIT", EXIT(n, logger, "PROCESS_EXIT"))
	mux.HandleFunc("POST /THREAD_CREATE", THREAD_CREATE(n, logger))
	mux.HandleFunc("POST /THREAD_EXIT", EXIT(n, logger, "THREAD_EXIT"))
	mux.HandleFunc("POST /WAITPID", WAITPID(n, logger))
	mux.HandleFunc("POST /WAITTID", WAITTID(n, logger))
	mux.HandleFunc("POST /SET_PRIORITY", SET_PRIORITY(n, logger))
	mux.HandleFunc("POST /YIELD", YIELD(n, logger))
	mux.HandleFunc("POST /SCHEDULE", SCHEDULE(n, logger))
	mux.HandleFunc("POST /SLEEP", SLEEP(n, logger))
	mux.HandleFunc("POST /TASK_INFO", TASK_INFO(n, logger))

	// Sincronizacion
	mux.HandleFunc("POST /MUTEX_CREATE", MUTEX_CREATE(n, logger))
	mux.HandleFunc("POST /MUTEX_LOCK", MUTEX_LOCK(n, logger))
	mux.HandleFunc("POST /MUTEX_UNLOCK", MUTEX_UNLOCK(n, logger))
	mux.HandleFunc("POST /SEMAPHORE_CREATE", SEMAPHORE_CREATE(n, logger))
	mux.HandleFunc("POST /SEMAPHORE_UP", SEMAPHORE_UP(n, logger))
	mux.HandleFunc("POST /SEMAPHORE_DOWN", SEMAPHORE_DOWN(n, logger))
	mux.HandleFunc("POST /CONDVAR_CREATE", CONDVAR_CREATE(n, logger))
	mux.HandleFunc("POST /CONDVAR_SIGNAL", CONDVAR_SIGNAL(n, logger))
	mux.HandleFunc("POST /CONDVAR_WAIT", CONDVAR_WAIT(n, logger))
	mux.HandleFunc("POST /ENABLE_DEADLOCK_DETECT", ENABLE_DEADLOCK_DETECT(n, logger))

	// Recursos
	mux.HandleFunc("POST /OPEN", OPEN(n, logger))
	mux.HandleFunc("POST /CLOSE", CLOSE(n, logger))

	mux.HandleFunc("GET /ESTADO", ESTADO(n, logger))

	return recuperar(mux, logger)
}

// Un panico del kernel aborta solo la syscall que lo produjo
func recuperar(next http.Handler, logger *slog.Logger) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				logger.Error(fmt.Sprintf("## KERNEL PANIC en %s: %v", r.URL.Path, p))
				responder(w, http.StatusInternalServerError, "KERNEL_PANIC", VALOR_ERROR)
			}
		}()
		next.ServeHTTP(w, r)
	})
}

func responder(w http.ResponseWriter, status int, resultado string, valor int64) {
	respuesta, err := json.Marshal(types.RespuestaSyscall{Resultado: resultado, Valor: valor})
	if err != nil {
		http.Error(w, "Error al codificar mensaje como JSON", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(respuesta)
}

// Traduce los errores del nucleo a la respuesta de la syscall
func responderError(w http.ResponseWriter, err error, logger *slog.Logger) {
	logger.Warn(fmt.Sprintf("## Syscall rechazada: %s", err.Error()))
	switch {
	case errors.Is(err, sincro.ErrInterbloqueo):
		responder(w, http.StatusConflict, "INTERBLOQUEO", VALOR_INTERBLOQUEO)
	case errors.Is(err, nucleo.ErrHiloVivo), errors.Is(err, nucleo.ErrProcesoVivo):
		responder(w, http.StatusConflict, "TODAVIA_EJECUTA", VALOR_HILO_VIVO)
	case errors.Is(err, nucleo.ErrSinHiloEnEjecucion):
		responder(w, http.StatusConflict, "SIN_HILO_EN_EJECUCION", VALOR_ERROR)
	case errors.Is(err, tablas.ErrSinEspacio):
		responder(w, http.StatusInsufficientStorage, "SIN_ESPACIO", VALOR_ERROR)
	case errors.Is(err, stride.ErrPrioridadInvalida), errors.Is(err, nucleo.ErrEsperaASiMismo),
		errors.Is(err, nucleo.ErrTiempoInvalido):
		responder(w, http.StatusBadRequest, "PARAMETRO_INVALIDO", VALOR_ERROR)
	case errors.Is(err, utils.ErrProcesoInexistente), errors.Is(err, utils.ErrHiloInexistente),
		errors.Is(err, nucleo.ErrMutexInexistente), errors.Is(err, nucleo.ErrSemaforoInexistente),
		errors.Is(err, nucleo.ErrCondvarInexistente), errors.Is(err, nucleo.ErrRecursoInexistente):
		responder(w, http.StatusNotFound, "NO_EXISTE", VALOR_ERROR)
	default:
		responder(w, http.StatusInternalServerError, "ERROR", VALOR_ERROR)
	}
}

func decodificar[T any](w http.ResponseWriter, r *http.Request, logger *slog.Logger) (T, bool) {
	var dato T
	if err := json.NewDecoder(r.Body).Decode(&dato); err != nil {
		logger.Error(fmt.Sprintf("Error al decodificar mensaje: %s", err.Error()))
		http.Error(w, "Error al decodificar mensaje", http.StatusBadRequest)
		return dato, false
	}
	return dato, true
}

// Ademas de loguear, la cuenta para TASK_INFO del hilo que la pide
func loguearSyscall(n *nucleo.Nucleo, logger *slog.Logger, nombre string) {
	if ref, hay := n.ContarSyscall(nombre); hay {
		logger.Info(fmt.Sprintf("## %v - Solicitó syscall: %s", ref, nombre))
		return
	}
	logger.Info(fmt.Sprintf("## Solicitud de syscall %s sin hilo en ejecucion", nombre))
}

// Syscalls referidas a procesos e hilos

func PROCESS_CREATE(n *nucleo.Nucleo, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loguearSyscall(n, logger, "PROCESS_CREATE")
		params, ok := decodificar[types.ProcessCreateParams](w, r, logger)
		if !ok {
			return
		}
		pid, err := n.ProcessCreate(params.Prioridad)
		if err != nil {
			responderError(w, err, logger)
			return
		}
		responder(w, http.StatusOK, "OK", int64(pid))
	}
}

func THREAD_CREATE(n *nucleo.Nucleo, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loguearSyscall(n, logger, "THREAD_CREATE")
		params, ok := decodificar[types.ThreadCreateParams](w, r, logger)
		if !ok {
			return
		}
		tid, err := n.ThreadCreate(params.Prioridad)
		if err != nil {
			responderError(w, err, logger)
			return
		}
		responder(w, http.StatusOK, "OK", int64(tid))
	}
}

// THREAD_EXIT y PROCESS_EXIT hacen lo mismo: si el que sale es el main, termina el proceso
func EXIT(n *nucleo.Nucleo, logger *slog.Logger, nombre string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loguearSyscall(n, logger, nombre)
		params, ok := decodificar[types.ExitParams](w, r, logger)
		if !ok {
			return
		}
		if err := n.ExitCurrentAndTeardown(params.Codigo); err != nil {
			responderError(w, err, logger)
			return
		}
		responder(w, http.StatusOK, "OK", 0)
	}
}

func WAITPID(n *nucleo.Nucleo, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loguearSyscall(n, logger, "WAITPID")
		params, ok := decodificar[types.WaitParams](w, r, logger)
		if !ok {
			return
		}
		codigo, err := n.Reap(params.PID)
		if err != nil {
			responderError(w, err, logger)
			return
		}
		responder(w, http.StatusOK, "OK", int64(codigo))
	}
}

func WAITTID(n *nucleo.Nucleo, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loguearSyscall(n, logger, "WAITTID")
		params, ok := decodificar[types.WaitParams](w, r, logger)
		if !ok {
			return
		}
		codigo, err := n.WaitTid(params.TID)
		if err != nil {
			responderError(w, err, logger)
			return
		}
		responder(w, http.StatusOK, "OK", int64(codigo))
	}
}

func SET_PRIORITY(n *nucleo.Nucleo, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loguearSyscall(n, logger, "SET_PRIORITY")
		params, ok := decodificar[types.PriorityParams](w, r, logger)
		if !ok {
			return
		}
		if err := n.SetPriority(params.Prioridad); err != nil {
			responderError(w, err, logger)
			return
		}
		responder(w, http.StatusOK, "OK", int64(params.Prioridad))
	}
}

func YIELD(n *nucleo.Nucleo, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loguearSyscall(n, logger, "YIELD")
		if _, err := n.Yield(); err != nil {
			responderError(w, err, logger)
			return
		}
		responder(w, http.StatusOK, "OK", 0)
	}
}

// SCHEDULE pone un hilo en la CPU si esta libre y devuelve el TID que ejecuta
func SCHEDULE(n *nucleo.Nucleo, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ref, hay := n.Planificar()
		if !hay {
			responder(w, http.StatusOK, "CPU_LIBRE", VALOR_ERROR)
			return
		}
		logger.Debug(fmt.Sprintf("## %v en la CPU", ref))
		responder(w, http.StatusOK, "OK", int64(ref.TID))
	}
}

func SLEEP(n *nucleo.Nucleo, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loguearSyscall(n, logger, "SLEEP")
		params, ok := decodificar[types.SleepParams](w, r, logger)
		if !ok {
			return
		}
		if err := n.Sleep(params.Ms); err != nil {
			responderError(w, err, logger)
			return
		}
		responder(w, http.StatusOK, "HILO_BLOQUEADO", 0)
	}
}

func TASK_INFO(n *nucleo.Nucleo, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loguearSyscall(n, logger, "TASK_INFO")
		info, err := n.TaskInfo()
		if err != nil {
			responderError(w, err, logger)
			return
		}
		respuesta, err := json.Marshal(info)
		if err != nil {
			logger.Error(fmt.Sprintf("Error al codificar TASK_INFO: %s", err.Error()))
			http.Error(w, "Error al codificar mensaje como JSON", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(respuesta)
	}
}

// Syscalls de sincronizacion

func MUTEX_CREATE(n *nucleo.Nucleo, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loguearSyscall(n, logger, "MUTEX_CREATE")
		params, ok := decodificar[types.MutexCreateParams](w, r, logger)
		if !ok {
			return
		}
		id, err := n.MutexCreate(params.Politica)
		if err != nil {
			responderError(w, err, logger)
			return
		}
		responder(w, http.StatusOK, "OK", int64(id))
	}
}

// Responde MUTEX_TOMADO si el hilo sigue ejecutando con el lock, o HILO_BLOQUEADO
// si quedo en la cola del mutex.
func MUTEX_LOCK(n *nucleo.Nucleo, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loguearSyscall(n, logger, "MUTEX_LOCK")
		params, ok := decodificar[types.RecursoParams](w, r, logger)
		if !ok {
			return
		}
		tomado, err := n.MutexLock(params.ID)
		if err != nil {
			responderError(w, err, logger)
			return
		}
		if !tomado {
			responder(w, http.StatusOK, "HILO_BLOQUEADO", 0)
			return
		}
		responder(w, http.StatusOK, "MUTEX_TOMADO", 0)
	}
}

func MUTEX_UNLOCK(n *nucleo.Nucleo, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loguearSyscall(n, logger, "MUTEX_UNLOCK")
		params, ok := decodificar[types.RecursoParams](w, r, logger)
		if !ok {
			return
		}
		if err := n.MutexUnlock(params.ID); err != nil {
			responderError(w, err, logger)
			return
		}
		responder(w, http.StatusOK, "OK", 0)
	}
}

func SEMAPHORE_CREATE(n *nucleo.Nucleo, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loguearSyscall(n, logger, "SEMAPHORE_CREATE")
		params, ok := decodificar[types.SemaphoreCreateParams](w, r, logger)
		if !ok {
			return
		}
		id, err := n.SemaphoreCreate(params.Cantidad)
		if err != nil {
			responderError(w, err, logger)
			return
		}
		responder(w, http.StatusOK, "OK", int64(id))
	}
}

func SEMAPHORE_UP(n *nucleo.Nucleo, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loguearSyscall(n, logger, "SEMAPHORE_UP")
		params, ok := decodificar[types.RecursoParams](w, r, logger)
		if !ok {
			return
		}
		if err := n.SemaphoreUp(params.ID); err != nil {
			responderError(w, err, logger)
			return
		}
		responder(w, http.StatusOK, "OK", 0)
	}
}

func SEMAPHORE_DOWN(n *nucleo.Nucleo, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loguearSyscall(n, logger, "SEMAPHORE_DOWN")
		params, ok := decodificar[types.RecursoParams](w, r, logger)
		if !ok {
			return
		}
		obtuvo, err := n.SemaphoreDown(params.ID)
		if err != nil {
			responderError(w, err, logger)
			return
		}
		if !obtuvo {
			responder(w, http.StatusOK, "HILO_BLOQUEADO", 0)
			return
		}
		responder(w, http.StatusOK, "OK", 0)
	}
}

func CONDVAR_CREATE(n *nucleo.Nucleo, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loguearSyscall(n, logger, "CONDVAR_CREATE")
		id, err := n.CondvarCreate()
		if err != nil {
			responderError(w, err, logger)
			return
		}
		responder(w, http.StatusOK, "OK", int64(id))
	}
}

func CONDVAR_SIGNAL(n *nucleo.Nucleo, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loguearSyscall(n, logger, "CONDVAR_SIGNAL")
		params, ok := decodificar[types.RecursoParams](w, r, logger)
		if !ok {
			return
		}
		if err := n.CondvarSignal(params.ID); err != nil {
			responderError(w, err, logger)
			return
		}
		responder(w, http.StatusOK, "OK", 0)
	}
}

func CONDVAR_WAIT(n *nucleo.Nucleo, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loguearSyscall(n, logger, "CONDVAR_WAIT")
		params, ok := decodificar[types.CondvarWaitParams](w, r, logger)
		if !ok {
			return
		}
		if err := n.CondvarWait(params.Condvar, params.Mutex); err != nil {
			responderError(w, err, logger)
			return
		}
		responder(w, http.StatusOK, "HILO_BLOQUEADO", 0)
	}
}

func ENABLE_DEADLOCK_DETECT(n *nucleo.Nucleo, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loguearSyscall(n, logger, "ENABLE_DEADLOCK_DETECT")
		params, ok := decodificar[types.DeadlockParams](w, r, logger)
		if !ok {
			return
		}
		if err := n.EnableDeadlockDetect(params.Habilitado); err != nil {
			responderError(w, err, logger)
			return
		}
		responder(w, http.StatusOK, "OK", 0)
	}
}

// Syscalls de recursos

func OPEN(n *nucleo.Nucleo, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loguearSyscall(n, logger, "OPEN")
		params, ok := decodificar[types.OpenParams](w, r, logger)
		if !ok {
			return
		}
		fd, err := n.Open(params.Nombre)
		if err != nil {
			responderError(w, err, logger)
			return
		}
		responder(w, http.StatusOK, "OK", int64(fd))
	}
}

func CLOSE(n *nucleo.Nucleo, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		loguearSyscall(n, logger, "CLOSE")
		params, ok := decodificar[types.CloseParams](w, r, logger)
		if !ok {
			return
		}
		if err := n.Close(params.FD); err != nil {
			responderError(w, err, logger)
			return
		}
		responder(w, http.StatusOK, "OK", 0)
	}
}

func ESTADO(n *nucleo.Nucleo, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		respuesta, err := json.Marshal(n.Estado())
		if err != nil {
			logger.Error(fmt.Sprintf("Error al codificar el estado: %s", err.Error()))
			http.Error(w, "Error al codificar mensaje como JSON", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(respuesta)
	}
}
