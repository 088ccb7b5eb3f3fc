package utils

import (
	"reflect"

	"gvisor.dev/gvisor/pkg/sync"
	"gvisor.dev/gvisor/pkg/sync/locking"
)

// Secciones criticas del kernel. Equivalen a deshabilitar interrupciones: todo cambio
// de la cola de ready y del estado interno de una primitiva pasa por uno de estos
// locks. El orden permitido es NucleoMutex -> PrimitivaMutex -> ListosMutex, y el
// validador de gvisor lo controla cuando se compila con lockdep.

// NucleoMutex protege la tabla de procesos y el procesador.
type NucleoMutex struct {
	mu sync.Mutex
}

var claseNucleo *locking.MutexClass

// +checklocksignore
func (m *NucleoMutex) Lock() {
	locking.AddGLock(claseNucleo, -1)
	m.mu.Lock()
}

// +checklocksignore
func (m *NucleoMutex) Unlock() {
	locking.DelGLock(claseNucleo, -1)
	m.mu.Unlock()
}

// PrimitivaMutex protege el estado interno de un mutex, semaforo o condvar.
type PrimitivaMutex struct {
	mu sync.Mutex
}

var clasePrimitiva *locking.MutexClass

// +checklocksignore
func (m *PrimitivaMutex) Lock() {
	locking.AddGLock(clasePrimitiva, -1)
	m.mu.Lock()
}

// +checklocksignore
func (m *PrimitivaMutex) Unlock() {
	locking.DelGLock(clasePrimitiva, -1)
	m.mu.Unlock()
}

// ListosMutex protege la cola de ready del planificador.
type ListosMutex struct {
	mu sync.Mutex
}

var claseListos *locking.MutexClass

// +checklocksignore
func (m *ListosMutex) Lock() {
	locking.AddGLock(claseListos, -1)
	m.mu.Lock()
}

// +checklocksignore
func (m *ListosMutex) Unlock() {
	locking.DelGLock(claseListos, -1)
	m.mu.Unlock()
}

func init() {
	claseNucleo = locking.NewMutexClass(reflect.TypeOf(NucleoMutex{}), nil)
	clasePrimitiva = locking.NewMutexClass(reflect.TypeOf(PrimitivaMutex{}), nil)
	claseListos = locking.NewMutexClass(reflect.TypeOf(ListosMutex{}), nil)
}
