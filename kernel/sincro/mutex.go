package sincro

import (
	"fmt"

	"github.com/sisoputnfrba/tp-golang-stride/kernel/utils"
	"github.com/sisoputnfrba/tp-golang-stride/utils/types"
)

// Lo que ve un observador externo del mutex en un instante dado
type EstadoMutex struct {
	Locked    bool
	Esperando []types.Ref
}

// Politica decide que pasa con el lock y con la cola cuando el duenio hace unlock.
// Se elige al crear el mutex.
type Politica interface {
	Nombre() string
	liberar(m *Mutex, h Hilos)
}

// Mutex bloqueante con cola FIFO. La propiedad no se guarda en el mutex: cada
// TCB lleva la lista de locks que tiene tomados.
type Mutex struct {
	mu         utils.PrimitivaMutex
	id         int
	locked     bool
	cola       utils.ColaEspera
	politica   Politica
	observador func(EstadoMutex)
}

func NuevoMutex(id int, politica Politica) *Mutex {
	if politica == nil {
		politica = TraspasoDirecto{}
	}
	return &Mutex{id: id, politica: politica}
}

func (m *Mutex) ID() int {
	return m.id
}

func (m *Mutex) Politica() Politica {
	return m.politica
}

func (m *Mutex) bloqueo() utils.Bloqueo {
	return utils.Bloqueo{Motivo: utils.MUTEX, ID: m.id}
}

// Observar registra una funcion que recibe el estado despues de cada cambio,
// incluidos los estados intermedios de un unlock.
func (m *Mutex) Observar(f func(EstadoMutex)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.observador = f
}

func (m *Mutex) notificar() {
	if m.observador != nil {
		m.observador(m.estado())
	}
}

// Lock toma el mutex si esta libre y devuelve true. Si no, encola al hilo, lo
// bloquea y devuelve false: el hilo sigue recien cuando otro unlock lo despierta.
func (m *Mutex) Lock(ref types.Ref, h Hilos) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lock(ref, h)
}

func (m *Mutex) lock(ref types.Ref, h Hilos) bool {
	if !m.locked {
		m.locked = true
		h.TomarLock(ref, m.id)
		m.notificar()
		return true
	}
	m.cola.Encolar(ref)
	h.Bloquear(ref, m.bloqueo())
	m.notificar()
	return false
}

// relock lo usa la condvar para devolverle el mutex a un hilo que ya estaba
// bloqueado: si esta libre lo toma y lo despierta, si no lo deja en la cola.
func (m *Mutex) relock(ref types.Ref, h Hilos) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.lock(ref, h) {
		h.Despertar(ref)
	}
}

// Unlock libera el mutex segun la politica. Si el hilo no lo tiene entra en panico.
func (m *Mutex) Unlock(ref types.Ref, h Hilos) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.locked || !h.SoltarLock(ref, m.id) {
		panic(fmt.Errorf("%w: mutex %d, hilo %v", ErrNoPoseeLock, m.id, ref))
	}
	m.politica.liberar(m, h)
}

// Quitar saca un hilo de la cola de espera sin darle el lock
func (m *Mutex) Quitar(ref types.Ref) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if !m.cola.Quitar(ref) {
		return false
	}
	m.notificar()
	return true
}

func (m *Mutex) Locked() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.locked
}

func (m *Mutex) Esperando() []types.Ref {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.cola.Refs()
}

func (m *Mutex) Estado() EstadoMutex {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.estado()
}

func (m *Mutex) estado() EstadoMutex {
	return EstadoMutex{Locked: m.locked, Esperando: m.cola.Refs()}
}

// TraspasoDirecto le pasa el lock al primero de la cola sin dejarlo libre nunca.
// El orden de adquisicion es exactamente el orden en que se bloquearon.
type TraspasoDirecto struct{}

func (TraspasoDirecto) Nombre() string { return utils.POLITICA_TRASPASO }

func (TraspasoDirecto) liberar(m *Mutex, h Hilos) {
	siguiente, hay := m.cola.Desencolar()
	if !hay {
		m.locked = false
		m.notificar()
		return
	}
	h.TomarLock(siguiente, m.id)
	h.Despertar(siguiente)
	m.notificar()
}

// LiberarYDespertar deja el lock libre y despues despierta al primero de la cola,
// que lo vuelve a pedir cuando le toque la CPU. Entre medio cualquier otro hilo
// puede ganarle el lock.
type LiberarYDespertar struct{}

func (LiberarYDespertar) Nombre() string { return utils.POLITICA_LIBERAR }

func (LiberarYDespertar) liberar(m *Mutex, h Hilos) {
	m.locked = false
	m.notificar()
	siguiente, hay := m.cola.Desencolar()
	if !hay {
		return
	}
	h.Reintentar(siguiente, m.bloqueo())
	m.notificar()
}

// PoliticaPorNombre traduce el valor de la configuracion
func PoliticaPorNombre(nombre string) (Politica, error) {
	switch nombre {
	case utils.POLITICA_TRASPASO, "":
		return TraspasoDirecto{}, nil
	case utils.POLITICA_LIBERAR:
		return LiberarYDespertar{}, nil
	}
	return nil, fmt.Errorf("politica de mutex %q no reconocida", nombre)
}
