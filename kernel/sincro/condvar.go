package sincro

import (
	"github.com/sisoputnfrba/tp-golang-stride/kernel/utils"
	"github.com/sisoputnfrba/tp-golang-stride/utils/types"
)

// Condvar con cola FIFO. Cada hilo que espera recuerda con que mutex entro, para
// devolverselo cuando lo despiertan.
type Condvar struct {
	mu      utils.PrimitivaMutex
	id      int
	cola    utils.ColaEspera
	mutexDe map[types.Ref]*Mutex
}

func NuevaCondvar(id int) *Condvar {
	return &Condvar{id: id, mutexDe: make(map[types.Ref]*Mutex)}
}

func (c *Condvar) ID() int {
	return c.id
}

// Wait suelta el mutex y deja al hilo esperando un signal. Si el hilo no tenia el
// mutex, Unlock entra en panico antes de encolarlo.
func (c *Condvar) Wait(ref types.Ref, m *Mutex, h Hilos) {
	m.Unlock(ref, h)

	c.mu.Lock()
	defer c.mu.Unlock()
	c.cola.Encolar(ref)
	c.mutexDe[ref] = m
	h.Bloquear(ref, utils.Bloqueo{Motivo: utils.CONDVAR, ID: c.id})
}

// Signal despierta al primero de la cola. El hilo vuelve a READY recien cuando
// consigue el mutex; mientras tanto queda bloqueado en la cola del mutex.
func (c *Condvar) Signal(h Hilos) bool {
	c.mu.Lock()
	ref, hay := c.cola.Desencolar()
	m := c.mutexDe[ref]
	delete(c.mutexDe, ref)
	c.mu.Unlock()

	if !hay {
		return false
	}
	m.relock(ref, h)
	return true
}

func (c *Condvar) Quitar(ref types.Ref) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.mutexDe, ref)
	return c.cola.Quitar(ref)
}

func (c *Condvar) Esperando() []types.Ref {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.cola.Refs()
}
