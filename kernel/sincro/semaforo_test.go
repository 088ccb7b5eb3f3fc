package sincro

import (
	"testing"

	"github.com/sisoputnfrba/tp-golang-stride/kernel/utils"
)

func TestSemaforoDownUp(t *testing.T) {
	h := nuevosHilos()
	s := NuevoSemaforo(2, 1)

	if !s.Down(hilo(0), h) {
		t.Fatal("Down con una unidad disponible bloqueo")
	}
	if h.semaforos[hilo(0)][2] != 1 {
		t.Errorf("asignado a %v = %d, want 1", hilo(0), h.semaforos[hilo(0)][2])
	}
	if s.Down(hilo(1), h) || s.Down(hilo(2), h) {
		t.Fatal("Down sin unidades no bloqueo")
	}
	if b := h.bloqueos[hilo(1)]; b != (utils.Bloqueo{Motivo: utils.SEMAFORO, ID: 2}) {
		t.Errorf("bloqueado en %v, want SEMAFORO 2", b)
	}

	s.Up(hilo(0), h)
	if s.Disponibles() != 0 {
		t.Errorf("Disponibles() = %d despues de traspasar la unidad", s.Disponibles())
	}
	if len(h.despiertos) != 1 || h.despiertos[0] != hilo(1) {
		t.Fatalf("despiertos = %v, want [%v]", h.despiertos, hilo(1))
	}
	if _, tiene := h.semaforos[hilo(0)][2]; tiene {
		t.Error("el hilo que hizo up sigue con la unidad asignada")
	}

	s.Up(hilo(1), h)
	s.Up(hilo(2), h)
	if s.Disponibles() != 1 {
		t.Errorf("Disponibles() = %d, want 1", s.Disponibles())
	}
}

func TestSemaforoDevolverDespiertaEsperando(t *testing.T) {
	h := nuevosHilos()
	s := NuevoSemaforo(0, 0)
	s.Down(hilo(1), h)

	s.Devolver(2, h)
	if h.estados[hilo(1)] != utils.READY {
		t.Errorf("estado de %v = %v, want READY", hilo(1), h.estados[hilo(1)])
	}
	if s.Disponibles() != 1 {
		t.Errorf("Disponibles() = %d, want 1", s.Disponibles())
	}
}

func TestCondvarWaitSignal(t *testing.T) {
	h := nuevosHilos()
	m := NuevoMutex(0, TraspasoDirecto{})
	c := NuevaCondvar(0)

	m.Lock(hilo(0), h)
	c.Wait(hilo(0), m, h)
	if m.Locked() {
		t.Fatal("Wait no solto el mutex")
	}
	if b := h.bloqueos[hilo(0)]; b != (utils.Bloqueo{Motivo: utils.CONDVAR, ID: 0}) {
		t.Fatalf("bloqueado en %v, want CONDVAR 0", b)
	}

	// el que hace signal tiene el mutex: el despertado pasa a esperar el mutex
	m.Lock(hilo(1), h)
	if !c.Signal(h) {
		t.Fatal("Signal con un hilo esperando devolvio false")
	}
	if b := h.bloqueos[hilo(0)]; b != (utils.Bloqueo{Motivo: utils.MUTEX, ID: 0}) {
		t.Fatalf("despues del signal bloqueado en %v, want MUTEX 0", b)
	}
	m.Unlock(hilo(1), h)
	if h.estados[hilo(0)] != utils.READY || !h.tiene(hilo(0), 0) {
		t.Errorf("%v no volvio con el mutex: estado %v, locks %v", hilo(0), h.estados[hilo(0)], h.locks[hilo(0)])
	}
	if c.Signal(h) {
		t.Error("Signal sin nadie esperando devolvio true")
	}
}

func TestCondvarSignalConMutexLibre(t *testing.T) {
	h := nuevosHilos()
	m := NuevoMutex(0, TraspasoDirecto{})
	c := NuevaCondvar(1)
	m.Lock(hilo(0), h)
	c.Wait(hilo(0), m, h)

	c.Signal(h)
	if h.estados[hilo(0)] != utils.READY || !h.tiene(hilo(0), 0) {
		t.Errorf("%v no se desperto con el mutex", hilo(0))
	}
}

func TestCondvarQuitar(t *testing.T) {
	h := nuevosHilos()
	m := NuevoMutex(0, TraspasoDirecto{})
	c := NuevaCondvar(0)
	m.Lock(hilo(0), h)
	c.Wait(hilo(0), m, h)

	if !c.Quitar(hilo(0)) {
		t.Fatal("Quitar de un hilo en la cola devolvio false")
	}
	if c.Signal(h) {
		t.Error("Signal desperto a un hilo que ya no estaba en la cola")
	}
}
