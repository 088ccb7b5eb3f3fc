package sincro

import (
	"github.com/sisoputnfrba/tp-golang-stride/kernel/utils"
	"github.com/sisoputnfrba/tp-golang-stride/utils/types"
)

// Semaforo contador con cola FIFO. Un up con hilos esperando le pasa la unidad al
// primero de la cola, asi que el contador nunca sube mientras haya alguien esperando.
type Semaforo struct {
	mu     utils.PrimitivaMutex
	id     int
	cuenta int
	cola   utils.ColaEspera
}

func NuevoSemaforo(id int, cuenta int) *Semaforo {
	if cuenta < 0 {
		cuenta = 0
	}
	return &Semaforo{id: id, cuenta: cuenta}
}

func (s *Semaforo) ID() int {
	return s.id
}

// Down toma una unidad. Si no hay, bloquea al hilo y devuelve false.
func (s *Semaforo) Down(ref types.Ref, h Hilos) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.cuenta > 0 {
		s.cuenta--
		h.AsignarSemaforo(ref, s.id, 1)
		return true
	}
	s.cola.Encolar(ref)
	h.Bloquear(ref, utils.Bloqueo{Motivo: utils.SEMAFORO, ID: s.id})
	return false
}

// Up devuelve una unidad. No hace falta haberla tomado antes.
func (s *Semaforo) Up(ref types.Ref, h Hilos) {
	s.mu.Lock()
	defer s.mu.Unlock()

	h.AsignarSemaforo(ref, s.id, -1)
	if siguiente, hay := s.cola.Desencolar(); hay {
		h.AsignarSemaforo(siguiente, s.id, 1)
		h.Despertar(siguiente)
		return
	}
	s.cuenta++
}

func (s *Semaforo) Quitar(ref types.Ref) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cola.Quitar(ref)
}

// Devolver reintegra unidades de un hilo que termina sin haber hecho up
func (s *Semaforo) Devolver(n int, h Hilos) {
	s.mu.Lock()
	defer s.mu.Unlock()

	for ; n > 0; n-- {
		if siguiente, hay := s.cola.Desencolar(); hay {
			h.AsignarSemaforo(siguiente, s.id, 1)
			h.Despertar(siguiente)
			continue
		}
		s.cuenta++
	}
}

func (s *Semaforo) Disponibles() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cuenta
}

func (s *Semaforo) Esperando() []types.Ref {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.cola.Refs()
}
