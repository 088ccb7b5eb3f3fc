package utils

import "context"

// Semaforo contador sobre un canal. Lo usa el despachador para dormir mientras no
// haya hilos en READY; no es la primitiva de sincronizacion de los procesos simulados.
type Semaphore struct {
	ch chan struct{}
}

// NewSemaphore crea un semáforo con capacidad maxima y un contador inicial dado
func NewSemaphore(capacidad int, iniciales int) *Semaphore {
	ch := make(chan struct{}, capacidad)
	for i := 0; i < iniciales && i < capacidad; i++ {
		ch <- struct{}{} // Llena el canal (ocupado)
	}
	return &Semaphore{ch: ch}
}

// Bloquea hasta que haya un permiso o se cancele el contexto
func (s *Semaphore) Wait(ctx context.Context) error {
	select {
	case <-s.ch:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Libera un permiso. Si el semaforo ya esta lleno el signal se pierde: varios
// avisos seguidos de "hay trabajo" valen lo mismo que uno.
func (s *Semaphore) Signal() {
	select {
	case s.ch <- struct{}{}:
	default:
	}
}
