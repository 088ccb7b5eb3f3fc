// Package sincro contiene las primitivas de sincronizacion de los procesos
// simulados: mutex, semaforo y variable de condicion.
//
// Las primitivas no conocen los TCB. Guardan referencias en sus colas de espera y
// le piden al kernel, a traves de Hilos, que bloquee o despierte a un hilo. Todas
// las llamadas a Hilos se hacen con la seccion critica de la primitiva tomada, asi
// que la implementacion no puede volver a entrar a la primitiva.
package sincro

import (
	"errors"

	"github.com/sisoputnfrba/tp-golang-stride/kernel/utils"
	"github.com/sisoputnfrba/tp-golang-stride/utils/types"
)

var (
	// Desbloquear un mutex que el hilo no tiene es un error de logica del kernel
	ErrNoPoseeLock = errors.New("el hilo no posee el mutex")
)

type Hilos interface {
	// Bloquear pasa el hilo a BLOCKED esperando en b y le saca la CPU si la tenia.
	// Puede llamarse sobre un hilo que ya estaba bloqueado para cambiar de cola.
	Bloquear(ref types.Ref, b utils.Bloqueo)
	// Despertar pasa el hilo a READY y lo encola en el planificador.
	Despertar(ref types.Ref)
	// Reintentar despierta al hilo dejando anotado que, cuando vuelva a ejecutar,
	// tiene que volver a pedir la primitiva b.
	Reintentar(ref types.Ref, b utils.Bloqueo)

	TomarLock(ref types.Ref, id int)
	// SoltarLock devuelve false si el hilo no tenia el lock
	SoltarLock(ref types.Ref, id int) bool

	// AsignarSemaforo suma delta a las unidades del semaforo que tiene el hilo
	AsignarSemaforo(ref types.Ref, id int, delta int)
}
