package sincro

import (
	"errors"
	"sort"

	"github.com/sisoputnfrba/tp-golang-stride/kernel/utils"
	"github.com/sisoputnfrba/tp-golang-stride/utils/types"
)

// Se devuelve en lugar de bloquear cuando la deteccion esta habilitada y el pedido
// dejaria al proceso en un estado inseguro
var ErrInterbloqueo = errors.New("el pedido produciria un interbloqueo")

// Demanda de un hilo sobre los recursos del proceso: lo que ya tiene y lo que le
// falta para poder seguir.
type Demanda struct {
	Asignado  map[utils.Bloqueo]int
	Necesidad map[utils.Bloqueo]int
}

// Seguro corre el algoritmo del banquero: busca un orden en el que cada hilo pueda
// conseguir lo que le falta con lo disponible mas lo que devolvieron los anteriores.
// Si todos pueden terminar el estado es seguro.
func Seguro(disponible map[utils.Bloqueo]int, hilos map[types.Ref]Demanda) bool {
	trabajo := make(map[utils.Bloqueo]int, len(disponible))
	for r, n := range disponible {
		trabajo[r] = n
	}

	pendientes := make([]types.Ref, 0, len(hilos))
	for ref := range hilos {
		pendientes = append(pendientes, ref)
	}
	sort.Slice(pendientes, func(i, j int) bool {
		if pendientes[i].PID != pendientes[j].PID {
			return pendientes[i].PID < pendientes[j].PID
		}
		return pendientes[i].TID < pendientes[j].TID
	})

	for avanzo := true; avanzo && len(pendientes) > 0; {
		avanzo = false
		restantes := pendientes[:0]
		for _, ref := range pendientes {
			d := hilos[ref]
			if !alcanza(d.Necesidad, trabajo) {
				restantes = append(restantes, ref)
				continue
			}
			for r, n := range d.Asignado {
				trabajo[r] += n
			}
			avanzo = true
		}
		pendientes = restantes
	}
	return len(pendientes) == 0
}

func alcanza(necesidad, trabajo map[utils.Bloqueo]int) bool {
	for r, n := range necesidad {
		if n > trabajo[r] {
			return false
		}
	}
	return true
}
