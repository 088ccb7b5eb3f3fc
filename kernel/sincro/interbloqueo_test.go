package sincro

import (
	"testing"

	"github.com/sisoputnfrba/tp-golang-stride/kernel/utils"
	"github.com/sisoputnfrba/tp-golang-stride/utils/types"
)

func TestSeguro(t *testing.T) {
	m0 := utils.Bloqueo{Motivo: utils.MUTEX, ID: 0}
	m1 := utils.Bloqueo{Motivo: utils.MUTEX, ID: 1}
	s0 := utils.Bloqueo{Motivo: utils.SEMAFORO, ID: 0}

	tests := []struct {
		name       string
		disponible map[utils.Bloqueo]int
		hilos      map[types.Ref]Demanda
		want       bool
	}{
		{
			name:       "sin hilos",
			disponible: map[utils.Bloqueo]int{m0: 1},
			want:       true,
		},
		{
			// cada uno tiene un mutex y pide el del otro
			name:       "espera circular entre dos mutex",
			disponible: map[utils.Bloqueo]int{m0: 0, m1: 0},
			hilos: map[types.Ref]Demanda{
				hilo(0): {Asignado: map[utils.Bloqueo]int{m0: 1}, Necesidad: map[utils.Bloqueo]int{m1: 1}},
				hilo(1): {Asignado: map[utils.Bloqueo]int{m1: 1}, Necesidad: map[utils.Bloqueo]int{m0: 1}},
			},
			want: false,
		},
		{
			name:       "uno puede terminar y libera al otro",
			disponible: map[utils.Bloqueo]int{m0: 0, m1: 0},
			hilos: map[types.Ref]Demanda{
				hilo(0): {Asignado: map[utils.Bloqueo]int{m0: 1, m1: 1}},
				hilo(1): {Necesidad: map[utils.Bloqueo]int{m0: 1}},
			},
			want: true,
		},
		{
			name:       "semaforo sin unidades suficientes",
			disponible: map[utils.Bloqueo]int{s0: 1},
			hilos: map[types.Ref]Demanda{
				hilo(0): {Asignado: map[utils.Bloqueo]int{s0: 1}, Necesidad: map[utils.Bloqueo]int{s0: 2}},
				hilo(1): {Asignado: map[utils.Bloqueo]int{s0: 1}, Necesidad: map[utils.Bloqueo]int{s0: 3}},
			},
			want: false,
		},
		{
			name:       "semaforo alcanza en cadena",
			disponible: map[utils.Bloqueo]int{s0: 1},
			hilos: map[types.Ref]Demanda{
				hilo(0): {Asignado: map[utils.Bloqueo]int{s0: 1}, Necesidad: map[utils.Bloqueo]int{s0: 1}},
				hilo(1): {Asignado: map[utils.Bloqueo]int{s0: 1}, Necesidad: map[utils.Bloqueo]int{s0: 2}},
			},
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Seguro(tt.disponible, tt.hilos); got != tt.want {
				t.Errorf("Seguro() = %v, want %v", got, tt.want)
			}
		})
	}
}
