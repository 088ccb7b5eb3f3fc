package utils

import (
	"errors"
	"slices"
	"testing"

	"github.com/sisoputnfrba/tp-golang-stride/utils/types"
)

func TestTablaProcesos(t *testing.T) {
	tabla := NuevaTablaProcesos()
	p1 := tabla.NuevoProceso()
	p2 := tabla.NuevoProceso()
	if p1.PID != 1 || p2.PID != 2 {
		t.Fatalf("PIDs = %d, %d; want 1, 2", p1.PID, p2.PID)
	}

	main := p1.NuevoHilo(16, 6250)
	hilo := p1.NuevoHilo(8, 12500)
	if main.TID != 0 || hilo.TID != 1 || p1.Main() != main {
		t.Fatalf("TIDs = %d, %d", main.TID, hilo.TID)
	}
	if main.Estado != READY || main.Semaforos == nil {
		t.Errorf("hilo nuevo = %+v", main)
	}

	if tcb, existe := tabla.Buscar(types.Ref{PID: 1, TID: 1}); !existe || tcb != hilo {
		t.Errorf("Buscar(1:1) = %v, %v", tcb, existe)
	}
	if _, existe := tabla.Buscar(types.Ref{PID: 2, TID: 0}); existe {
		t.Error("Buscar(2:0) encontro un hilo que no existe")
	}
	if _, err := tabla.Proceso(7); !errors.Is(err, ErrProcesoInexistente) {
		t.Errorf("Proceso(7) error = %v", err)
	}

	tabla.Eliminar(1)
	if got := tabla.PIDs(); !slices.Equal(got, []uint32{2}) {
		t.Errorf("PIDs() = %v, want [2]", got)
	}
	// los PIDs no se reutilizan
	if p3 := tabla.NuevoProceso(); p3.PID != 3 {
		t.Errorf("PID nuevo = %d, want 3", p3.PID)
	}
}

func TestTIDsNoSeReutilizan(t *testing.T) {
	p := NuevaTablaProcesos().NuevoProceso()
	for i := 0; i < 3; i++ {
		p.NuevoHilo(16, 1)
	}
	delete(p.Hilos, 1)
	if tcb := p.NuevoHilo(16, 1); tcb.TID != 3 {
		t.Errorf("TID nuevo = %d, want 3", tcb.TID)
	}
	if got := p.TIDs(); !slices.Equal(got, []uint32{0, 2, 3}) {
		t.Errorf("TIDs() = %v", got)
	}
}

func TestLocksDelHilo(t *testing.T) {
	tcb := &TCB{Locks: []int{2, 5, 7}}

	tests := []struct {
		id   int
		want bool
	}{
		{5, true},
		{5, false},
		{9, false},
		{2, true},
	}
	for _, tt := range tests {
		if got := tcb.SoltarLock(tt.id); got != tt.want {
			t.Errorf("SoltarLock(%d) = %v, want %v", tt.id, got, tt.want)
		}
	}
	if !tcb.TieneLock(7) || tcb.TieneLock(2) {
		t.Errorf("Locks = %v, want [7]", tcb.Locks)
	}
}

func TestStrings(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{BLOCKED.String(), "BLOCKED"},
		{Estado(9).String(), "Estado(9)"},
		{Bloqueo{Motivo: CONDVAR, ID: 3}.String(), "CONDVAR 3"},
		{Motivo(7).String(), "Motivo(7)"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}
