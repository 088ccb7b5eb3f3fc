package utils

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/sisoputnfrba/tp-golang-stride/utils/types"
)

func TestColaEspera(t *testing.T) {
	var cola ColaEspera
	a, b, c := types.Ref{PID: 1, TID: 0}, types.Ref{PID: 1, TID: 1}, types.Ref{PID: 2, TID: 0}
	cola.Encolar(a)
	cola.Encolar(b)
	cola.Encolar(c)

	if !cola.Quitar(b) || cola.Quitar(b) {
		t.Fatal("Quitar(b) tiene que funcionar una sola vez")
	}
	if got := cola.Refs(); !slices.Equal(got, []types.Ref{a, c}) {
		t.Errorf("Refs() = %v, want [%v %v]", got, a, c)
	}
	if cola.Contiene(b) || cola.Len() != 2 {
		t.Errorf("Contiene(b) = %v, Len() = %d", cola.Contiene(b), cola.Len())
	}

	for _, want := range []types.Ref{a, c} {
		if got, ok := cola.Desencolar(); !ok || got != want {
			t.Errorf("Desencolar() = %v, %v; want %v", got, ok, want)
		}
	}
	if _, ok := cola.Desencolar(); ok {
		t.Error("Desencolar() de una cola vacia devolvio un elemento")
	}
}

func TestSemaphore(t *testing.T) {
	s := NewSemaphore(1, 0)
	// varios signals seguidos valen uno
	s.Signal()
	s.Signal()
	if err := s.Wait(context.Background()); err != nil {
		t.Fatal(err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if err := s.Wait(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Wait() sin permisos error = %v, want DeadlineExceeded", err)
	}
}
