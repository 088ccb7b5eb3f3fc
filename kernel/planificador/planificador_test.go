package planificador

import (
	"io"
	"math/rand"
	"testing"

	"github.com/sisoputnfrba/tp-golang-stride/kernel/stride"
	"github.com/sisoputnfrba/tp-golang-stride/kernel/utils"
	"github.com/sisoputnfrba/tp-golang-stride/utils/logging"
	"github.com/sisoputnfrba/tp-golang-stride/utils/types"
)

type tablaFake map[types.Ref]*utils.TCB

func (t tablaFake) Buscar(ref types.Ref) (*utils.TCB, bool) {
	tcb, existe := t[ref]
	return tcb, existe
}

func (t tablaFake) hilo(arit stride.Aritmetica, tid uint32, prioridad int, s uint64) types.Ref {
	pass, err := arit.Pass(prioridad)
	if err != nil {
		panic(err)
	}
	ref := types.Ref{PID: 1, TID: tid}
	t[ref] = &utils.TCB{PID: 1, TID: tid, Estado: utils.READY, Prioridad: prioridad, Pass: pass, Stride: s}
	return ref
}

func nuevoPlanificador(arit stride.Aritmetica, tabla tablaFake) *Planificador {
	return Nuevo(arit, tabla, logging.Nuevo_Logger(io.Discard, "error"))
}

func TestPickNextColaVacia(t *testing.T) {
	p := nuevoPlanificador(stride.Debe(64, 100_000), tablaFake{})
	if ref, hay := p.PickNext(); hay {
		t.Fatalf("PickNext() = %v, want vacio", ref)
	}
	if _, hay := p.Siguiente(); hay {
		t.Fatal("Siguiente() con la cola vacia devolvio un hilo")
	}
}

func TestPickNextMenorStrideYDesempatePorLlegada(t *testing.T) {
	arit := stride.Debe(64, 100_000)
	tabla := tablaFake{}
	a := tabla.hilo(arit, 0, 16, 300)
	b := tabla.hilo(arit, 1, 16, 100)
	c := tabla.hilo(arit, 2, 16, 300)
	d := tabla.hilo(arit, 3, 16, 200)
	p := nuevoPlanificador(arit, tabla)
	for _, ref := range []types.Ref{a, b, c, d} {
		p.AddTask(ref)
	}

	want := []types.Ref{b, d, a, c}
	if got := p.Refs(); !igualesRefs(got, want) {
		t.Fatalf("Refs() = %v, want %v", got, want)
	}
	for _, w := range want {
		got, hay := p.PickNext()
		if !hay || got != w {
			t.Fatalf("PickNext() = %v, %v; want %v", got, hay, w)
		}
	}
	if p.Len() != 0 {
		t.Errorf("Len() = %d despues de vaciar la cola", p.Len())
	}
}

// Escenario de 8 bits: ambos con prioridad 10, pass 6, p1=255 y p2=250. Corre p2,
// su stride pasa a 0 y aun asi el siguiente tiene que ser p1.
func TestSiguienteEscenarioOchoBits(t *testing.T) {
	arit := stride.Debe(8, 60)
	tabla := tablaFake{}
	p1 := tabla.hilo(arit, 1, 10, 255)
	p2 := tabla.hilo(arit, 2, 10, 250)
	p := nuevoPlanificador(arit, tabla)
	p.AddTask(p1)
	p.AddTask(p2)

	ref, hay := p.Siguiente()
	if !hay || ref != p2 {
		t.Fatalf("primer Siguiente() = %v, want %v", ref, p2)
	}
	tcb := tabla[p2]
	if tcb.Estado != utils.RUNNING {
		t.Errorf("estado de p2 = %v, want RUNNING", tcb.Estado)
	}
	if tcb.Stride != 0 {
		t.Fatalf("stride de p2 = %d, want 0", tcb.Stride)
	}
	// numericamente p2 queda menor: una comparacion cruda lo elegiria de nuevo
	if tcb.Stride >= tabla[p1].Stride {
		t.Fatalf("stride crudo de p2 (%d) no quedo por debajo del de p1 (%d)", tcb.Stride, tabla[p1].Stride)
	}

	tcb.Estado = utils.READY
	p.AddTask(p2)
	ref, hay = p.Siguiente()
	if !hay || ref != p1 {
		t.Fatalf("segundo Siguiente() = %v, want %v", ref, p1)
	}
	if got := tabla[p1].Stride; got != 5 {
		t.Errorf("stride de p1 = %d, want 5", got)
	}
}

func TestQuitarYContiene(t *testing.T) {
	arit := stride.Debe(64, 100_000)
	tabla := tablaFake{}
	refs := []types.Ref{
		tabla.hilo(arit, 0, 2, 0),
		tabla.hilo(arit, 1, 4, 10),
		tabla.hilo(arit, 2, 8, 20),
	}
	p := nuevoPlanificador(arit, tabla)
	for _, ref := range refs {
		p.AddTask(ref)
	}

	if !p.Quitar(refs[0]) {
		t.Fatal("Quitar de un hilo encolado devolvio false")
	}
	if p.Quitar(refs[0]) {
		t.Error("Quitar dos veces devolvio true")
	}
	if p.Contiene(refs[0]) {
		t.Error("Contiene despues de Quitar")
	}
	if !p.Contiene(refs[2]) {
		t.Error("Contiene de un hilo encolado devolvio false")
	}
	got, _ := p.PickNext()
	if got != refs[1] {
		t.Errorf("PickNext() = %v, want %v", got, refs[1])
	}
}

func TestAddTaskInvariantes(t *testing.T) {
	arit := stride.Debe(64, 100_000)
	tests := []struct {
		name  string
		armar func(tablaFake, *Planificador) types.Ref
	}{
		{"hilo inexistente", func(tablaFake, *Planificador) types.Ref {
			return types.Ref{PID: 9, TID: 9}
		}},
		{"hilo bloqueado", func(tabla tablaFake, _ *Planificador) types.Ref {
			ref := tabla.hilo(arit, 0, 2, 0)
			tabla[ref].Estado = utils.BLOCKED
			return ref
		}},
		{"hilo ya encolado", func(tabla tablaFake, p *Planificador) types.Ref {
			ref := tabla.hilo(arit, 0, 2, 0)
			p.AddTask(ref)
			return ref
		}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tabla := tablaFake{}
			p := nuevoPlanificador(arit, tabla)
			ref := tt.armar(tabla, p)
			defer func() {
				if recover() == nil {
					t.Error("AddTask no entro en panico")
				}
			}()
			p.AddTask(ref)
		})
	}
}

// Con un stride de 8 bits y prioridades >= 2, la dispersion de la cola de ready
// nunca supera BigStride/2, aunque los hilos se bloqueen y vuelvan mucho despues.
func TestSpreadAcotado(t *testing.T) {
	arit := stride.Debe(8, 200)
	tabla := tablaFake{}
	rnd := rand.New(rand.NewSource(1))
	p := nuevoPlanificador(arit, tabla)

	var dormidos []types.Ref
	for tid := uint32(0); tid < 6; tid++ {
		p.AddTask(tabla.hilo(arit, tid, 2+rnd.Intn(20), 0))
	}

	for paso := 0; paso < 5000; paso++ {
		ref, hay := p.Siguiente()
		if !hay {
			ref, dormidos = dormidos[0], dormidos[1:]
			tabla[ref].Estado = utils.READY
			p.AddTask(ref)
			continue
		}
		if rnd.Intn(4) == 0 {
			tabla[ref].Estado = utils.BLOCKED
			dormidos = append(dormidos, ref)
		} else {
			tabla[ref].Estado = utils.READY
			p.AddTask(ref)
		}
		if len(dormidos) > 0 && rnd.Intn(3) == 0 {
			despierto := dormidos[0]
			dormidos = dormidos[1:]
			tabla[despierto].Estado = utils.READY
			p.AddTask(despierto)
		}
		if s := p.Spread(); s > arit.BigStride()/2 {
			t.Fatalf("paso %d: spread %d supera %d", paso, s, arit.BigStride()/2)
		}
	}
}

// El reparto de CPU es proporcional a la prioridad aun cuando los strides dan la vuelta.
func TestRepartoProporcional(t *testing.T) {
	arit := stride.Debe(8, 200)
	tabla := tablaFake{}
	lento := tabla.hilo(arit, 0, 2, 0)  // pass 100
	rapido := tabla.hilo(arit, 1, 8, 0) // pass 25
	p := nuevoPlanificador(arit, tabla)
	p.AddTask(lento)
	p.AddTask(rapido)

	cuentas := map[types.Ref]int{}
	for i := 0; i < 500; i++ {
		ref, _ := p.Siguiente()
		cuentas[ref]++
		tabla[ref].Estado = utils.READY
		p.AddTask(ref)
	}
	if got := cuentas[rapido]; got < 398 || got > 402 {
		t.Errorf("el hilo de prioridad 8 corrio %d veces, want ~400", got)
	}
	if got := cuentas[lento]; got < 98 || got > 102 {
		t.Errorf("el hilo de prioridad 2 corrio %d veces, want ~100", got)
	}
}

func igualesRefs(a, b []types.Ref) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
