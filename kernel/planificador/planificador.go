package planificador

import (
	"container/heap"
	"fmt"
	"log/slog"
	"sort"

	"github.com/sisoputnfrba/tp-golang-stride/kernel/stride"
	"github.com/sisoputnfrba/tp-golang-stride/kernel/utils"
	"github.com/sisoputnfrba/tp-golang-stride/utils/types"
)

// Resuelve referencias contra la tabla de hilos. El planificador nunca guarda un *TCB.
type Tabla interface {
	Buscar(ref types.Ref) (*utils.TCB, bool)
}

type entrada struct {
	ref    types.Ref
	stride uint64 // stride del hilo al encolarlo; no cambia mientras esta en READY
	orden  uint64 // orden de llegada, desempata strides iguales
	indice int
}

// Heap de minimos con el orden modular de los strides
type colaListos struct {
	arit     stride.Aritmetica
	entradas []*entrada
}

func (c colaListos) Len() int { return len(c.entradas) }

func (c colaListos) Less(i, j int) bool {
	return antes(c.arit, c.entradas[i], c.entradas[j])
}

func (c colaListos) Swap(i, j int) {
	c.entradas[i], c.entradas[j] = c.entradas[j], c.entradas[i]
	c.entradas[i].indice = i
	c.entradas[j].indice = j
}

func (c *colaListos) Push(x any) {
	e := x.(*entrada)
	e.indice = len(c.entradas)
	c.entradas = append(c.entradas, e)
}

func (c *colaListos) Pop() any {
	viejas := c.entradas
	n := len(viejas)
	e := viejas[n-1]
	viejas[n-1] = nil
	e.indice = -1
	c.entradas = viejas[:n-1]
	return e
}

func antes(arit stride.Aritmetica, a, b *entrada) bool {
	if c := arit.Comparar(a.stride, b.stride); c != 0 {
		return c < 0
	}
	return a.orden < b.orden
}

// Planificador por stride. Todas las operaciones toman la seccion critica de la
// cola de ready; las que tocan un TCB asumen que el llamador tiene la del nucleo.
type Planificador struct {
	mu       utils.ListosMutex
	arit     stride.Aritmetica
	tabla    Tabla
	cola     colaListos
	porRef   map[types.Ref]*entrada
	llegadas uint64

	// Tiempo virtual: stride del ultimo hilo elegido, antes de avanzarlo
	base    uint64
	hayBase bool

	logger *slog.Logger
}

func Nuevo(arit stride.Aritmetica, tabla Tabla, logger *slog.Logger) *Planificador {
	return &Planificador{
		arit:   arit,
		tabla:  tabla,
		cola:   colaListos{arit: arit},
		porRef: make(map[types.Ref]*entrada),
		logger: logger,
	}
}

func (p *Planificador) Aritmetica() stride.Aritmetica {
	return p.arit
}

// AddTask mete un hilo READY en la cola. Encolar un hilo que no existe, que no esta
// en READY o que ya estaba encolado es un error de logica del kernel.
func (p *Planificador) AddTask(ref types.Ref) {
	tcb, existe := p.tabla.Buscar(ref)
	if !existe {
		panic(fmt.Sprintf("planificador: AddTask de un hilo inexistente %v", ref))
	}
	if tcb.Estado != utils.READY {
		panic(fmt.Sprintf("planificador: AddTask de %v en estado %v", ref, tcb.Estado))
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if _, encolado := p.porRef[ref]; encolado {
		panic(fmt.Sprintf("planificador: %v ya esta en la cola de ready", ref))
	}
	if p.hayBase {
		tcb.Stride = p.arit.Normalizar(tcb.Stride, p.base)
	}
	e := &entrada{ref: ref, stride: tcb.Stride, orden: p.llegadas}
	p.llegadas++
	heap.Push(&p.cola, e)
	p.porRef[ref] = e
	p.logger.Debug(fmt.Sprintf("## %v entra a READY - Stride: %d", ref, tcb.Stride))
}

// PickNext saca el hilo de menor stride en el orden modular
func (p *Planificador) PickNext() (types.Ref, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.pickNext()
}

func (p *Planificador) pickNext() (types.Ref, bool) {
	if p.cola.Len() == 0 {
		return types.Ref{}, false
	}
	e := heap.Pop(&p.cola).(*entrada)
	delete(p.porRef, e.ref)
	p.base = e.stride
	p.hayBase = true
	return e.ref, true
}

// Siguiente es un paso de planificacion: elige, pasa el hilo a RUNNING y le suma
// su pass al stride.
func (p *Planificador) Siguiente() (types.Ref, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	ref, hay := p.pickNext()
	if !hay {
		return types.Ref{}, false
	}
	tcb, existe := p.tabla.Buscar(ref)
	if !existe {
		panic(fmt.Sprintf("planificador: %v estaba en READY pero no esta en la tabla de hilos", ref))
	}
	tcb.Estado = utils.RUNNING
	tcb.Stride = p.arit.Avanzar(tcb.Stride, tcb.Pass)
	return ref, true
}

// Quitar saca un hilo de la cola sin ejecutarlo. Devuelve false si no estaba.
func (p *Planificador) Quitar(ref types.Ref) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	e, encolado := p.porRef[ref]
	if !encolado {
		return false
	}
	heap.Remove(&p.cola, e.indice)
	delete(p.porRef, ref)
	return true
}

func (p *Planificador) Contiene(ref types.Ref) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, encolado := p.porRef[ref]
	return encolado
}

func (p *Planificador) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cola.Len()
}

// Refs devuelve la cola en el orden en que se ejecutaria
func (p *Planificador) Refs() []types.Ref {
	p.mu.Lock()
	entradas := make([]*entrada, len(p.cola.entradas))
	copy(entradas, p.cola.entradas)
	p.mu.Unlock()

	sort.Slice(entradas, func(i, j int) bool { return antes(p.arit, entradas[i], entradas[j]) })
	refs := make([]types.Ref, len(entradas))
	for i, e := range entradas {
		refs[i] = e.ref
	}
	return refs
}

// Spread es la mayor distancia modular entre el primer hilo de la cola y cualquier otro
func (p *Planificador) Spread() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cola.Len() == 0 {
		return 0
	}
	minimo := p.cola.entradas[0].stride
	var spread uint64
	for _, e := range p.cola.entradas {
		if d := p.arit.Distancia(e.stride, minimo); d > spread {
			spread = d
		}
	}
	return spread
}

// Base devuelve el tiempo virtual actual y si ya se eligio algun hilo
func (p *Planificador) Base() (uint64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.base, p.hayBase
}
