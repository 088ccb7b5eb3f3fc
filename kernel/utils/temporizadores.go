package utils

import (
	"slices"
	"sort"
	"time"

	"github.com/sisoputnfrba/tp-golang-stride/utils/types"
)

type temporizador struct {
	vence time.Time
	ref   types.Ref
}

// Hilos dormidos ordenados por vencimiento. Con el mismo vencimiento sale primero
// el que se durmio antes. Igual que ColaEspera, guarda referencias y no TCBs.
type ColaTemporizadores struct {
	entradas []temporizador
}

func (c *ColaTemporizadores) Agregar(vence time.Time, ref types.Ref) {
	i := sort.Search(len(c.entradas), func(i int) bool {
		return c.entradas[i].vence.After(vence)
	})
	c.entradas = slices.Insert(c.entradas, i, temporizador{vence: vence, ref: ref})
}

// Vencidos saca y devuelve, en orden, los hilos cuyo temporizador ya vencio
func (c *ColaTemporizadores) Vencidos(ahora time.Time) []types.Ref {
	i := 0
	for i < len(c.entradas) && !c.entradas[i].vence.After(ahora) {
		i++
	}
	refs := make([]types.Ref, 0, i)
	for _, e := range c.entradas[:i] {
		refs = append(refs, e.ref)
	}
	c.entradas = slices.Delete(c.entradas, 0, i)
	return refs
}

func (c *ColaTemporizadores) Quitar(ref types.Ref) bool {
	i := slices.IndexFunc(c.entradas, func(e temporizador) bool { return e.ref == ref })
	if i < 0 {
		return false
	}
	c.entradas = slices.Delete(c.entradas, i, i+1)
	return true
}

func (c *ColaTemporizadores) Len() int {
	return len(c.entradas)
}

func (c *ColaTemporizadores) Refs() []types.Ref {
	refs := make([]types.Ref, 0, len(c.entradas))
	for _, e := range c.entradas {
		refs = append(refs, e.ref)
	}
	return refs
}
