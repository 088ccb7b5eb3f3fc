// Package stride implementa la aritmetica modular de los strides.
//
// Un stride es un contador de ancho fijo que da la vuelta. Comparar dos strides
// con < da mal apenas uno de ellos pasa por cero, asi que el orden se define
// sobre la diferencia modular: con M = 2^Bits y H = M/2, d = (a - b) mod M;
// si d < H entonces a va despues que b, si d > H entonces a va antes.
// El orden es consistente mientras la distancia entre dos strides vivos sea
// menor que H, cosa que garantiza prioridad >= 2 (pass <= BigStride/2) y
// BigStride < M.
package stride

import (
	"errors"
	"fmt"
)

var (
	ErrPrioridadInvalida = errors.New("la prioridad tiene que ser >= 2")
	ErrConfiguracion     = errors.New("configuracion de stride invalida")
)

// PrioridadMinima es la menor prioridad aceptada. Con prioridad 1 el pass seria
// BigStride y la dispersion podria llegar a la mitad del modulo.
const PrioridadMinima = 2

type Aritmetica struct {
	bits      uint
	bigStride uint64
	mascara   uint64
	mitad     uint64
}

// Nueva valida el ancho y el BigStride. bits va de 2 a 64.
func Nueva(bits uint, bigStride uint64) (Aritmetica, error) {
	if bits < 2 || bits > 64 {
		return Aritmetica{}, fmt.Errorf("%w: %d bits", ErrConfiguracion, bits)
	}
	mascara := ^uint64(0)
	if bits < 64 {
		mascara = uint64(1)<<bits - 1
	}
	// Con BigStride 1 el pass maximo seria 0 y Normalizar dejaria a todos en base
	if bigStride < 2 || bigStride > mascara {
		return Aritmetica{}, fmt.Errorf("%w: big stride %d con %d bits", ErrConfiguracion, bigStride, bits)
	}
	return Aritmetica{
		bits:      bits,
		bigStride: bigStride,
		mascara:   mascara,
		mitad:     uint64(1) << (bits - 1),
	}, nil
}

func Debe(bits uint, bigStride uint64) Aritmetica {
	a, err := Nueva(bits, bigStride)
	if err != nil {
		panic(err)
	}
	return a
}

func (a Aritmetica) Bits() uint        { return a.bits }
func (a Aritmetica) BigStride() uint64 { return a.bigStride }

// Mitad es H = M/2.
func (a Aritmetica) Mitad() uint64 { return a.mitad }

// Mayor valor representable, M - 1.
func (a Aritmetica) Mascara() uint64 { return a.mascara }

// PassMaximo es el pass de la prioridad minima y acota la dispersion de la cola de ready.
func (a Aritmetica) PassMaximo() uint64 {
	return a.bigStride / PrioridadMinima
}

func (a Aritmetica) Reducir(v uint64) uint64 {
	return v & a.mascara
}

// Distancia devuelve (x - y) mod M.
func (a Aritmetica) Distancia(x, y uint64) uint64 {
	return (x - y) & a.mascara
}

// Comparar devuelve -1 si x va antes que y, 0 si son iguales y +1 si va despues.
func (a Aritmetica) Comparar(x, y uint64) int {
	d := a.Distancia(x, y)
	switch {
	case d == 0:
		return 0
	case d < a.mitad:
		return 1
	case d > a.mitad:
		return -1
	}
	// d == H no se alcanza mientras valga la cota de dispersion; se desempata con
	// el valor crudo para que el orden siga siendo antisimetrico.
	if a.Reducir(x) < a.Reducir(y) {
		return -1
	}
	return 1
}

func (a Aritmetica) Menor(x, y uint64) bool {
	return a.Comparar(x, y) < 0
}

func (a Aritmetica) Avanzar(s, pass uint64) uint64 {
	return (s + pass) & a.mascara
}

// Pass calcula BigStride / prioridad. Si la prioridad supera a BigStride el
// cociente daria 0 y el hilo no avanzaria nunca, asi que el minimo es 1.
func (a Aritmetica) Pass(prioridad int) (uint64, error) {
	if prioridad < PrioridadMinima {
		return 0, fmt.Errorf("prioridad %d: %w", prioridad, ErrPrioridadInvalida)
	}
	pass := a.bigStride / uint64(prioridad)
	if pass == 0 {
		pass = 1
	}
	return pass, nil
}

// Normalizar acerca un stride al tiempo virtual del planificador. Un stride que
// esta atras de base (un hilo que estuvo bloqueado mucho tiempo) o adelante por
// mas de un pass maximo (solo posible si dio la vuelta mientras dormia) vuelve a
// base; asi la cola de ready nunca se dispersa mas de PassMaximo.
func (a Aritmetica) Normalizar(s, base uint64) uint64 {
	if a.Distancia(s, base) > a.PassMaximo() {
		return a.Reducir(base)
	}
	return a.Reducir(s)
}
