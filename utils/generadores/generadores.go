package generadores

import "gvisor.dev/gvisor/pkg/sync"

// Genera PIDs únicos (el tipo de dato uint32 es para que no tome valores negativos).
// El primer PID entregado es 1.
type GeneradorPID struct {
	mu     sync.Mutex
	ultimo uint32
}

func (g *GeneradorPID) Generar_PID() uint32 {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ultimo++
	return g.ultimo
}

// Genera los TIDs de un proceso. El primero es 0 (hilo main) y nunca se reutilizan,
// asi una referencia vieja a un hilo finalizado no puede apuntar a un hilo nuevo.
type GeneradorTID struct {
	siguiente uint32
}

func (g *GeneradorTID) Generar_TID() uint32 {
	tid := g.siguiente
	g.siguiente++
	return tid
}

// Asigna descriptores reutilizando siempre el menor libre
type GeneradorFD struct {
	usados []bool
}

func (g *GeneradorFD) Asignar() int {
	for fd, usado := range g.usados {
		if !usado {
			g.usados[fd] = true
			return fd
		}
	}
	g.usados = append(g.usados, true)
	return len(g.usados) - 1
}

// Devuelve false si el descriptor no estaba asignado
func (g *GeneradorFD) Liberar(fd int) bool {
	if fd < 0 || fd >= len(g.usados) || !g.usados[fd] {
		return false
	}
	g.usados[fd] = false
	return true
}
