package nucleo

import (
	"errors"
	"fmt"
	"time"

	"github.com/sisoputnfrba/tp-golang-stride/kernel/utils"
	"github.com/sisoputnfrba/tp-golang-stride/utils/types"
)

var ErrTiempoInvalido = errors.New("el tiempo no puede ser negativo")

// Sleep bloquea al hilo que ejecuta por al menos ms milisegundos. Lo despierta el
// primer Tick posterior al vencimiento, asi que sin reloj no se despierta nunca.
func (n *Nucleo) Sleep(ms int) error {
	n.mu.Lock()
	defer n.mu.Unlock()

	tcb, err := n.actual()
	if err != nil {
		return err
	}
	if ms < 0 {
		return fmt.Errorf("sleep de %d ms: %w", ms, ErrTiempoInvalido)
	}
	vence := n.ahora().Add(time.Duration(ms) * time.Millisecond)
	n.dormidos.Agregar(vence, tcb.Ref())
	hilos{n}.Bloquear(tcb.Ref(), utils.Bloqueo{Motivo: utils.SLEEP})
	n.planificar()
	return nil
}

func (n *Nucleo) despertarDormidos() {
	for _, ref := range n.dormidos.Vencidos(n.ahora()) {
		hilos{n}.Despertar(ref)
	}
}

// ContarSyscall le suma una llamada al hilo que ejecuta y lo devuelve
func (n *Nucleo) ContarSyscall(nombre string) (types.Ref, bool) {
	n.mu.Lock()
	defer n.mu.Unlock()

	tcb, err := n.actual()
	if err != nil {
		return types.Ref{}, false
	}
	if tcb.Syscalls == nil {
		tcb.Syscalls = make(map[string]int)
	}
	tcb.Syscalls[nombre]++
	return tcb.Ref(), true
}

// TaskInfo: estado, llamadas por syscall y milisegundos desde que el hilo ejecuto
// por primera vez
func (n *Nucleo) TaskInfo() (types.TaskInfo, error) {
	n.mu.Lock()
	defer n.mu.Unlock()

	tcb, err := n.actual()
	if err != nil {
		return types.TaskInfo{}, err
	}
	info := types.TaskInfo{
		PID:      tcb.PID,
		TID:      tcb.TID,
		Estado:   tcb.Estado.String(),
		Syscalls: make(map[string]int, len(tcb.Syscalls)),
	}
	for nombre, cantidad := range tcb.Syscalls {
		info.Syscalls[nombre] = cantidad
	}
	if !tcb.PrimeraEjecucion.IsZero() {
		info.Tiempo = n.ahora().Sub(tcb.PrimeraEjecucion).Milliseconds()
	}
	return info, nil
}
