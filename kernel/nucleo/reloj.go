package nucleo

import (
	"context"
	"fmt"
	"time"
)

// Reloj genera la interrupcion de fin de quantum hasta que se cancela el contexto
func (n *Nucleo) Reloj(ctx context.Context, quantum time.Duration) error {
	if quantum <= 0 {
		return fmt.Errorf("quantum %v: tiene que ser positivo", quantum)
	}
	ticker := time.NewTicker(quantum)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			n.Tick()
		}
	}
}

// Despachador pone un hilo en la CPU cada vez que alguno pasa a READY y el
// procesador esta libre.
func (n *Nucleo) Despachador(ctx context.Context) error {
	for {
		if err := n.hayTrabajo.Wait(ctx); err != nil {
			return err
		}
		if ref, hay := n.Planificar(); hay {
			n.logger.Debug(fmt.Sprintf("## Despachador: ejecuta %v", ref))
		}
	}
}
