package conexiones

// Importamos librerias
import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"
)

// Recibe por parametro el puerto, el handler y el logger. Bloquea hasta que el
// contexto se cancela o el servidor falla.
func LevantarServidor(ctx context.Context, port string, handler http.Handler, logger *slog.Logger) error {
	logger.Info(fmt.Sprintf("Levantando servidor en el puerto: %s", port))
	srv := &http.Server{Addr: ":" + port, Handler: handler}

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		//Manejo de errores
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Error al levantar el servidor: ", "error", err)
			return err
		}
		return nil
	case <-ctx.Done():
		apagado, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		logger.Info(fmt.Sprintf("Apagando servidor en el puerto: %s", port))
		return srv.Shutdown(apagado)
	}
}
