package utils

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/sisoputnfrba/tp-golang-stride/utils/conexiones"
	"github.com/sisoputnfrba/tp-golang-stride/utils/tablas"
	"github.com/sisoputnfrba/tp-golang-stride/utils/types"
)

func Iniciar_recursos(ctx context.Context, tabla *tablas.Tabla, logger *slog.Logger) error {
	return conexiones.LevantarServidor(ctx, strconv.Itoa(Configs.Port), Rutas(tabla, logger), logger)
}

func Rutas(tabla *tablas.Tabla, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()

	// Endpoints
	mux.HandleFunc("POST /ABRIR", ABRIR(tabla, logger))
	mux.HandleFunc("POST /CERRAR", CERRAR(tabla, logger))
	mux.HandleFunc("POST /CERRAR_PROCESO/{pid}", CERRAR_PROCESO(tabla, logger))

	return mux
}

func ABRIR(tabla *tablas.Tabla, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pedido types.AbrirRecurso
		if err := json.NewDecoder(r.Body).Decode(&pedido); err != nil {
			logger.Error(fmt.Sprintf("Error al decodificar mensaje: %s", err.Error()))
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Error al decodificar mensaje"))
			return
		}

		fd, err := tabla.Abrir(types.Ref{PID: pedido.PID, TID: pedido.TID}, pedido.Nombre)
		if errors.Is(err, tablas.ErrSinEspacio) {
			logger.Error(fmt.Sprintf("No hay espacio para abrir %s: %s", pedido.Nombre, err.Error()))
			w.WriteHeader(http.StatusInsufficientStorage)
			w.Write([]byte("No hay espacio para abrir el recurso"))
			return
		}
		if err != nil {
			logger.Error(fmt.Sprintf("Error al abrir %s: %s", pedido.Nombre, err.Error()))
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		respuesta, err := json.Marshal(types.RecursoAbierto{FD: fd})
		if err != nil {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		logger.Info(fmt.Sprintf("## (%d:%d) Recurso Abierto: %s - FD: %d", pedido.PID, pedido.TID, pedido.Nombre, fd))
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write(respuesta)
	}
}

func CERRAR(tabla *tablas.Tabla, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var pedido types.CerrarRecurso
		if err := json.NewDecoder(r.Body).Decode(&pedido); err != nil {
			logger.Error(fmt.Sprintf("Error al decodificar mensaje: %s", err.Error()))
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("Error al decodificar mensaje"))
			return
		}

		nombre, _ := tabla.Nombre(pedido.PID, pedido.FD)
		if err := tabla.Cerrar(pedido.PID, pedido.FD); err != nil {
			logger.Warn(err.Error())
			w.WriteHeader(http.StatusNotFound)
			w.Write([]byte("El recurso no esta abierto"))
			return
		}
		logger.Info(fmt.Sprintf("## PID: %d - Recurso Cerrado: %s - FD: %d", pedido.PID, nombre, pedido.FD))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}

// IMPORTANTE! El pid viene en el path
func CERRAR_PROCESO(tabla *tablas.Tabla, logger *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		pid, err := strconv.ParseUint(r.PathValue("pid"), 10, 32)
		if err != nil {
			logger.Error(fmt.Sprintf("PID invalido: %s", r.PathValue("pid")))
			w.WriteHeader(http.StatusBadRequest)
			w.Write([]byte("PID invalido"))
			return
		}

		abiertos := tabla.Abiertos(uint32(pid))
		if err := tabla.CerrarProceso(uint32(pid)); err != nil {
			logger.Error(err.Error())
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		logger.Info(fmt.Sprintf("## PID: %d - Se cierran %d recursos", pid, len(abiertos)))
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	}
}
