package client

import (
	"encoding/json"
	"errors"
	"io"
	"net"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"

	"github.com/sisoputnfrba/tp-golang-stride/kernel/nucleo"
	"github.com/sisoputnfrba/tp-golang-stride/utils/logging"
	"github.com/sisoputnfrba/tp-golang-stride/utils/types"
)

// recursosFake responde como el modulo recursos con un solo descriptor abierto (el 3)
func recursosFake(t *testing.T) TablaRemota {
	t.Helper()
	mux := http.NewServeMux()
	mux.HandleFunc("POST /ABRIR", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(types.RecursoAbierto{FD: 3})
	})
	mux.HandleFunc("POST /CERRAR", func(w http.ResponseWriter, r *http.Request) {
		var cerrar types.CerrarRecurso
		json.NewDecoder(r.Body).Decode(&cerrar)
		if cerrar.FD != 3 {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	mux.HandleFunc("POST /CERRAR_PROCESO/{pid}", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("pid") != "7" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		w.WriteHeader(http.StatusOK)
	})
	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)

	host, puerto, err := net.SplitHostPort(srv.Listener.Addr().String())
	if err != nil {
		t.Fatal(err)
	}
	p, _ := strconv.Atoi(puerto)
	return TablaRemota{IP: host, Puerto: p, Logger: logging.Nuevo_Logger(io.Discard, "error")}
}

func TestTablaRemota(t *testing.T) {
	tabla := recursosFake(t)

	fd, err := tabla.Abrir(types.Ref{PID: 7, TID: 1}, "datos.txt")
	if err != nil || fd != 3 {
		t.Fatalf("Abrir() = %d, %v; want 3", fd, err)
	}
	if err := tabla.Cerrar(7, 3); err != nil {
		t.Errorf("Cerrar(7, 3) error = %v", err)
	}
	if err := tabla.Cerrar(7, 4); !errors.Is(err, nucleo.ErrRecursoInexistente) {
		t.Errorf("Cerrar(7, 4) error = %v, want ErrRecursoInexistente", err)
	}
	if err := tabla.CerrarProceso(7); err != nil {
		t.Errorf("CerrarProceso(7) error = %v", err)
	}
	if err := tabla.CerrarProceso(8); err == nil {
		t.Error("CerrarProceso(8) no devolvio error")
	}
}

func TestTablaRemotaSinServidor(t *testing.T) {
	tabla := TablaRemota{IP: "127.0.0.1", Puerto: 1, Logger: logging.Nuevo_Logger(io.Discard, "error")}
	if _, err := tabla.Abrir(types.Ref{PID: 1}, "x"); err == nil {
		t.Error("Abrir() sin servidor no devolvio error")
	}
}

// La tabla remota se puede usar como tabla de recursos del nucleo
var _ nucleo.TablaRecursos = TablaRemota{}
