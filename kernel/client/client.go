package client

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/sisoputnfrba/tp-golang-stride/kernel/nucleo"
	"github.com/sisoputnfrba/tp-golang-stride/utils/types"
)

var cliente = &http.Client{Timeout: 5 * time.Second}

// Manda el dato como JSON por POST. Devuelve el status y el cuerpo de la respuesta.
func Enviar_Body[T any](dato T, ip string, puerto int, endpoint string, logger *slog.Logger) (int, []byte, error) {
	body, err := json.Marshal(dato)
	if err != nil {
		logger.Error("Se produjo un error codificando el mensaje")
		return 0, nil, err
	}

	url := fmt.Sprintf("http://%s:%d/%s", ip, puerto, endpoint)
	resp, err := cliente.Post(url, "application/json", bytes.NewBuffer(body))
	if err != nil {
		logger.Error(fmt.Sprintf("Se produjo un error enviando mensaje a ip:%s puerto:%d", ip, puerto))
		return 0, nil, err
	}
	// Aseguramos que el body sea cerrado
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		logger.Error("Se produjo un error leyendo el cuerpo de la respuesta")
		return resp.StatusCode, nil, err
	}
	logger.Debug("Mensaje enviado",
		slog.Int("puerto", puerto),
		slog.String("endpoint", endpoint),
		slog.Int("status", resp.StatusCode),
	)
	return resp.StatusCode, respBody, nil
}

// IMPORTANTE! Es QueryPath, no se le pasa un Body
func Enviar_QueryPath[T any](dato T, ip string, puerto int, endpoint string, verbo string, logger *slog.Logger) (int, error) {
	url := fmt.Sprintf("http://%s:%d/%s/%v", ip, puerto, endpoint, dato)
	req, err := http.NewRequest(verbo, url, nil)
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := cliente.Do(req)
	if err != nil {
		logger.Error(fmt.Sprintf("Error al enviar la solicitud: %v", err))
		return 0, err
	}
	defer resp.Body.Close()
	return resp.StatusCode, nil
}

// TablaRemota es la tabla de recursos del modulo recursos, vista desde el kernel
type TablaRemota struct {
	IP     string
	Puerto int
	Logger *slog.Logger
}

func (t TablaRemota) Abrir(ref types.Ref, nombre string) (int, error) {
	status, body, err := Enviar_Body(types.AbrirRecurso{PID: ref.PID, TID: ref.TID, Nombre: nombre}, t.IP, t.Puerto, "ABRIR", t.Logger)
	if err != nil {
		return 0, err
	}
	if status != http.StatusOK {
		return 0, fmt.Errorf("ABRIR %s: el modulo recursos respondio %d", nombre, status)
	}
	var abierto types.RecursoAbierto
	if err := json.Unmarshal(body, &abierto); err != nil {
		return 0, fmt.Errorf("ABRIR %s: respuesta invalida: %w", nombre, err)
	}
	return abierto.FD, nil
}

func (t TablaRemota) Cerrar(pid uint32, fd int) error {
	status, _, err := Enviar_Body(types.CerrarRecurso{PID: pid, FD: fd}, t.IP, t.Puerto, "CERRAR", t.Logger)
	if err != nil {
		return err
	}
	switch status {
	case http.StatusOK:
		return nil
	case http.StatusNotFound:
		return fmt.Errorf("pid %d fd %d: %w", pid, fd, nucleo.ErrRecursoInexistente)
	}
	return fmt.Errorf("CERRAR pid %d fd %d: el modulo recursos respondio %d", pid, fd, status)
}

func (t TablaRemota) CerrarProceso(pid uint32) error {
	status, err := Enviar_QueryPath(pid, t.IP, t.Puerto, "CERRAR_PROCESO", http.MethodPost, t.Logger)
	if err != nil {
		return err
	}
	if status != http.StatusOK {
		return fmt.Errorf("CERRAR_PROCESO %d: el modulo recursos respondio %d", pid, status)
	}
	return nil
}
