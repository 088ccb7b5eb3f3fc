package logging

import (
	"io"
	"log/slog"
	"os"
)

// Se le pasa por parametro la ruta del archivo de log y el nivel de log que está en el config
func Iniciar_Logger(rutaArchivo string, nivel string) *slog.Logger {
	// Abrir el archivo para log
	archivoLog, err := os.OpenFile(rutaArchivo, os.O_CREATE|os.O_APPEND|os.O_RDWR, 0666)
	if err != nil {
		panic(err)
	}

	return Nuevo_Logger(io.MultiWriter(archivoLog, os.Stdout), nivel)
}

// Igual que Iniciar_Logger pero escribe en cualquier writer (los tests usan un buffer)
func Nuevo_Logger(w io.Writer, nivel string) *slog.Logger {
	handlerOptions := &slog.HandlerOptions{
		Level: Nivel(nivel),
	}
	return slog.New(slog.NewTextHandler(w, handlerOptions))
}

// Convertir el nivel de string a slog.Level
func Nivel(nivel string) slog.Level {
	switch nivel {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo // Nivel por defecto
	}
}
