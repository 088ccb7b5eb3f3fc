package utils

import "testing"

func TestValidar(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr bool
	}{
		{"vacia toma los valores por defecto", Config{}, false},
		{"8 bits", Config{StrideBits: 8, BigStride: 200}, false},
		{"big stride no entra", Config{StrideBits: 8, BigStride: 256}, true},
		{"big stride 1", Config{BigStride: 1}, true},
		{"big stride 2", Config{BigStride: 2}, false},
		{"mas de 64 bits", Config{StrideBits: 65}, true},
		{"prioridad 1", Config{DefaultPriority: 1}, true},
		{"politica desconocida", Config{MutexPolicy: "SPIN"}, true},
		{"liberar", Config{MutexPolicy: POLITICA_LIBERAR}, false},
		{"quantum negativo", Config{Quantum: -1}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := tt.config
			if err := c.Validar(); (err != nil) != tt.wantErr {
				t.Errorf("Validar() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidarCompletaLosDefectos(t *testing.T) {
	var c Config
	if err := c.Validar(); err != nil {
		t.Fatal(err)
	}
	want := Config{BigStride: 100_000, StrideBits: 64, DefaultPriority: 16, MutexPolicy: POLITICA_TRASPASO, LogLevel: "info"}
	if c != want {
		t.Errorf("Validar() dejo %+v, want %+v", c, want)
	}
}
