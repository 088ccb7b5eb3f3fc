package utils

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
)

const (
	POLITICA_TRASPASO = "TRASPASO" // el unlock le pasa el lock directo al primero de la cola
	POLITICA_LIBERAR  = "LIBERAR"  // el unlock libera y despierta; el despertado reintenta
)

type Config struct {
	Port            int    `json:"port"`
	IpRecursos      string `json:"ip_recursos"`
	PortRecursos    int    `json:"port_recursos"`
	BigStride       uint64 `json:"big_stride"`
	StrideBits      uint   `json:"stride_bits"`
	DefaultPriority int    `json:"default_priority"`
	MutexPolicy     string `json:"mutex_policy"`
	Quantum         int    `json:"quantum"`
	LogLevel        string `json:"log_level"`
}

var Configs Config

func Iniciar_Configuracion(filePath string) Config {

	configFile, err := os.Open(filePath)
	if err != nil {
		log.Fatal(err.Error())
	}
	defer configFile.Close()

	var config Config
	jsonParser := json.NewDecoder(configFile)
	if err := jsonParser.Decode(&config); err != nil {
		log.Fatal(err.Error())
	}
	if err := config.Validar(); err != nil {
		log.Fatal(err.Error())
	}

	Configs = config
	return Configs
}

// Completa los valores por defecto y rechaza combinaciones imposibles
func (c *Config) Validar() error {
	if c.BigStride == 0 {
		c.BigStride = 100_000
	}
	if c.StrideBits == 0 {
		c.StrideBits = 64
	}
	if c.DefaultPriority == 0 {
		c.DefaultPriority = 16
	}
	if c.MutexPolicy == "" {
		c.MutexPolicy = POLITICA_TRASPASO
	}
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}

	if c.BigStride < 2 {
		return fmt.Errorf("big_stride %d: tiene que ser >= 2", c.BigStride)
	}
	if c.StrideBits > 64 {
		return fmt.Errorf("stride_bits %d: maximo 64", c.StrideBits)
	}
	if c.StrideBits < 64 && c.BigStride >= uint64(1)<<c.StrideBits {
		return fmt.Errorf("big_stride %d no entra en un stride de %d bits", c.BigStride, c.StrideBits)
	}
	if c.DefaultPriority < 2 {
		return fmt.Errorf("default_priority %d: tiene que ser >= 2", c.DefaultPriority)
	}
	if c.MutexPolicy != POLITICA_TRASPASO && c.MutexPolicy != POLITICA_LIBERAR {
		return fmt.Errorf("mutex_policy %q no reconocida", c.MutexPolicy)
	}
	if c.Quantum < 0 {
		return fmt.Errorf("quantum %d: no puede ser negativo", c.Quantum)
	}
	return nil
}
