package utils

import (
	"encoding/json"
	"log"
	"os"
)

type Config struct {
	Port        int    `json:"port"`
	MaxAbiertos int    `json:"max_abiertos"` // por proceso; 0 es sin limite
	LogLevel    string `json:"log_level"`
}

var Configs Config

func Iniciar_configuracion(filePath string) Config {

	configFile, err := os.Open(filePath)
	if err != nil {
		log.Fatal(err.Error())
	}
	defer configFile.Close()

	jsonParser := json.NewDecoder(configFile)
	if err := jsonParser.Decode(&Configs); err != nil {
		log.Fatal(err.Error())
	}
	if Configs.MaxAbiertos < 0 {
		log.Fatalf("max_abiertos %d: no puede ser negativo", Configs.MaxAbiertos)
	}

	return Configs
}
