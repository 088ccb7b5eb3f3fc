package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/sisoputnfrba/tp-golang-stride/recursos/utils"
	"github.com/sisoputnfrba/tp-golang-stride/utils/logging"
	"github.com/sisoputnfrba/tp-golang-stride/utils/tablas"
)

func main() {

	// Inicio configs
	utils.Configs = utils.Iniciar_configuracion("config-pd.json")

	// Inicio log
	logger := logging.Iniciar_Logger("recursos.log", utils.Configs.LogLevel)

	// Tabla de descriptores por proceso
	tabla := tablas.Nueva(utils.Configs.MaxAbiertos)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Iniciar recursos como server
	if err := utils.Iniciar_recursos(ctx, tabla, logger); err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}
