package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/sisoputnfrba/tp-golang-stride/kernel/client"
	"github.com/sisoputnfrba/tp-golang-stride/kernel/nucleo"
	"github.com/sisoputnfrba/tp-golang-stride/kernel/server"
	"github.com/sisoputnfrba/tp-golang-stride/kernel/utils"
	"github.com/sisoputnfrba/tp-golang-stride/utils/logging"
)

func main() {

	// Inicializamos la configuracion y el logger
	utils.Configs = utils.Iniciar_Configuracion("config-pd.json")
	logger := logging.Iniciar_Logger("kernel.log", utils.Configs.LogLevel)

	// Sin modulo recursos configurado los descriptores viven en memoria
	var recursos nucleo.TablaRecursos
	if utils.Configs.IpRecursos != "" {
		recursos = client.TablaRemota{IP: utils.Configs.IpRecursos, Puerto: utils.Configs.PortRecursos, Logger: logger}
	}

	n, err := nucleo.Nuevo(utils.Configs, recursos, logger)
	if err != nil {
		logger.Error(fmt.Sprintf("No se pudo iniciar el nucleo: %s", err.Error()))
		os.Exit(1)
	}

	// Proceso inicial opcional, con su prioridad
	if len(os.Args) > 1 {
		prioridad, err := strconv.Atoi(os.Args[1])
		if err != nil {
			fmt.Println("Error: La prioridad del proceso inicial debe ser un número entero.")
			panic(err)
		}
		if _, err := n.ProcessCreate(prioridad); err != nil {
			panic(err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Interrupcion de fin de quantum
	if utils.Configs.Quantum > 0 {
		go n.Reloj(ctx, time.Duration(utils.Configs.Quantum)*time.Millisecond)
	}

	// Despacha cuando la CPU queda libre
	go n.Despachador(ctx)

	// Iniciamos Kernel como server
	if err := server.Iniciar_kernel(ctx, n, logger); err != nil && !errors.Is(err, context.Canceled) {
		logger.Error(fmt.Sprintf("El kernel termino con error: %s", err.Error()))
		os.Exit(1)
	}
}
