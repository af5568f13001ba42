package main

import (
	"group-mail/internal/app/config"
	"group-mail/pkg/appbuilder"
	"group-mail/pkg/logger"
	"group-mail/pkg/utilities"
)

const (
	serviceName = "group-mail"
	version     = "1.0.0"
)

// @title           Group Mail Gate API
// @version         1.0
// @description     Relays email on behalf of a group after verifying a membership proof
// @BasePath /v1
func main() {
	appbuilder.New[config.GateConfigJson, config.GateConfig]().
		InitLogger(logger.GlobalLoggerConfig{
			Args: []logger.LoggerArg{{Key: "service", Value: serviceName}},
		}).
		ResolveEnvironment().
		LoadConfig(utilities.EnvOr("GATE_CONFIG", "config.json")).

		// ----- RABBITMQ -----
		InitRabbitmqConnection().
		InitRabbitmqRegistries().
		WithOption(attachLogSink).

		// ----- DATABASE, SERVICES, WORKERS, ROUTES -----
		WithOption(wire).
		InitGinRouter().
		Build().
		Start()
}
