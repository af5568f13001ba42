package appbuilder

import (
	"errors"
	"fmt"
	"io/fs"

	"group-mail/pkg/logger"
	"group-mail/pkg/rabbitmq"
	"group-mail/pkg/rest"
	"group-mail/pkg/utilities"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
)

type RestConfig struct {
	Port          uint16
	AllowedOrigin string
	ReleaseMode   bool
	MaxBodyBytes  int64
}

type AppConfig interface {
	GetLoggerConfig() logger.LoggerConfig
	GetRabbitmqConfig() rabbitmq.RabbitmqConfig
	GetRestConfig() RestConfig
}

// AppBuilder wires a service together step by step. Failures during
// bootstrap are fatal.
type AppBuilder[T utilities.JsonConfigObj[U], U AppConfig] struct {
	Logger         *logger.Logger
	Config         U
	Conn           *amqp.Connection
	workerServices []rabbitmq.WorkerService
	middlewares    []rest.Middleware
	routes         []rest.Route
	closers        []func() error
	engine         *gin.Engine
}

func New[T utilities.JsonConfigObj[U], U AppConfig]() *AppBuilder[T, U] {
	return &AppBuilder[T, U]{}
}

func (a *AppBuilder[T, U]) InitLogger(loggerArgs logger.GlobalLoggerConfig) *AppBuilder[T, U] {
	logger.InitDefaultLogger(loggerArgs)
	a.Logger = logger.Default()
	a.Logger.Info("Logger initialized")

	return a
}

// ResolveEnvironment loads .env files into the process environment. Missing files are skipped.
func (a *AppBuilder[T, U]) ResolveEnvironment(files ...string) *AppBuilder[T, U] {
	if len(files) == 0 {
		files = []string{".env"}
	}

	for _, file := range files {
		err := godotenv.Load(file)
		if errors.Is(err, fs.ErrNotExist) {
			a.Logger.Debugf("No %s file, using process environment", file)
			continue
		}
		if err != nil {
			a.Logger.Fatalf(err, "Failed to load environment file %s", file)
		}
		a.Logger.Infof("Environment loaded from %s", file)
	}

	return a
}

func (a *AppBuilder[T, U]) LoadConfig(filePath string) *AppBuilder[T, U] {
	a.Logger.Infof("Preparing to load config from %s ...", filePath)
	config, err := utilities.ReadConfig[T, U](filePath)
	if err != nil {
		a.Logger.Fatal(err, "Failed to load config")
	}

	a.Config = config
	a.Logger.WithLevel(config.GetLoggerConfig().LogLevel)
	a.Logger.Info("Config successfully loaded.")
	return a
}

// WithOption runs an arbitrary wiring step against the builder.
func (a *AppBuilder[T, U]) WithOption(option func(*AppBuilder[T, U])) *AppBuilder[T, U] {
	option(a)
	return a
}

// OnShutdown registers a cleanup run by Application.Start after the server stops.
func (a *AppBuilder[T, U]) OnShutdown(closer func() error) *AppBuilder[T, U] {
	a.closers = append(a.closers, closer)
	return a
}

func (a *AppBuilder[T, U]) RabbitmqEnabled() bool {
	return a.Config.GetRabbitmqConfig().Enabled
}

func (a *AppBuilder[T, U]) InitRabbitmqConnection() *AppBuilder[T, U] {
	rabbitmqConfig := a.Config.GetRabbitmqConfig()
	if !rabbitmqConfig.Enabled {
		a.Logger.Warn("Rabbitmq disabled in config, skipping connection")
		return a
	}

	a.Logger.Info("Preparing to connect to Rabbitmq server...")
	conn, err := rabbitmq.ConnectToRabbitmq(rabbitmqConfig)
	if err != nil {
		a.Logger.Fatal(err, "Could not connect to Rabbitmq")
	}

	if err := rabbitmq.DeclareTopology(conn, rabbitmqConfig); err != nil {
		a.Logger.Fatal(err, "Could not declare Rabbitmq topology")
	}

	a.Conn = conn
	a.closers = append(a.closers, conn.Close)
	a.Logger.Info("Connection with Rabbitmq server established")

	return a
}

func (a *AppBuilder[T, U]) InitRabbitmqRegistries() *AppBuilder[T, U] {
	if a.Conn == nil {
		return a
	}

	a.Logger.Info("Initializing Rabbitmq registries from config")
	rabbitmqConf := a.Config.GetRabbitmqConfig()

	rabbitmq.InitializeConsumerRegistry(a.Conn, rabbitmqConf.ConsumersConfig)
	rabbitmq.InitializePublisherRegistry(a.Conn, rabbitmqConf.PublishersConfig)
	a.Logger.Info("Successfully initialized Rabbitmq registries from config")

	return a
}

func (a *AppBuilder[T, U]) AddWorkerServices(workerServices ...rabbitmq.WorkerService) *AppBuilder[T, U] {
	for _, ws := range workerServices {
		if ws == nil {
			continue
		}
		a.Logger.Infof("Adding %s worker service", ws.GetServiceName())
		a.workerServices = append(a.workerServices, ws)
	}
	return a
}

func (a *AppBuilder[T, U]) AddGinMiddleware(middlewares ...rest.Middleware) *AppBuilder[T, U] {
	a.middlewares = append(a.middlewares, middlewares...)
	return a
}

func (a *AppBuilder[T, U]) AddGinRoutes(routes ...rest.Route) *AppBuilder[T, U] {
	a.Logger.Infof("Adding %d Gin REST API routes to Application...", len(routes))
	a.routes = append(a.routes, routes...)
	return a
}

func (a *AppBuilder[T, U]) InitGinRouter() *AppBuilder[T, U] {
	a.Logger.Info("Initializing Gin Router...")
	restConfig := a.Config.GetRestConfig()
	if restConfig.ReleaseMode {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	rest.Register(router, a.middlewares, a.routes)

	a.engine = router
	a.Logger.Info("Successfully registered REST API routes.")
	return a
}

func (a *AppBuilder[T, U]) Build() *Application {
	return &Application{
		Logger:         a.Logger,
		Addr:           fmt.Sprintf("0.0.0.0:%d", a.Config.GetRestConfig().Port),
		WorkerServices: a.workerServices,
		Engine:         a.engine,
		closers:        a.closers,
	}
}
