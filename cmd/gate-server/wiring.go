package main

import (
	"net/http"

	"group-mail/internal/app/audit"
	"group-mail/internal/app/config"
	"group-mail/internal/app/database"
	"group-mail/internal/app/delivery"
	"group-mail/internal/app/email"
	"group-mail/internal/app/gate"
	"group-mail/internal/app/handlers"
	"group-mail/internal/app/keys"
	"group-mail/internal/app/mailer"
	"group-mail/internal/app/signal"
	"group-mail/internal/app/verifier"
	"group-mail/pkg/appbuilder"
	"group-mail/pkg/logger"
	"group-mail/pkg/rabbitmq"
	"group-mail/pkg/rest"
	"group-mail/pkg/utilities"
)

const logPublisherAlias rabbitmq.PublisherAlias = "LogPublisher"

type builder = appbuilder.AppBuilder[config.GateConfigJson, config.GateConfig]

func attachLogSink(a *builder) {
	logPublisher := rabbitmq.GetPublisher(logPublisherAlias)
	if logPublisher == nil {
		return
	}

	logSink := rabbitmq.CreateRabbitmqLoggerSink(serviceName, logPublisher)
	logger.AddSinkToLoggerInstance(a.Logger, logSink)
	a.Logger.Info("Log lines forwarded to Rabbitmq")
}

func wire(a *builder) {
	cfg := a.Config

	models := append([]any{&email.Record{}}, audit.Models()...)
	db, err := database.Connect(cfg.GetDatabaseConfig(), a.Logger, models...)
	utilities.FailOnError(err, "Failed to connect to database")
	a.OnShutdown(func() error { return database.Close(db) })

	records := email.NewRepository(db)
	auditService := audit.NewService(audit.NewRepository(db))

	// ----- MAIL DELIVERY -----
	var m mailer.Mailer = mailer.NewLogMailer(a.Logger)
	if cfg.MailConf.SMTPEnabled() {
		m = mailer.NewSMTPMailer(cfg.MailConf.SMTP, a.Logger)
	} else {
		a.Logger.Warn("No smtp host configured, accepted mail is only logged")
	}
	deliveryService := delivery.NewService(records, m, cfg.DeliveryConfig(), a.Logger)

	var dispatcher delivery.Dispatcher = delivery.NewInlineDispatcher(deliveryService)
	if a.Conn != nil {
		if publisher := rabbitmq.GetPublisher(delivery.MailPublisherAlias); publisher != nil {
			dispatcher = delivery.NewQueueDispatcher(publisher)
		}
		if consumer := rabbitmq.GetConsumer(delivery.MailConsumerAlias); consumer != nil {
			a.AddWorkerServices(delivery.NewMailWorker(deliveryService, consumer, a.Logger))
		}
		if consumer := rabbitmq.GetConsumer(audit.LogConsumerAlias); consumer != nil {
			a.AddWorkerServices(audit.NewLogSinkWorker(auditService, consumer))
		}
	}

	outbox := delivery.NewOutboxWorker(records, dispatcher, cfg.DeliveryConfig(), a.Logger)
	a.AddWorkerServices(outbox)
	a.OnShutdown(outbox.Stop)

	// ----- GATE -----
	fetcher := keys.NewFetcher(cfg.KeysConf, &http.Client{}, a.Logger)
	signalBuilder := signal.NewBuilder(
		fetcher,
		a.Logger,
		signal.WithCapacity(cfg.SignalConf.Capacity),
		signal.WithFetchConcurrency(cfg.SignalConf.FetchConcurrency),
	)

	pool, err := verifier.New(cfg.VerifierConf, a.Logger)
	utilities.FailOnError(err, "Failed to set up proof verifier")

	g := gate.New(signalBuilder, pool, records, dispatcher, auditService, cfg.GateSettings(), a.Logger)

	// ----- HTTP -----
	a.AddGinMiddleware(
		rest.NewMiddleware("*", rest.RequestId()),
		rest.NewMiddleware("*", rest.RequestLogger(a.Logger)),
		rest.NewMiddleware("*", rest.CORSMiddleware(cfg.GetRestConfig().AllowedOrigin)),
		rest.NewMiddleware("*", rest.BodyLimit(cfg.GetRestConfig().MaxBodyBytes)),
	)

	a.AddGinRoutes(handlers.Routes(
		handlers.NewEmailHandler(g, records),
		handlers.NewSignalHandler(signalBuilder),
		audit.NewHandler(auditService),
		handlers.NewHealthHandler(version),
	)...)
}
