package appbuilder

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"group-mail/pkg/logger"
	"group-mail/pkg/rabbitmq"

	"github.com/gin-gonic/gin"
)

const shutdownTimeout = 10 * time.Second

type Application struct {
	Logger         *logger.Logger
	Addr           string
	WorkerServices []rabbitmq.WorkerService
	Engine         *gin.Engine
	closers        []func() error
}

// Start runs worker services in the background and serves HTTP until SIGINT or SIGTERM.
func (a *Application) Start() {
	a.Logger.Info("Starting Application runtime...")

	for _, ws := range a.WorkerServices {
		a.Logger.Infof("Starting %s WorkerService", ws.GetServiceName())
		go ws.StartService()
	}

	server := &http.Server{
		Addr:              a.Addr,
		Handler:           a.Engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go func() {
		a.Logger.Infof("REST API is now listening on: %s", a.Addr)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.Fatal(err, "REST API stopped unexpectedly")
		}
	}()

	<-ctx.Done()
	a.Logger.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		a.Logger.Error(err, "Graceful shutdown failed")
	}

	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			a.Logger.Error(err, "Cleanup step failed")
		}
	}
}
