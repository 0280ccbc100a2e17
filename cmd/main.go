package main

import (
	"context"
	"os"
	"os/signal"
	"sync"

	log "github.com/sirupsen/logrus"

	"github.com/arne314/forward-collab/internal/app"
	cfg "github.com/arne314/forward-collab/internal/config"
	"github.com/arne314/forward-collab/internal/db"
	"github.com/arne314/forward-collab/internal/matrix"
	"github.com/arne314/forward-collab/internal/metrics"
)

var (
	waitGroup     *sync.WaitGroup       = &sync.WaitGroup{}
	config        *cfg.Config           = &cfg.Config{}
	dbHandler     *db.DbHandler         = &db.DbHandler{}
	matrixHandler *matrix.MatrixHandler = &matrix.MatrixHandler{}
	metricsServer *metrics.Server       = &metrics.Server{}
	forwardCollab *app.ForwardCollab    = &app.ForwardCollab{}
)

func main() {
	log.Info("Starting forward-collab...")
	config.Load()

	metricsServer.Serve(config.Metrics.Listen)
	dbHandler.Setup(config)
	matrixHandler.Config = config.Matrix
	forwardCollab.Config = config
	forwardCollab.Setup(dbHandler, matrixHandler)

	if config.Once.Enabled {
		ok := forwardCollab.RunOnce(context.Background())
		shutdown()
		if !ok {
			os.Exit(1)
		}
		return
	}

	runGroup := &sync.WaitGroup{}
	runGroup.Add(1)
	go forwardCollab.Run(runGroup)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt)
	log.Info("Startup complete")
	<-stop
	log.Info("Shutting down forward-collab...")
	forwardCollab.Stop()
	runGroup.Wait()
	shutdown()
}

func shutdown() {
	waitGroup.Add(3)
	matrixHandler.Stop(waitGroup)
	dbHandler.Stop(waitGroup)
	metricsServer.Stop(waitGroup)
	waitGroup.Wait()
	log.Info("Shutdown successful")
}
