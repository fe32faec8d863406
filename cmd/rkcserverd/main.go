// rkcserverd is the host daemon for an RKC FB-series temperature
// controller: it polls the controller on a fixed cadence, logs the readings
// to a rotated CSV history, and exposes setpoint control and status over
// REST.
package main

import (
	"context"
	"flag"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/arloliu/go-rkc/api"
	"github.com/arloliu/go-rkc/config"
	"github.com/arloliu/go-rkc/controller"
	"github.com/arloliu/go-rkc/logger"
	"github.com/arloliu/go-rkc/poller"
	"github.com/arloliu/go-rkc/rkc"
	"github.com/arloliu/go-rkc/serial"
)

func main() {
	configPath := flag.String("config", "rkc.yaml", "path to the configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logger.Fatal("failed to load configuration", "error", err)
	}

	log := newLogger(cfg.Logger)
	logger.SetDefault(log)

	port, err := serial.Open(cfg.Serial.Port,
		serial.WithBaudRate(cfg.Serial.BaudRate),
		serial.WithParity(cfg.Serial.Parity),
		serial.WithStopBits(cfg.Serial.StopBits),
		serial.WithLogger(log),
	)
	if err != nil {
		log.Fatal("failed to open serial port", "port", cfg.Serial.Port, "error", err)
	}
	defer port.Close()

	sessionCfg, err := rkc.NewSessionConfig(cfg.Protocol.Address,
		rkc.WithResponseTimeout(time.Duration(cfg.Protocol.ResponseTimeoutSeconds)*time.Second),
		rkc.WithRetryLimit(cfg.Protocol.MaxRetries),
		rkc.WithLogger(log),
	)
	if err != nil {
		log.Fatal("invalid protocol configuration", "error", err)
	}

	session := rkc.NewSession(port, sessionCfg)
	defer session.Close()

	ctrl := controller.New(session, log)

	if model, err := ctrl.ReadModelCode(); err != nil {
		log.Warn("controller not answering yet, poller will keep trying", "error", err)
	} else {
		log.Info("controller connected", "model", model)
	}

	history := poller.NewHistoryLog(cfg.Polling.HistoryFile, cfg.Polling.MaxSizeMB, cfg.Polling.MaxBackups)
	defer history.Close()

	poll := poller.New(ctrl, history, time.Duration(cfg.Polling.IntervalSeconds)*time.Second, log)
	server := api.New(cfg.HTTP.Addr(), ctrl, history, log)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		poll.Run(ctx)
	}()

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.Run(); err != nil {
			log.Error("api server stopped", "error", err)
		}
	}()

	<-ctx.Done()
	log.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("api shutdown failed", "error", err)
	}

	wg.Wait()
	log.Info("shutdown complete")
}

func newLogger(cfg config.LoggerConfig) logger.Logger {
	level := logger.ParseLevel(cfg.Level)

	if cfg.FilePath == "" {
		return logger.NewSlog(level)
	}

	return logger.NewSlog(level,
		logger.WithRotatingFile(cfg.FilePath, cfg.MaxSizeMB, cfg.MaxBackups, cfg.MaxAgeDays),
	)
}
