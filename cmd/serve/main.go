// Command serve answers wine-quality predictions from a trained artifact.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/2022bcs0010-jaasir/lab7/config"
	"github.com/2022bcs0010-jaasir/lab7/core/model"
	"github.com/2022bcs0010-jaasir/lab7/pkg/errors"
	"github.com/2022bcs0010-jaasir/lab7/pkg/log"
	"github.com/2022bcs0010-jaasir/lab7/server"
	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "serve: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config (defaults when empty)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	logger, out, err := log.Setup(log.Options{Level: cfg.Log.Level, File: cfg.Log.File})
	if err != nil {
		return err
	}
	access := zerolog.New(out).With().Timestamp().Str("component", "http").Logger()
	errors.SetZerologWarnFunc(errors.ZerologWarnFunc(access))

	weights, err := model.LoadWeights(cfg.Artifacts.Model)
	if err != nil {
		logger.Error("cannot load model", log.ArtifactPathKey, cfg.Artifacts.Model, log.ErrAttr(err))
		return err
	}
	svc, err := server.NewService(weights, server.Identity{Name: cfg.Server.Name, RollNo: cfg.Server.RollNo})
	if err != nil {
		logger.Error("model rejected", log.ArtifactPathKey, cfg.Artifacts.Model, log.ErrAttr(err))
		return err
	}
	logger.Info("model loaded",
		log.OperationKey, log.OperationLoad,
		log.ArtifactPathKey, cfg.Artifacts.Model,
		log.FeatureNamesKey, svc.Features(),
		log.ChecksumKey, weights.Checksum)

	gin.SetMode(gin.ReleaseMode)
	srv := server.New(cfg.Server.Addr, server.NewRouter(svc, access))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errc := make(chan error, 1)
	go func() { errc <- srv.Start() }()
	logger.Info("listening", "addr", cfg.Server.Addr)

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return errors.Wrap(err, "shutdown")
	}
	return <-errc
}
