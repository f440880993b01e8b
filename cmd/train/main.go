// Command train fits the wine-quality ridge model and writes its artifact
// and metrics.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/2022bcs0010-jaasir/lab7/config"
	"github.com/2022bcs0010-jaasir/lab7/pkg/errors"
	"github.com/2022bcs0010-jaasir/lab7/pkg/log"
	"github.com/2022bcs0010-jaasir/lab7/trainer"
	"github.com/rs/zerolog"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "train: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configPath := flag.String("config", "", "path to YAML config (defaults when empty)")
	datasetPath := flag.String("dataset", "", "override dataset.path")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *datasetPath != "" {
		cfg.Dataset.Path = *datasetPath
	}

	logger, out, err := log.Setup(log.Options{Level: cfg.Log.Level, File: cfg.Log.File, Stdout: os.Stderr})
	if err != nil {
		return err
	}
	errors.SetZerologWarnFunc(errors.ZerologWarnFunc(zerolog.New(out).With().Timestamp().Logger()))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := trainer.Run(ctx, cfg)
	if err != nil {
		logger.Error("training failed", log.ErrAttr(err))
		return err
	}

	fmt.Printf("Name: %s\n", cfg.Server.Name)
	fmt.Printf("Roll no: %s\n", cfg.Server.RollNo)
	fmt.Printf("Selected Features: %v\n", res.Features)
	fmt.Printf("MSE: %v\n", res.MSE)
	fmt.Printf("R2 : %v\n", res.R2)
	return nil
}
