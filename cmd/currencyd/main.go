package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/infigaming-com/go-currency/config"
	"github.com/infigaming-com/go-currency/util"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	configPath := flag.String("config", os.Getenv("CURRENCYD_CONFIG_PATH"), "path to the YAML config file; environment only when empty")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage of %s:\n", os.Args[0])
		flag.PrintDefaults()
		if usage, err := config.Usage(); err == nil {
			fmt.Fprintln(flag.CommandLine.Output(), usage)
		}
	}
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	level, err := cfg.LogLevel()
	if err != nil {
		return err
	}

	lg, syncLogger := util.NewLogger(level)
	defer syncLogger()

	a, err := newApp(lg, cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	lg.Info("starting currencyd",
		zap.String("version", version),
		zap.String("env", cfg.Env),
		zap.String("base", a.service.BaseCurrency()),
		zap.String("store", cfg.Rates.Store),
		zap.Duration("refreshInterval", cfg.Rates.RefreshInterval),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return a.server.Run(ctx)
}
