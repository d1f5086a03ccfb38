package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/danmuck/emctl/internal/dispatch"
	"github.com/danmuck/emctl/internal/logging"
	"github.com/danmuck/emctl/internal/module"
	"github.com/danmuck/emctl/internal/platform"
	"github.com/danmuck/emctl/internal/server"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	configPath := flag.String("config", "", "path to emctl TOML config")
	inject := flag.String("inject", "", "comma separated error ids to inject after boot")
	flag.Parse()

	if err := run(*configPath, *inject); err != nil {
		fmt.Fprintf(os.Stderr, "emctl: %v\n", err)
		os.Exit(1)
	}
}

func run(configPath, inject string) error {
	cfg := defaultServiceConfig()
	if configPath != "" {
		loaded, err := loadServiceConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded
	}
	if inject != "" {
		ids, err := parseFaultList(strings.Split(inject, ","))
		if err != nil {
			return fmt.Errorf("parse -inject: %w", err)
		}
		cfg.Inject = append(cfg.Inject, ids...)
	}

	logging.ConfigureRuntime()
	if cfg.LogLevelSet {
		zerolog.SetGlobalLevel(cfg.LogLevel)
	}
	bootID := uuid.NewString()
	logger := log.Logger.With().Str("boot_id", bootID).Logger()

	p := platform.New(cfg.Recovery, logger)
	d, err := dispatch.New(p.Deps(&logger))
	if err != nil {
		return err
	}
	em, err := module.Install(p.Core, d, cfg.Dispatch, &logger)
	if err != nil {
		return err
	}

	p.Core.Configure(nil)
	if err := em.Err(); err != nil {
		logger.Warn().Err(err).Msg("error manager initialized with rejected actions")
	}
	for _, e := range d.Registry().Entries() {
		logger.Info().Stringer("fault", e.ID).Stringer("category", e.ID.Category()).Stringer("action", e.Kind()).Msg("action table")
	}

	for _, id := range cfg.Inject {
		if err := p.Status.Inject(id); err != nil {
			return err
		}
	}

	if cfg.MetricsAddr == "" {
		return nil
	}
	if zerolog.GlobalLevel() > zerolog.DebugLevel {
		gin.SetMode(gin.ReleaseMode)
	}
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	return server.New(bootID, cfg.MetricsAddr, d, logger).Run(ctx)
}
