package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-logr/logr"
	"sigs.k8s.io/controller-runtime/pkg/log/zap"

	"github.com/yuriy-kovalchuk/spaceship-dns/internal/config"
	"github.com/yuriy-kovalchuk/spaceship-dns/internal/dns/spaceship"
	"github.com/yuriy-kovalchuk/spaceship-dns/internal/ranker"
	"github.com/yuriy-kovalchuk/spaceship-dns/internal/reconciler"
)

var Version = "dev"

func main() {
	var flags config.Flags
	flags.BindFlags(flag.CommandLine)
	opts := zap.Options{
		Development: true,
	}
	opts.BindFlags(flag.CommandLine)
	flag.Parse()
	flags.Capture(flag.CommandLine)

	log := zap.New(zap.UseFlagOptions(&opts))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, log, os.LookupEnv, &flags)
	stop()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, log logr.Logger, env config.LookupFunc, flags *config.Flags) error {
	setupLog := log.WithName("setup")
	setupLog.Info("starting spaceship-dns", "version", Version)

	var file *config.File
	if path := config.FilePath(env, flags); path != "" {
		f, err := config.LoadFile(path)
		if err != nil {
			return fmt.Errorf("unable to load config file: %w", err)
		}
		file = f
		setupLog.Info("loaded config file", "path", path)
	}

	cfg, err := config.Resolve(env, flags, file)
	if err != nil {
		return fmt.Errorf("unable to resolve configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	setupLog.Info("resolved configuration",
		"csv", cfg.CSVPath, "domain", cfg.Domain, "subdomains", cfg.Subdomains,
		"max", cfg.MaxIPCount, "ttl", cfg.TTL, "dryRun", cfg.DryRun)

	client, err := spaceship.New(log.WithName("spaceship"), spaceship.Options{
		Domain:    cfg.Domain,
		APIKey:    cfg.APIKey,
		APISecret: cfg.APISecret,
		BaseURL:   cfg.APIBaseURL,
	})
	if err != nil {
		return fmt.Errorf("unable to create DNS client: %w", err)
	}

	rankLog := log.WithName("ranker")
	r := &reconciler.Reconciler{
		Log:        log.WithName("reconciler"),
		DNS:        client,
		Rank:       func() []string { return ranker.Rank(rankLog, cfg.CSVPath) },
		Subdomains: cfg.Subdomains,
		MaxIPCount: cfg.MaxIPCount,
		TTL:        cfg.TTL,
		DryRun:     cfg.DryRun,
	}
	if _, err := r.Run(ctx); err != nil {
		return err
	}
	return nil
}
