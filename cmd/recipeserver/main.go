package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/valueproject/recipe-lookup/internal/api"
	"github.com/valueproject/recipe-lookup/internal/catalog"
	"github.com/valueproject/recipe-lookup/internal/config"
	"github.com/valueproject/recipe-lookup/internal/logger"
	"github.com/valueproject/recipe-lookup/internal/seed"
)

func main() {
	var (
		configPath string
		envFile    string
		addr       string
		dbPath     string
		watch      bool
		verbose    bool
	)
	flag.StringVar(&configPath, "config", "", "TOML config file (default recipeserver.toml when present)")
	flag.StringVar(&envFile, "env", ".env", "dotenv file read before the environment")
	flag.StringVar(&addr, "addr", "", "listen address, overrides config")
	flag.StringVar(&dbPath, "db", "", "catalog database, overrides config")
	flag.BoolVar(&watch, "watch", false, "re-import seed files when they change")
	flag.BoolVar(&verbose, "v", false, "verbose logging")
	flag.Parse()

	cfg, err := config.Load(configPath, envFile)
	if err != nil {
		exit(err)
	}
	if addr != "" {
		cfg.Server.Addr = addr
	}
	if dbPath != "" {
		cfg.Catalog.Database = dbPath
	}
	if watch {
		cfg.Catalog.Watch = true
	}
	if verbose {
		cfg.Log.Level = "verbose"
	}
	if args := flag.Args(); len(args) > 0 {
		cfg.Catalog.Seeds = append(cfg.Catalog.Seeds, args...)
	}

	result := config.Validate(cfg)
	if err := result.Err(); err != nil {
		exit(err)
	}
	log := logger.New(logger.ParseLevel(cfg.Log.Level), os.Stderr)
	for _, w := range result.Warnings {
		log.Warn("config %s", w.Error())
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log); err != nil {
		exit(err)
	}
}

func run(ctx context.Context, cfg config.Config, log *logger.Logger) error {
	store, err := catalog.Open(cfg.Catalog.Database)
	if err != nil {
		return err
	}
	defer store.Close()

	if len(cfg.Catalog.Seeds) > 0 {
		if err := importSeeds(ctx, store, cfg.Catalog.Seeds, log); err != nil {
			return err
		}
	}

	srv := &http.Server{
		Addr: cfg.Server.Addr,
		Handler: api.New(store, api.Options{
			Credentials: api.Credentials{Username: cfg.Auth.Username, Password: cfg.Auth.Password},
			AllowOrigin: cfg.Server.AllowOrigin,
			Logger:      log,
		}).Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("listening on %s (catalog %s)", cfg.Server.Addr, store.Path())
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	if cfg.Catalog.Watch && len(cfg.Catalog.Seeds) > 0 {
		watcher := &seed.Watcher{
			Patterns: cfg.Catalog.Seeds,
			OnChange: func() {
				if err := importSeeds(gctx, store, cfg.Catalog.Seeds, log); err != nil {
					log.Error("reimport: %v", err)
				}
			},
			OnError: func(err error) { log.Warn("seed watcher: %v", err) },
		}
		g.Go(func() error {
			log.Info("watching %d seed pattern(s)", len(cfg.Catalog.Seeds))
			return watcher.Run(gctx)
		})
	}
	return g.Wait()
}

func importSeeds(ctx context.Context, store *catalog.Store, patterns []string, log *logger.Logger) error {
	files, err := seed.Expand(patterns)
	if err != nil {
		return err
	}
	ds, err := seed.LoadFiles(files)
	if err != nil {
		return err
	}
	if ds.Empty() {
		log.Warn("no rows in %d seed file(s)", len(files))
		return nil
	}
	if err := store.Import(ctx, ds); err != nil {
		return fmt.Errorf("import seeds: %w", err)
	}
	stats, err := store.Stats(ctx)
	if err != nil {
		return err
	}
	log.Info("imported %d file(s): %d materials, %d recipes, %d steps", len(files), stats.Materials, stats.Recipes, stats.Steps)
	return nil
}

func exit(err error) {
	fmt.Fprintf(os.Stderr, "recipeserver: %v\n", err)
	os.Exit(1)
}
