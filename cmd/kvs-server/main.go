// Command kvs-server runs the TCP front end for the key-value store: it
// opens (or recovers) a store rooted at one of the two engine-named data
// directories in the working directory, binds a listener, and dispatches
// each connection onto a bounded worker pool until it receives SIGINT or
// SIGTERM.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/nilotpal-labs/kvs/internal/engine"
	"github.com/nilotpal-labs/kvs/internal/pool"
	"github.com/nilotpal-labs/kvs/internal/server"
	"github.com/nilotpal-labs/kvs/pkg/filesys"
	"github.com/nilotpal-labs/kvs/pkg/logger"
	"github.com/nilotpal-labs/kvs/pkg/options"
	"github.com/spf13/cobra"
)

const (
	engineKvs  = "kvs"
	engineSled = "sled"
)

func main() {
	var (
		addr       string
		engineName string
		poolSize   int
	)

	cmd := &cobra.Command{
		Use:   "kvs-server",
		Short: "Run the key-value store server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(addr, engineName, cmd.Flags().Changed("engine"), poolSize)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "127.0.0.1:4000", "TCP address to listen on")
	cmd.Flags().StringVar(&engineName, "engine", engineKvs, `storage engine to use ("kvs" or "sled")`)
	cmd.Flags().IntVar(&poolSize, "pool-size", runtime.NumCPU(), "number of worker pool goroutines")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(addr, requestedEngine string, engineExplicit bool, poolSize int) error {
	log := logger.New("kvs-server")
	defer log.Sync()

	engineName, dataDir, err := resolveEngine(requestedEngine, engineExplicit)
	if err != nil {
		log.Errorw("refusing to start: engine mismatch", "error", err)
		return err
	}

	if engineName != engineKvs {
		return fmt.Errorf("engine %q is not implemented by this binary; only %q runs here", engineName, engineKvs)
	}

	opts := options.NewDefaultOptions()
	options.WithDataDir(dataDir)(&opts)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	eng, err := engine.Open(ctx, &engine.Config{Logger: log, Options: &opts})
	if err != nil {
		return fmt.Errorf("failed to open engine: %w", err)
	}

	workers := pool.New(poolSize, log)

	srv, err := server.New(&server.Config{Addr: addr, Engine: eng, Pool: workers, Logger: log})
	if err != nil {
		return fmt.Errorf("failed to bind listener: %w", err)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		log.Infow("received shutdown signal", "signal", sig.String())
		cancel()
	}()

	log.Infow("kvs-server listening", "addr", srv.Addr(), "engine", engineName, "dataDir", dataDir, "poolSize", poolSize)

	runErr := srv.Run(ctx)

	if err := srv.Close(); err != nil {
		log.Errorw("error closing server", "error", err)
	}
	if err := workers.Close(); err != nil {
		log.Errorw("error closing worker pool", "error", err)
	}
	if err := eng.Close(); err != nil {
		log.Errorw("error closing engine", "error", err)
	}

	return runErr
}

// resolveEngine mirrors the original source's check_engine: a data
// directory's engine is recorded by its very name, "db.kvs" or "db.sled",
// in the current working directory. If the caller didn't pass --engine
// explicitly, the engine whose directory already exists wins (kvs if
// neither exists yet). If the caller did pass --engine and a directory for
// a *different* engine already exists, that's a fatal mismatch — starting
// "kvs" against an existing "db.sled" must not silently reinterpret sled's
// on-disk format as a kvs log.
func resolveEngine(requested string, explicit bool) (engineName, dataDir string, err error) {
	if explicit && requested != engineKvs && requested != engineSled {
		return "", "", fmt.Errorf("engine %q is not one of %q or %q", requested, engineKvs, engineSled)
	}

	kvsExists, err := filesys.Exists("db." + engineKvs)
	if err != nil {
		return "", "", err
	}
	sledExists, err := filesys.Exists("db." + engineSled)
	if err != nil {
		return "", "", err
	}

	existing := ""
	switch {
	case kvsExists:
		existing = engineKvs
	case sledExists:
		existing = engineSled
	}

	switch {
	case explicit && existing != "" && requested != existing:
		return "", "", fmt.Errorf(
			"data was previously persisted with engine %q, cannot reopen \"db.%s\" with engine %q",
			existing, existing, requested,
		)
	case explicit:
		engineName = requested
	case existing != "":
		engineName = existing
	default:
		engineName = engineKvs
	}

	return engineName, "db." + engineName, nil
}
