package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"diagd/api"
	"diagd/collector"
	"diagd/config"
	"diagd/server"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Build info
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	if len(os.Args) > 1 && os.Args[1] == "probe" {
		os.Exit(runProbe(os.Args[2:], os.Stdout))
	}

	// Load config; a bad port exits before any socket is opened
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		fmt.Fprintf(os.Stderr, "usage: diagd <port>\n%v\n", err)
		os.Exit(1)
	}

	logger, err := newLogger(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger init: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("diagd starting",
		zap.String("version", version),
		zap.String("commit", commit),
		zap.String("built", date),
	)
	if !cfg.EnvFileLoaded {
		logger.Debug("No .env file found, using environment variables")
	}

	// Graceful shutdown
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sys := collector.CollectSystemInfo(ctx)
	logger.Info("Host",
		zap.String("hostname", sys.Hostname),
		zap.String("os", sys.OS),
		zap.String("kernel", sys.Kernel),
		zap.String("arch", sys.Arch),
	)

	caps := collector.DetectCapabilities(logger)
	info := collector.NewSystemInfo(cfg.Backend == config.BackendShell, cfg.CommandTimeout, caps, logger)
	resources := collector.NewResources(info, cfg.SampleDelay, logger)

	dispatcher := server.NewDispatcher(resources, server.DispatcherConfig{
		ReadTimeout:  cfg.ReadTimeout,
		StrictMethod: cfg.StrictMethod,
	}, logger)

	ln, err := server.Listen(ctx, cfg.Port)
	if err != nil {
		logger.Fatal("Listen failed", zap.Int("port", cfg.Port), zap.Error(err))
	}
	srv := server.New(ln, dispatcher, logger)

	logger.Info("Listening",
		zap.Int("port", cfg.Port),
		zap.Duration("sample_delay", cfg.SampleDelay),
		zap.Bool("strict_method", cfg.StrictMethod),
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		err := srv.Serve(gctx)
		if errors.Is(err, server.ErrServerClosed) {
			return nil
		}
		return err
	})
	g.Go(func() error {
		<-gctx.Done()
		// a second signal kills the process
		stop()
		return srv.Close()
	})

	if err := g.Wait(); err != nil {
		logger.Fatal("Server stopped", zap.Error(err))
	}
	logger.Info("Shutting down...")
}

// runProbe fetches one resource from a running server and prints the body
func runProbe(args []string, out io.Writer) int {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: diagd probe <host:port> <path>")
		return 1
	}

	resp, err := api.NewClient(args[0]).Fetch(context.Background(), args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "probe failed: %v\n", err)
		return 1
	}

	if _, err := out.Write(resp.Body); err != nil {
		fmt.Fprintf(os.Stderr, "write body: %v\n", err)
		return 1
	}
	if resp.Status != server.StatusOK {
		fmt.Fprintf(os.Stderr, "status %d\n", resp.Status)
		return 1
	}
	return 0
}
