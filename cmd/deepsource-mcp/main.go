package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/deepsource-contrib/deepsource-mcp/internal/config"
	"github.com/deepsource-contrib/deepsource-mcp/internal/deepsource"
	"github.com/deepsource-contrib/deepsource-mcp/internal/logging"
	"github.com/deepsource-contrib/deepsource-mcp/internal/mcptools"
	"github.com/deepsource-contrib/deepsource-mcp/internal/metrics"
)

// CLI flags parsed from the command line.
type cliFlags struct {
	HTTPAddr    string
	MetricsAddr string
	Version     bool
}

// version is set by goreleaser at build time.
var version = "dev"

func main() {
	if err := run(os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(args []string) error {
	var flags cliFlags

	fs := flag.NewFlagSet("deepsource-mcp", flag.ContinueOnError)
	fs.StringVar(&flags.HTTPAddr, "http", "", "serve MCP over HTTP on this address instead of stdio")
	fs.StringVar(&flags.MetricsAddr, "metrics", "", "serve Prometheus metrics on this address")
	fs.BoolVar(&flags.Version, "version", false, "print version and exit")

	if err := fs.Parse(args); err != nil {
		return err
	}

	if flags.Version {
		fmt.Println(version)
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.Setup(logging.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
	})

	client := deepsource.NewClient(cfg.APIKey,
		deepsource.WithEndpoint(cfg.Endpoint),
		deepsource.WithTimeout(cfg.Timeout),
		deepsource.WithLogger(logging.NewLogger("deepsource")),
	)
	svc := mcptools.NewDeepSourceService(client, logging.NewLogger("mcptools"))
	server := mcptools.NewDeepSourceMCPServer(svc)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if flags.MetricsAddr != "" {
		logger.Info().Str("addr", flags.MetricsAddr).Msg("serving metrics")
		g.Go(func() error {
			return metrics.Serve(ctx, flags.MetricsAddr)
		})
	}

	if flags.HTTPAddr != "" {
		logger.Info().Str("addr", flags.HTTPAddr).Msg("serving MCP over HTTP")
		g.Go(func() error {
			return mcptools.RunHTTP(ctx, server, flags.HTTPAddr)
		})
	} else {
		logger.Info().Msg("serving MCP over stdio")
		g.Go(func() error {
			return mcptools.RunStdio(ctx, server)
		})
	}

	return g.Wait()
}
