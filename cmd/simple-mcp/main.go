package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/common/promslog"
	"golang.org/x/sync/errgroup"

	"github.com/rhobs/simple-mcp/pkg/config"
	"github.com/rhobs/simple-mcp/pkg/dispatch"
	"github.com/rhobs/simple-mcp/pkg/mcp"
	"github.com/rhobs/simple-mcp/pkg/metrics"
	"github.com/rhobs/simple-mcp/pkg/tools"
)

func main() {
	// Parse command line flags
	var configFile = flag.String("config", "", "Path to a TOML configuration file")
	var port = flag.Int("port", config.DefaultPort, "HTTP listening port (env PORT)")
	var mode = flag.String("mode", string(config.ModeDevelopment), "Execution mode: development (HTTP and stdio) or production (HTTP only) (env MCP_MODE)")
	var stdio = flag.Bool("stdio", true, "Serve MCP on stdin/stdout; defaults to true in development mode")
	var httpEnabled = flag.Bool("http", true, "Serve HTTP endpoints")
	var interpreter = flag.String("interpreter", "python3", "Interpreter used to run the tool scripts (env MCP_INTERPRETER)")
	var scriptDir = flag.String("script-dir", "python_scripts", "Directory containing calculator.py and text_analyzer.py (env MCP_SCRIPT_DIR)")
	var execTimeout = flag.Duration("exec-timeout", 0, "Maximum duration of a single script run, 0 for no limit (env MCP_EXEC_TIMEOUT)")
	var logLevel = flag.String("log-level", config.DefaultLogLevel, "Log level: debug, info, warn, error")
	flag.Parse()

	cfg, err := config.Load(*configFile)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Explicit flags win over the file and the environment
	stdioSet := false
	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "port":
			cfg.Port = *port
		case "mode":
			parsed, err := config.ParseMode(*mode)
			if err != nil {
				log.Fatalf("Invalid mode: %v", err)
			}
			cfg.Mode = parsed
		case "stdio":
			stdioSet = true
		case "interpreter":
			cfg.Interpreter = *interpreter
		case "script-dir":
			cfg.ScriptDir = *scriptDir
		case "exec-timeout":
			cfg.ExecTimeout = config.Duration(*execTimeout)
		case "log-level":
			cfg.LogLevel = *logLevel
		}
	})

	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	// Configure slog with specified log level
	configureLogging(cfg.LogLevel)

	serveStdio := cfg.StdioEnabled()
	if stdioSet {
		serveStdio = *stdio
	}
	if !serveStdio && !*httpEnabled {
		log.Fatal("Nothing to serve: both HTTP and stdio are disabled")
	}

	m := metrics.New()
	r := cfg.NewRunner()
	d := dispatch.New(tools.NewRegistry(), r, dispatch.WithMetrics(m))

	opts := mcp.SimpleMCPOptions{
		Dispatcher: d,
		Metrics:    m,
	}
	mcpServer := mcp.NewMCPServer(opts)

	slog.Info("Starting server",
		"mode", cfg.Mode,
		"http", *httpEnabled,
		"stdio", serveStdio,
		"interpreter", r.Interpreter,
		"script_dir", r.ScriptDir,
		"exec_timeout", time.Duration(cfg.ExecTimeout),
	)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGHUP, syscall.SIGTERM)
	defer stop()

	g, ctx := errgroup.WithContext(ctx)

	if *httpEnabled {
		addr := cfg.ListenAddr()
		g.Go(func() error {
			slog.Info("Health check available", "url", fmt.Sprintf("http://localhost:%d", cfg.Port))
			return mcp.Serve(ctx, mcp.NewHandler(opts, mcpServer), addr)
		})
	}

	if serveStdio {
		g.Go(func() error {
			err := mcp.NewStdioServer(mcpServer, d).Listen(ctx, os.Stdin, os.Stdout)
			if err != nil {
				slog.Error("Stdio transport failed", "err", err)
			}
			// stdio ending never stops the HTTP listener
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		log.Fatalf("Server failed: %v", err)
	}
}

// configureLogging sets up the slog logger with the specified log level
func configureLogging(levelStr string) {
	level := promslog.NewLevel()
	err := level.Set(levelStr)
	if err != nil {
		log.Fatal(err.Error())
	}

	format := promslog.NewFormat()
	err = format.Set("logfmt")
	if err != nil {
		log.Fatal(err.Error())
	}

	logger := promslog.New(&promslog.Config{
		Level:  level,
		Format: format,
		Style:  promslog.GoKitStyle,
	})
	slog.SetDefault(logger)
}
