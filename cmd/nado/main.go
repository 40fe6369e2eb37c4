package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"

	"github.com/joho/godotenv"
	"github.com/mattn/go-isatty"
	"github.com/nado-dev/nado/conf"
	"github.com/nado-dev/nado/engine"
	"github.com/nado-dev/nado/logger"
	"github.com/nado-dev/nado/nadoerr"
)

func main() {
	quiet := flag.Bool("quiet", false, "disable the progress bar")
	flag.Parse()

	// optional, carries DOCKER_HOST and friends
	_ = godotenv.Load()

	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevelFromEnv(),
	}))
	slog.SetDefault(log)

	path, err := conf.Resolve(flag.Arg(0))
	if err != nil {
		fatal(log, err)
	}

	cfg, confDir, err := conf.Read(path)
	if err != nil {
		fatal(log, err)
	}

	eng, err := engine.New(cfg, confDir, log)
	if err != nil {
		fatal(log, err)
	}

	fmt.Printf("nado: cases=%d, candidates=%d, workers=%d, timeout=%dms\n",
		cfg.Engine.Cases, len(cfg.Candidates), cfg.Engine.Workers, cfg.Engine.TimeoutMs)

	var ui *progressUI
	if !*quiet && isatty.IsTerminal(os.Stdout.Fd()) {
		ui = newProgressUI()
		ui.Start()
		eng.SetNotifier(ui)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	ctx = logger.WithLogger(ctx, log)

	report, err := eng.Run(ctx)
	if ui != nil {
		ui.Stop()
	}
	if err != nil {
		fatal(log, err)
	}

	printReport(os.Stdout, report)
	os.Exit(report.ExitCode())
}

// fatal aborts with a diagnostic and no partial verdict table.
func fatal(log *slog.Logger, err error) {
	var ne *nadoerr.Error
	if !errors.As(err, &ne) {
		ne = nadoerr.ErrInternal().SetDebug(err)
	}
	log.Error("fatal error", "code", ne.ErrorCode(), "error", ne.Error(), "debug", ne.DebugInfo())
	fmt.Fprintf(os.Stderr, "nado: %s\n", ne.Error())
	os.Exit(ne.ExitCode())
}

func logLevelFromEnv() slog.Level {
	switch strings.ToLower(os.Getenv("NADO_LOG_LEVEL")) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "error":
		return slog.LevelError
	default:
		return slog.LevelWarn
	}
}
