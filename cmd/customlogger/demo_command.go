package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"customlogger/internal/config"
	"customlogger/internal/eventloop"
	"customlogger/internal/logging"
	"customlogger/internal/reload"
	"customlogger/internal/version"
)

type demoFlags struct {
	logFile      string
	errorLogFile string
	level        string
	appendLogs   bool
	width        int
	noHooks      bool
	panicMain    bool
	panicWorker  bool
	loopError    bool
	watch        bool
}

// apply overlays flags the user set explicitly on opts.
func (f *demoFlags) apply(cmd *cobra.Command, opts *logging.Options) {
	flags := cmd.Flags()
	if flags.Changed("log-file") {
		opts.LogFile = f.logFile
	}
	if flags.Changed("error-log-file") {
		opts.ErrorLogFile = f.errorLogFile
	}
	if flags.Changed("level") {
		opts.Level = f.level
	}
	if flags.Changed("append") {
		opts.Overwrite = !f.appendLogs
	}
	if flags.Changed("width") {
		opts.Width = f.width
	}
	if f.noHooks {
		opts.Exceptions = false
	}
}

func newDemoCommand(ctx *commandContext) *cobra.Command {
	var flags demoFlags

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Configure the logger and emit sample records",
		Long: "Configure the logger from the configuration file (overridden by flags) and\n" +
			"write one record per level. --panic, --worker-panic and --loop-error provoke\n" +
			"failures so the crash hook output can be inspected.",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := ctx.ensureConfig()
			if err != nil {
				return err
			}
			return runDemo(cmd, ctx, cfg, &flags)
		},
	}

	f := cmd.Flags()
	f.StringVar(&flags.logFile, "log-file", "", "General log file")
	f.StringVar(&flags.errorLogFile, "error-log-file", "", "Error-only log file")
	f.StringVar(&flags.level, "level", "", "Minimum level (debug, info, warning, error, critical)")
	f.BoolVar(&flags.appendLogs, "append", false, "Append to log files instead of truncating them")
	f.IntVar(&flags.width, "width", 0, "Column where the source location starts")
	f.BoolVar(&flags.noHooks, "no-hooks", false, "Do not install crash hooks")
	f.BoolVar(&flags.panicMain, "panic", false, "Panic on the main goroutine after logging")
	f.BoolVar(&flags.panicWorker, "worker-panic", false, "Panic on a worker goroutine after logging")
	f.BoolVar(&flags.loopError, "loop-error", false, "Fail a task on the event loop after logging")
	f.BoolVar(&flags.watch, "watch", false, "Keep running and reapply the config file when it changes")
	return cmd
}

func runDemo(cmd *cobra.Command, ctx *commandContext, cfg *config.Config, flags *demoFlags) error {
	runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	buildOptions := func(cfg *config.Config) logging.Options {
		opts := cfg.ToOptions("")
		flags.apply(cmd, &opts)
		opts.Console = cmd.OutOrStdout()
		opts.Hooks = ctx.hooks
		return opts
	}

	// The loop must be running before Setup so the hooks can wrap it.
	var loop *eventloop.Loop
	loopDone := make(chan error, 1)
	if flags.loopError {
		loop = eventloop.New(eventloop.WithOutput(cmd.ErrOrStderr()))
		go func() { loopDone <- loop.Run(runCtx) }()
		select {
		case <-loop.Ready():
		case err := <-loopDone:
			return fmt.Errorf("start event loop: %w", err)
		}
	}

	logger, err := logging.Setup(buildOptions(cfg))
	if err != nil {
		if loop != nil {
			loop.Stop()
			<-loopDone
		}
		return fmt.Errorf("configure logging: %w", err)
	}

	emitSamples(runCtx, logger)

	if loop != nil {
		submitErr := loop.Submit("demo-task", func(context.Context) error {
			return errors.New("demo task failed")
		})
		loop.Stop()
		<-loopDone
		if submitErr != nil {
			return fmt.Errorf("submit demo task: %w", submitErr)
		}
	}

	if flags.panicWorker {
		done := make(chan struct{})
		go func() {
			defer close(done)
			defer ctx.hooks.RecoverWorker("demo-worker")
			panic(errors.New("demo worker failure"))
		}()
		<-done
	}

	if flags.watch {
		if err := watchConfig(runCtx, ctx, logger, buildOptions); err != nil {
			return err
		}
	}

	if flags.panicMain {
		panic(errors.New("demo main failure"))
	}
	return nil
}

func emitSamples(ctx context.Context, logger *logging.Logger) {
	logger.Debug("debug output is enabled")
	logger.Info("customlogger demo started", logging.String("version", version.Resolve().String()))
	logger.Warn("multi-line messages keep their shape\ncontinuation lines start at the message column\nand carry no source location")
	logger.Error("operation failed",
		logging.Error(errors.New("disk quota exceeded")),
		logging.String(logging.FieldPath, "/var/data"),
		logging.Int("attempt", 3),
	)
	logger.Log(ctx, logging.LevelCritical, "critical condition reached")
}

func watchConfig(ctx context.Context, cmdCtx *commandContext, logger *logging.Logger, build func(*config.Config) logging.Options) error {
	if !cmdCtx.configExists {
		return fmt.Errorf("--watch needs a config file; none at %s (create one with `customlogger config init`)", cmdCtx.configPath)
	}
	w, err := reload.New(cmdCtx.configPath, func(cfg *config.Config) error {
		_, err := logging.Setup(build(cfg))
		return err
	}, reload.WithLogger(logger.Logger), reload.WithDebounce(250*time.Millisecond))
	if err != nil {
		return err
	}
	logger.Info("watching config for changes; press Ctrl-C to stop", logging.String(logging.FieldPath, w.Path()))
	return w.Run(ctx)
}
