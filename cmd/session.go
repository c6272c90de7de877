package cmd

import (
	"context"
	"io"
	"time"

	"github.com/crytic/contractops/config"
	"github.com/crytic/contractops/engine"
	"github.com/crytic/contractops/logging"
	"github.com/crytic/contractops/metrics"
	"github.com/crytic/contractops/tracing"
	"github.com/spf13/cobra"
)

// metricsNamespace prefixes every prometheus metric exported by the CLI.
const metricsNamespace = "contractops"

// tracerShutdownTimeout bounds how long pending spans are flushed on exit.
const tracerShutdownTimeout = 5 * time.Second

// session is everything a command needs to run contract operations, built from the project configuration.
type session struct {
	config   *config.ProjectConfig
	engine   *engine.Engine
	recorder *metrics.Recorder

	logFile        io.WriteCloser
	tracerShutdown tracing.ShutdownFunc
}

// configureLogging replaces the global logger according to the logging configuration. It returns the log file
// writer, if one was opened.
func configureLogging(loggingConfig config.LoggingConfig) (io.WriteCloser, error) {
	logging.GlobalLogger = logging.NewLogger(loggingConfig.Level, loggingConfig.EnableConsoleLogging)

	var logFile io.WriteCloser
	if loggingConfig.LogDirectory != "" {
		var err error
		logFile, err = logging.NewRotatingFileWriter(loggingConfig.LogDirectory, LogFileName, logging.RotationPolicy{
			MaxSizeMB:  loggingConfig.MaxSizeMB,
			MaxBackups: loggingConfig.MaxBackups,
			MaxAgeDays: loggingConfig.MaxAgeDays,
			Compress:   loggingConfig.Compress,
		})
		if err != nil {
			return nil, err
		}
		logging.GlobalLogger.AddWriter(logFile, logging.STRUCTURED)
	}

	cmdLogger = logging.GlobalLogger.NewSubLogger("module", logging.CLI_SERVICE)
	return logFile, nil
}

// newSession loads the project configuration, configures logging and tracing, and starts an engine.
func newSession(ctx context.Context, cmd *cobra.Command) (*session, error) {
	projectConfig, err := loadProjectConfig(cmd)
	if err != nil {
		return nil, err
	}
	return newSessionFromConfig(ctx, projectConfig)
}

func newSessionFromConfig(ctx context.Context, projectConfig *config.ProjectConfig) (*session, error) {
	logFile, err := configureLogging(projectConfig.Logging)
	if err != nil {
		return nil, err
	}
	s := &session{config: projectConfig, logFile: logFile}

	telemetry := projectConfig.Telemetry
	s.tracerShutdown, err = tracing.InitTracer(ctx, telemetry.ServiceName, telemetry.OTLPEndpoint, telemetry.Insecure)
	if err != nil {
		cmdLogger.Warn("Failed to start trace export, continuing without tracing", err)
	}

	s.recorder = metrics.NewRecorder(metricsNamespace)
	s.engine, err = engine.NewFromConfig(ctx, projectConfig, s.recorder)
	if err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

// Close stops the engine, flushes traces and closes the log file.
func (s *session) Close() {
	if s.engine != nil {
		if err := s.engine.Close(); err != nil {
			cmdLogger.Warn("Failed to close the engine cleanly", err)
		}
	}
	if s.tracerShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), tracerShutdownTimeout)
		if err := s.tracerShutdown(ctx); err != nil {
			cmdLogger.Debug("Failed to flush traces", err)
		}
		cancel()
	}
	if s.logFile != nil {
		_ = s.logFile.Close()
	}
}
