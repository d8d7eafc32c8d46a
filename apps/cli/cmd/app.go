package cmd

import (
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/abdul-hamid-achik/hitcurl/packages/core/config"
	"github.com/abdul-hamid-achik/hitcurl/packages/core/engine"
	"github.com/abdul-hamid-achik/hitcurl/packages/core/env"
	"github.com/abdul-hamid-achik/hitcurl/packages/history"
	"github.com/abdul-hamid-achik/hitcurl/packages/logging"
	"github.com/abdul-hamid-achik/hitcurl/packages/store"
	"github.com/abdul-hamid-achik/hitcurl/packages/transport"
)

// varEnvPrefix marks process environment variables that become request variables.
const varEnvPrefix = "HITCURL_VAR_"

// app is the state shared by commands once configuration is loaded.
type app struct {
	cfg      *config.Config
	logger   zerolog.Logger
	closeLog func() error
}

// newApp loads the config file, applies the global flags and builds the logger.
func newApp(cmd *cobra.Command) (*app, error) {
	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}

	defaults := cfg.IsDefault()

	overrides := &config.Config{
		DataDir:  dataDirFlag,
		LogLevel: logLevelFlag,
		LogFile:  logFileFlag,
	}
	if noColorFlag {
		overrides.NoColor = config.BoolPtr(true)
	}
	cfg = cfg.Merge(overrides)

	if err := cfg.Validate(); err != nil {
		return nil, withExitCode(ExitConfigError, fmt.Errorf("invalid config: %w", err))
	}

	logger, closeLog, err := logging.New(logging.Options{
		Level:   cfg.LogLevel,
		File:    cfg.LogFile,
		Console: cmd.ErrOrStderr(),
		NoColor: cfg.GetNoColor(),
	})
	if err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}
	if defaults {
		logger.Debug().Msg("no config file found, using defaults")
	}

	return &app{cfg: cfg, logger: logger, closeLog: closeLog}, nil
}

func (a *app) Close() {
	if err := a.closeLog(); err != nil {
		a.logger.Warn().Err(err).Msg("failed to close log file")
	}
}

// applyRequestFlags overrides transport settings from the command line.
func (a *app) applyRequestFlags(f *requestFlags) error {
	overrides := &config.Config{
		Transport: f.transport,
		CurlPath:  f.curlPath,
		Proxy:     f.proxy,
	}
	if f.location {
		overrides.FollowRedirects = config.BoolPtr(true)
	}
	if f.verbose {
		overrides.Verbose = config.BoolPtr(true)
	}
	if f.timeout != "" {
		d, err := time.ParseDuration(f.timeout)
		if err != nil || d <= 0 {
			return withExitCode(ExitUsageError, fmt.Errorf("invalid timeout value %q (use format like 30s, 1m, 500ms)", f.timeout))
		}
		overrides.Timeout = int(d.Milliseconds())
	}

	a.cfg = a.cfg.Merge(overrides)
	if err := a.cfg.Validate(); err != nil {
		return withExitCode(ExitConfigError, fmt.Errorf("invalid config: %w", err))
	}
	return nil
}

func (a *app) newEngine() (*engine.Engine, error) {
	executor, err := transport.New(transport.Options{
		Name:            a.cfg.Transport,
		CurlPath:        a.cfg.CurlPath,
		Timeout:         a.cfg.TimeoutDuration(),
		MaxOutputBytes:  a.cfg.MaxOutputBytes,
		FollowRedirects: a.cfg.GetFollowRedirects(),
		MaxRedirects:    a.cfg.MaxRedirects,
		Proxy:           a.cfg.Proxy,
	})
	if err != nil {
		return nil, withExitCode(ExitConfigError, err)
	}

	a.logger.Debug().
		Str("transport", a.cfg.Transport).
		Dur("timeout", a.cfg.TimeoutDuration()).
		Bool("followRedirects", a.cfg.GetFollowRedirects()).
		Msg("transport ready")

	return engine.New(executor,
		engine.WithLogger(a.logger),
		engine.WithDefaultHeaders(a.cfg.Headers),
	), nil
}

// newResolver collects variables from HITCURL_VAR_* process variables, the
// named (or active) environment and an optional .env file, later sources
// taking precedence. The .env file is also exported for {{$VAR}} references.
func (a *app) newResolver(envName, envFile string) (*env.Resolver, error) {
	resolver := env.NewResolver()
	resolver.SetWarnFunc(func(format string, args ...any) {
		a.logger.Warn().Msgf(format, args...)
	})

	sources := []map[string]string{env.LoadSystemEnv(varEnvPrefix)}

	environments := store.NewEnvironmentStore(a.cfg.DataDir)
	if envName == "" {
		envName = a.cfg.Environment
	}
	if envName != "" {
		e, err := environments.Get(envName)
		if err != nil {
			return nil, withExitCode(ExitConfigError, err)
		}
		sources = append(sources, e.Values())
	} else {
		e, err := environments.Active()
		switch {
		case err == nil:
			sources = append(sources, e.Values())
		case !errors.Is(err, store.ErrNotFound):
			return nil, withExitCode(ExitConfigError, err)
		}
	}

	if envFile != "" {
		vars, err := env.LoadAndExportDotEnv(envFile)
		if err != nil {
			return nil, withExitCode(ExitConfigError, err)
		}
		sources = append(sources, vars)
	}

	resolver.SetVariables(env.MergeVariables(sources...))
	return resolver, nil
}

// openHistory returns nil when history is disabled.
func (a *app) openHistory(disabled bool) (*history.Store, error) {
	if disabled || !a.cfg.GetHistory() {
		return nil, nil
	}
	return a.historyStore()
}

func (a *app) historyStore() (*history.Store, error) {
	return history.Open(
		filepath.Join(a.cfg.DataDir, history.FileName),
		history.WithLimit(a.cfg.HistoryLimit),
	)
}
