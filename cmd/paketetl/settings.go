package main

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"paketetl/internal/config"
	"paketetl/internal/engine"
	"paketetl/internal/logging"
)

// runtimeEnv bundles what every command needs.
type runtimeEnv struct {
	settings config.Settings
	log      zerolog.Logger
	close    func() error
}

// loadEnv reads the settings file, applies environment overrides, rejects
// invalid settings and builds the logger.
func loadEnv(c *cli.Context) (*runtimeEnv, error) {
	s, err := config.Load(c.String("config"))
	if err != nil {
		return nil, err
	}
	s.ApplyEnv()

	issues := config.ValidateSettings(s)
	if config.HasErrors(issues) {
		return nil, issuesError(issues)
	}

	if v := c.String("log-level"); v != "" {
		s.Log.Level = v
	}
	if v := c.String("log-format"); v != "" {
		s.Log.Format = v
	}
	if s.Log.Service == "" {
		s.Log.Service = "paketetl"
	}
	log, closeFn, err := logging.FromSettings(s.Log)
	if err != nil {
		return nil, err
	}
	for _, iss := range issues {
		log.Warn().Str("path", iss.Path).Msg(iss.Message)
	}
	return &runtimeEnv{settings: s, log: log, close: closeFn}, nil
}

// engineFor builds the engine of the named module. A non-empty strategy
// overrides the configured one.
func (e *runtimeEnv) engineFor(name, strategy string) (*engine.Engine, config.Module, error) {
	m, err := e.settings.Module(name)
	if err != nil {
		return nil, config.Module{}, fmt.Errorf("%w (configured: %s)", err, strings.Join(e.settings.ModuleNames(), ", "))
	}
	o := engine.OptionsFromModule(m, e.settings.Response, &e.log)
	if strategy != "" {
		o.Strategy = strategy
	}
	eng, err := engine.New(o)
	if err != nil {
		return nil, config.Module{}, err
	}
	return eng, m, nil
}

func issuesError(issues []config.Issue) error {
	var msgs []string
	for _, iss := range issues {
		if iss.Severity == config.SeverityError {
			msgs = append(msgs, iss.Error())
		}
	}
	return fmt.Errorf("invalid settings:\n  %s", strings.Join(msgs, "\n  "))
}
