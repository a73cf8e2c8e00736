package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"path/filepath"

	"github.com/shini4i/gsbwifi/internal/config"
	"github.com/shini4i/gsbwifi/internal/credentials"
	"github.com/shini4i/gsbwifi/internal/keepalive"
	"github.com/shini4i/gsbwifi/internal/logging"
	"github.com/shini4i/gsbwifi/internal/portal"
	"github.com/shini4i/gsbwifi/internal/preflight"
	"github.com/shini4i/gsbwifi/internal/retry"
	"github.com/shini4i/gsbwifi/internal/session"
)

// errFailed is returned by commands whose failure has already been rendered.
// main only turns it into exit status 1.
var errFailed = errors.New("operation failed")

// globalOptions are the persistent flags shared by every command.
type globalOptions struct {
	configPath    string
	envFile       string
	debug         bool
	account       int
	skipPreflight bool
}

// app holds everything a command needs once flags and config are resolved.
type app struct {
	opts      globalOptions
	paths     *config.Paths
	cfg       *config.Config
	configDir string
	out       io.Writer
	errOut    io.Writer
}

// newApp sets up logging, loads .env and the config file, and applies
// environment overrides. Flags win over both.
func newApp(opts globalOptions, out, errOut io.Writer) (*app, error) {
	logging.SetupWriter(errOut, logging.LevelFromEnv(opts.debug))

	if err := config.LoadDotEnv(opts.envFile); err != nil {
		return nil, err
	}

	paths, err := config.GetPaths()
	if err != nil {
		return nil, err
	}
	configDir := paths.ConfigDir
	configPath := paths.ConfigFile
	if opts.configPath != "" {
		configPath = opts.configPath
		configDir = filepath.Dir(opts.configPath)
		paths = &config.Paths{ConfigDir: configDir, ConfigFile: configPath}
	}

	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	cfg.ApplyEnv()
	if opts.account > 0 {
		cfg.DefaultAccount = opts.account
	}
	if opts.skipPreflight {
		cfg.Preflight = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration in %s: %w", configPath, err)
	}

	slog.Debug("Configuration loaded", "path", configPath, "portal_url", cfg.PortalURL, "account", cfg.DefaultAccount)
	return &app{opts: opts, paths: paths, cfg: cfg, configDir: configDir, out: out, errOut: errOut}, nil
}

func (a *app) sessionOptions() session.Options {
	opts := session.DefaultOptions()
	opts.ConnectTimeout = a.cfg.ConnectTimeout()
	opts.ReadTimeout = a.cfg.ReadTimeout()
	return opts
}

// service wires the portal service: credential chain, retry policy,
// optional preflight and fresh sessions per operation.
func (a *app) service() *portal.Service {
	sessionOpts := a.sessionOptions()

	policy := retry.DefaultPolicy()
	policy.MaxAttempts = a.cfg.MaxAttempts

	opts := portal.ServiceOptions{
		Endpoints:   portal.EndpointsFromConfig(a.cfg),
		Credentials: credentials.DefaultChain(a.configDir),
		Account:     a.cfg.DefaultAccount,
		Retry:       retry.New(policy),
		NewSession: func() (portal.Session, error) {
			return session.New(sessionOpts)
		},
	}
	// Preflight stays a nil interface when disabled.
	if a.cfg.Preflight {
		opts.Preflight = preflight.NewAdvisor(a.cfg.LoginPageURL, a.cfg.SSIDHints)
	}
	return portal.NewService(opts)
}

func (a *app) pauseMarker() *keepalive.PauseMarker {
	return keepalive.NewPauseMarker(a.configDir)
}
