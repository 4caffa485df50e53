package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jonathan/video-publisher/internal/batch"
	"github.com/jonathan/video-publisher/internal/browser"
	"github.com/jonathan/video-publisher/internal/config"
	"github.com/jonathan/video-publisher/internal/session"
	"github.com/jonathan/video-publisher/internal/signing"
	"github.com/jonathan/video-publisher/internal/uploader"
)

// commonFlags carries the flags shared by every subcommand. Each command
// registers its own instance so flag variables never collide.
type commonFlags struct {
	configPath       string
	browserPath      string
	headless         bool
	userAgent        string
	locale           string
	stateDir         string
	store            string
	databaseURL      string
	signingURL       string
	artifactDir      string
	verbose          bool
	interactiveLogin bool
}

func (f *commonFlags) register(cmd *cobra.Command) {
	// Config file flag (processed first)
	cmd.Flags().StringVar(&f.configPath, "config", "", "Path to config.json file (values can be overridden by other flags)")

	cmd.Flags().StringVar(&f.browserPath, "browser-path", "", "Path to the Chrome/Chromium binary (optional, auto-detected)")
	cmd.Flags().BoolVar(&f.headless, "headless", true, "Run the browser without a window")
	cmd.Flags().StringVar(&f.userAgent, "user-agent", "", "Override the browser user agent")
	cmd.Flags().StringVar(&f.locale, "locale", "", "Browser locale, e.g. en-US")
	cmd.Flags().StringVar(&f.stateDir, "state-dir", "", "Directory for session state files")
	cmd.Flags().StringVar(&f.store, "store", "", `Session store backend: "file" or "postgres"`)
	cmd.Flags().StringVar(&f.databaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	cmd.Flags().StringVar(&f.signingURL, "signing-url", "", "Base URL of the request signing service (optional, defaults to SIGNING_URL env var)")
	cmd.Flags().StringVar(&f.artifactDir, "artifact-dir", "", "Directory for debug screenshots and page dumps")
	cmd.Flags().BoolVarP(&f.verbose, "verbose", "v", false, "Print detailed run information")
	cmd.Flags().BoolVar(&f.interactiveLogin, "interactive-login", false, "Allow a headed login when no stored session exists")
}

// resolve loads the config file if given, applies explicitly-set CLI flags on
// top, then fills remaining gaps from defaults and the environment.
func (f *commonFlags) resolve(cmd *cobra.Command) (config.Config, error) {
	var cfg config.Config
	if f.configPath != "" {
		loadedCfg, err := config.LoadConfig(f.configPath)
		if err != nil {
			return cfg, fmt.Errorf("failed to load config: %w", err)
		}
		if err := loadedCfg.Validate(); err != nil {
			return cfg, err
		}
		cfg = *loadedCfg
		if f.verbose {
			_, _ = fmt.Fprintf(os.Stdout, "Loaded config from: %s\n", f.configPath)
		}
	}

	// Only override if the flag was explicitly set
	if cmd.Flags().Changed("browser-path") {
		cfg.BrowserPath = f.browserPath
	}
	if cmd.Flags().Changed("headless") {
		cfg.Headless = f.headless
	} else if f.configPath == "" {
		cfg.Headless = true
	}
	if cmd.Flags().Changed("user-agent") {
		cfg.UserAgent = f.userAgent
	}
	if cmd.Flags().Changed("locale") {
		cfg.Locale = f.locale
	}
	if cmd.Flags().Changed("state-dir") {
		cfg.StateDir = f.stateDir
	}
	if cmd.Flags().Changed("store") {
		cfg.Store = f.store
	}
	if cmd.Flags().Changed("db-url") {
		cfg.DatabaseURL = f.databaseURL
	}
	if cmd.Flags().Changed("signing-url") {
		cfg.SigningURL = f.signingURL
	}
	if cmd.Flags().Changed("artifact-dir") {
		cfg.ArtifactDir = f.artifactDir
	}
	if cmd.Flags().Changed("verbose") {
		cfg.Verbose = f.verbose
	}
	if cmd.Flags().Changed("interactive-login") {
		cfg.InteractiveLogin = f.interactiveLogin
	}

	defaults := config.Config{
		StateDir:    "sessions",
		Store:       "file",
		ArtifactDir: "artifacts",
		Locale:      "en-US",
		DatabaseURL: os.Getenv("DATABASE_URL"),
		SigningURL:  os.Getenv("SIGNING_URL"),
	}
	cfg = cfg.MergeWithDefaults(defaults)

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// stack is the wired runtime for one command invocation.
type stack struct {
	store        session.Store
	manager      *session.Manager
	factory      session.Factory
	orchestrator *batch.Orchestrator
	close        func()
}

func buildStack(ctx context.Context, cfg config.Config) (*stack, error) {
	var (
		store      session.Store
		closeStore = func() {}
	)
	switch cfg.Store {
	case "postgres":
		pg, err := session.ConnectPostgres(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("connect session store: %w", err)
		}
		store = pg
		closeStore = pg.Close
	default:
		fs, err := session.NewFileStore(cfg.StateDir)
		if err != nil {
			return nil, fmt.Errorf("open session store: %w", err)
		}
		store = fs
	}

	factory := func(ctx context.Context, visible bool) (session.Browser, func(), error) {
		s, err := browser.NewSession(ctx, browser.Options{
			ExecPath:  cfg.BrowserPath,
			Headless:  cfg.Headless && !visible,
			UserAgent: cfg.UserAgent,
			Locale:    cfg.Locale,
		})
		if err != nil {
			return nil, nil, err
		}
		return s, s.Close, nil
	}

	manager := session.NewManager(store, factory)

	var signer uploader.Signer
	if cfg.SigningURL != "" {
		signer = signing.NewClient(cfg.SigningURL)
	}

	orchestrator := batch.New(batch.Options{
		Sessions:         manager,
		Factory:          factory,
		Signer:           signer,
		ArtifactDir:      cfg.ArtifactDir,
		InteractiveLogin: cfg.InteractiveLogin,
	})

	return &stack{
		store:        store,
		manager:      manager,
		factory:      factory,
		orchestrator: orchestrator,
		close:        closeStore,
	}, nil
}
