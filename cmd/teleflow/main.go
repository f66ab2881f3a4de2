// Command teleflow is a terminal guided-call assistant for telesales agents.
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/app"
	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/coach"
	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/config"
	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/db"
	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/logging"
	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/script"
	"github.com/tharmeritta/BrainTrade-Flow-VN/internal/session"
)

var version = "dev"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "teleflow:", err)
		os.Exit(1)
	}
}

// globalFlags are shared by every command.
type globalFlags struct {
	configPath string
	lang       string
}

// env is what a command needs after configuration is loaded.
type env struct {
	cfg     *config.Config
	logger  *logging.Logger
	catalog *script.Catalog
}

func (f *globalFlags) load() (*env, error) {
	cfg, err := config.Load(f.configPath)
	if err != nil {
		return nil, err
	}
	if f.lang != "" {
		lang, err := script.ParseLocale(f.lang)
		if err != nil {
			return nil, fmt.Errorf("--lang: %w", err)
		}
		cfg.Language = lang
	}

	logger, err := logging.New(cfg.LogFile)
	if err != nil {
		return nil, err
	}

	var catalog *script.Catalog
	if cfg.ScriptPath != "" {
		catalog, err = script.Load(cfg.ScriptPath)
	} else {
		catalog, err = script.Default()
	}
	if err != nil {
		logger.Close()
		return nil, fmt.Errorf("load script: %w", err)
	}
	return &env{cfg: cfg, logger: logger, catalog: catalog}, nil
}

func (e *env) openStore() (*db.Store, error) {
	store, err := db.Open(e.cfg.StoragePath)
	if err != nil {
		e.logger.Printf("db: open %s: %v", e.cfg.StoragePath, err)
		return nil, err
	}
	e.logger.Printf("db: opened %s", e.cfg.StoragePath)
	return store, nil
}

func (e *env) close() {
	e.logger.Close()
}

func newRootCmd() *cobra.Command {
	flags := &globalFlags{}

	root := &cobra.Command{
		Use:           "teleflow",
		Short:         "Guided call script, notes and coaching in the terminal",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), flags)
		},
	}
	root.PersistentFlags().StringVar(&flags.configPath, "config", "", "config file (default "+config.DefaultPath()+")")
	root.PersistentFlags().StringVar(&flags.lang, "lang", "", "display language: en or vn")

	root.AddCommand(
		newRunCmd(flags),
		newStagesCmd(flags),
		newHistoryCmd(flags),
		newAskCmd(flags),
		newMCPCmd(flags),
	)
	return root
}

func newRunCmd(flags *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Start the call assistant (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), flags)
		},
	}
}

func runTUI(ctx context.Context, flags *globalFlags) error {
	e, err := flags.load()
	if err != nil {
		return err
	}
	defer e.close()

	store, err := e.openStore()
	if err != nil {
		return err
	}
	defer store.Close()

	ctrl, err := session.New(session.Options{
		Catalog:       e.catalog,
		Store:         store,
		Logger:        e.logger,
		AutosaveDelay: e.cfg.AutosaveDelay,
		TickInterval:  e.cfg.TickInterval,
	})
	if err != nil {
		return err
	}
	ctrl.Start(ctx)
	defer ctrl.Close()

	svc := coach.New(e.cfg.Coach, e.logger)
	if svc.Configured() {
		e.logger.Printf("coach: using %s", svc.Backend())
	} else {
		e.logger.Printf("coach: no API key, coaching disabled")
	}

	model := app.New(app.Deps{
		Session:  ctrl,
		Catalog:  e.catalog,
		Coach:    svc,
		History:  store,
		Logger:   e.logger,
		Language: e.cfg.Language,
	})

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	_, runErr := p.Run()

	// The model flushes on quit; this covers signals and crashes of the loop.
	if err := ctrl.FlushNote(context.Background()); err != nil {
		e.logger.Printf("session: final flush: %v", err)
	}
	if runErr != nil {
		return fmt.Errorf("run tui: %w", runErr)
	}
	return nil
}
