package cmd

import (
	"context"
	"fmt"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/veldrane/dealdeck/internal/api"
	"github.com/veldrane/dealdeck/internal/config"
	"github.com/veldrane/dealdeck/internal/logging"
	svcboard "github.com/veldrane/dealdeck/internal/services/board"
	"github.com/veldrane/dealdeck/internal/store"
	"github.com/veldrane/dealdeck/internal/tui"
)

var (
	flagAPI      string
	flagToken    string
	flagPipeline string
	flagLocal    bool
)

var rootCmd = &cobra.Command{
	Use:   "dealdeck",
	Short: "DealDeck - a terminal CRM pipeline board",
	Long: `DealDeck is a terminal pipeline board for CRM deals. Drag cards between
stages with the mouse or move them with the keyboard; changes persist to a
CRM server or to an embedded local store.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBoard()
	},
}

func init() {
	rootCmd.Flags().StringVar(&flagAPI, "api", "", "CRM server base URL (overrides config)")
	rootCmd.Flags().StringVar(&flagToken, "token", "", "CRM server API token (overrides config)")
	rootCmd.Flags().StringVar(&flagPipeline, "pipeline", "", "pipeline to open at startup, by name or id")
	rootCmd.Flags().BoolVar(&flagLocal, "local", false, "use the embedded local store instead of a server")
}

func Execute() error {
	return rootCmd.Execute()
}

func runBoard() error {
	if err := logging.Init(); err != nil {
		return fmt.Errorf("initializing logging: %w", err)
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if flagAPI != "" {
		cfg.API.BaseURL = flagAPI
	}
	if flagToken != "" {
		cfg.API.Token = flagToken
	}
	if flagPipeline != "" {
		cfg.Pipeline = flagPipeline
	}
	if flagLocal {
		cfg.Local = true
	}

	backend, cleanup, err := newBackend(cfg)
	if err != nil {
		return err
	}
	defer cleanup()

	p := tea.NewProgram(tui.New(cfg, backend), tea.WithAltScreen(), tea.WithMouseAllMotion())
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("running board: %w", err)
	}
	return nil
}

// newBackend picks the record store: a REST client when a server is
// configured, the embedded sqlite store otherwise.
func newBackend(cfg *config.Config) (svcboard.Backend, func(), error) {
	if cfg.API.BaseURL != "" && !cfg.Local {
		slog.Info("using CRM server", "base_url", cfg.API.BaseURL)
		return api.NewClient(cfg.API.BaseURL, cfg.API.Token), func() {}, nil
	}

	slog.Info("using embedded local store")
	db, err := store.Open(context.Background())
	if err != nil {
		return nil, nil, fmt.Errorf("opening local store: %w", err)
	}
	return store.New(db), func() { db.Close() }, nil
}
