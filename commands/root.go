package commands

import (
	"errors"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"springboard/client"
	"springboard/config"
	"springboard/model"
	"springboard/storage"
	"springboard/ui"
)

// rootOptions holds the persistent flags shared by every subcommand.
type rootOptions struct {
	apiBase   string
	dataDir   string
	storage   string
	ephemeral bool
	debug     bool
	submit    bool
}

func (o *rootOptions) overrides() config.Overrides {
	return config.Overrides{
		APIBase:        o.apiBase,
		DataDirectory:  o.dataDir,
		StorageBackend: o.storage,
		Ephemeral:      o.ephemeral,
		Debug:          o.debug,
	}
}

// workspace is everything a command needs once config is loaded.
type workspace struct {
	cfg   *config.Config
	kv    storage.KV
	store *storage.ChatStore
}

func (o *rootOptions) open() (*workspace, error) {
	cfg, err := config.Load(o.overrides())
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	kv, err := storage.OpenKV(cfg.StorageBackend, cfg.DataDir())
	if err != nil {
		return nil, fmt.Errorf("failed to open local storage: %w", err)
	}

	store, err := storage.NewChatStore(kv, storage.WithLogger(config.DebugLog))
	if err != nil {
		kv.Close()
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}

	return &workspace{cfg: cfg, kv: kv, store: store}, nil
}

func (w *workspace) client() (*client.Client, error) {
	return client.NewClient(w.cfg.APIBase,
		client.WithTimeout(w.cfg.RequestTimeout),
		client.WithDetailLikePath(w.cfg.DetailLikePath),
		client.WithLogger(config.DebugLog),
	)
}

func (w *workspace) Close() {
	if err := w.kv.Close(); err != nil {
		config.DebugLog.Warn().Err(err).Msg("failed to close local storage")
	}
}

// NewRootCommand creates the root command
func NewRootCommand(version string) *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:     "springboard",
		Short:   "Find the API you need by describing it",
		Long:    `springboard is a terminal client for an API discovery service: describe what you need, browse matching APIs, like them and submit new ones.`,
		Version: version,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts, version)
		},
		SilenceUsage: true,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&opts.apiBase, "api-base", "", "Backend base URL (overrides config.toml)")
	flags.StringVar(&opts.dataDir, "data-dir", "", "Data directory (overrides settings.toml)")
	flags.StringVar(&opts.storage, "storage", "", "Local storage backend: file, sqlite or memory")
	flags.BoolVar(&opts.ephemeral, "ephemeral", false, "Keep chat history in memory only")
	flags.BoolVar(&opts.debug, "debug", false, "Write a debug log to <data-dir>/debug.log")

	rootCmd.Flags().BoolVar(&opts.submit, "submit", false, "Open the submit panel on start")

	rootCmd.AddCommand(NewHistoryCommand(opts))
	rootCmd.AddCommand(NewSearchCommand(opts))

	return rootCmd
}

// Execute runs the root command
func Execute(version string) {
	rootCmd := NewRootCommand(version)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runTUI(opts *rootOptions, version string) error {
	ws, err := opts.open()
	if err != nil {
		return showErrorModal("Configuration Error", err)
	}
	defer ws.Close()

	c, err := ws.client()
	if err != nil {
		return showErrorModal("Configuration Error", err)
	}

	dataModel := model.NewModel(ws.cfg, c, ws.store, version)
	if opts.submit {
		dataModel.ShowPanel(model.PanelSubmit)
	}

	config.DebugLog.Info().
		Str("api_base", c.BaseURL()).
		Str("storage", ws.cfg.StorageBackend).
		Int("sessions", ws.store.Len()).
		Msg("starting springboard")

	p := tea.NewProgram(
		ui.NewAppView(dataModel),
		tea.WithAltScreen(),
	)

	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running springboard: %w", err)
	}
	return nil
}

// showErrorModal reports a startup failure full-screen, then returns the
// error so the exit status is still non-zero.
func showErrorModal(title string, cause error) error {
	p := tea.NewProgram(
		ui.NewErrorModal(title, cause.Error()),
		tea.WithAltScreen(),
	)
	if _, err := p.Run(); err != nil {
		return errors.Join(cause, err)
	}
	return cause
}
