package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/spachava753/contactbridge/bridge"
	"github.com/spachava753/contactbridge/config"
	"github.com/spachava753/contactbridge/logging"
	"github.com/spachava753/contactbridge/store"
)

var (
	// Global flags
	configPath string
	dbPath     string
	mode       string
	verbose    bool

	cfg    *config.Config
	logger *zap.Logger
)

var rootCmd = &cobra.Command{
	Use:   "contactbridge",
	Short: "Read and write address-book contacts stored as platform data rows",
	Long: `contactbridge reconstructs contacts from a sqlite copy of the platform
contacts data view and writes them back.

Contacts are addressed either as unified (aggregated) contacts or as single
raw records, selected with --mode. Results are printed as JSON.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(configPath)
		if err != nil {
			return err
		}
		if dbPath != "" {
			cfg.Store.Path = dbPath
		}
		if mode != "" {
			cfg.Contacts.Mode = mode
		}
		if verbose {
			cfg.Logging.Level = "debug"
		}
		if err := cfg.Validate(); err != nil {
			return err
		}

		logger, err = logging.New(cfg.Logging)
		if err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "contactbridge.yaml", "Config file")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "Contacts database (overrides store.path)")
	rootCmd.PersistentFlags().StringVarP(&mode, "mode", "m", "", "Addressing mode: unified or single")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose logging")

	listCmd.Flags().String("query", "", "Only contacts whose display name starts with this")
	listCmd.Flags().String("sort", "", "Sort field (display_name)")
	listCmd.Flags().String("order", "asc", "Sort order: asc or desc")
	listCmd.Flags().Int("limit", 0, "Page size (default: contacts.page_limit)")
	listCmd.Flags().Int("offset", 0, "Contacts to skip")
	listCmd.Flags().Bool("avatars", false, "Include avatars")
	listCmd.Flags().Bool("high-res", false, "Prefer full-size photos")

	getCmd.Flags().Bool("avatars", false, "Include the avatar")

	countCmd.Flags().String("query", "", "Only contacts whose display name starts with this")

	addCmd.Flags().String("display", "", "Display name")
	addCmd.Flags().String("given", "", "Given name")
	addCmd.Flags().String("middle", "", "Middle name")
	addCmd.Flags().String("family", "", "Family name")
	addCmd.Flags().String("prefix", "", "Name prefix")
	addCmd.Flags().String("suffix", "", "Name suffix")
	addCmd.Flags().StringArray("phone", nil, "Phone as label=value (repeatable)")
	addCmd.Flags().StringArray("email", nil, "Email as label=value (repeatable)")
	addCmd.Flags().StringArray("date", nil, "Event date as label=date (repeatable)")
	addCmd.Flags().String("photo", "", "Photo file")

	avatarCmd.Flags().Bool("high-res", false, "Prefer the full-size photo")
	avatarCmd.Flags().StringP("out", "o", "", "Write the photo to this file instead of stdout")
	avatarCmd.Flags().String("set", "", "Store this file as the full-size photo")

	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(getCmd)
	rootCmd.AddCommand(countCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(deleteCmd)
	rootCmd.AddCommand(avatarCmd)
	rootCmd.AddCommand(dateCmd)
	rootCmd.AddCommand(serveCmd)
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// openBridge opens the configured store and wraps it in a bridge. The caller
// closes the returned store.
func openBridge(readOnly bool) (*bridge.Bridge, *store.Store, error) {
	s, err := store.Open(cfg.Store.Path, store.Options{
		ReadOnly:    readOnly || cfg.Store.ReadOnly,
		BusyTimeout: cfg.BusyTimeout(),
		Logger:      logger,
	})
	if err != nil {
		return nil, nil, err
	}
	b := bridge.New(s, bridge.Options{
		Mode:        cfg.Mode(),
		PageLimit:   cfg.Contacts.PageLimit,
		WithAvatars: cfg.Contacts.WithAvatars,
		HighRes:     cfg.Contacts.HighResAvatars,
		Logger:      logger,
	})
	return b, s, nil
}
