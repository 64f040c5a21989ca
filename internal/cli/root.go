package cli

import (
	"fmt"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"news-reader/internal/config"
	"news-reader/internal/preview"
	"news-reader/internal/tui"
)

// rootOptions holds the flags shared by every command.
type rootOptions struct {
	configPath string
	driver     string
}

// NewRootCommand creates the root command. Without a subcommand it starts
// the terminal reader.
func NewRootCommand(version string) *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:           "news-reader",
		Short:         "Headlines reader with bookmarks",
		Long:          "news-reader browses top headlines from a NewsAPI-compatible service, keeps bookmarks locally and can run the key-holding proxy.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts)
		},
	}

	cmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config file")
	cmd.PersistentFlags().StringVar(&opts.driver, "store", "", "store driver override (sqlite, redis, memory)")

	cmd.AddCommand(&cobra.Command{
		Use:   "tui",
		Short: "Start the terminal reader (default)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(opts)
		},
	})
	cmd.AddCommand(newServeCommand(opts))
	cmd.AddCommand(newHeadlinesCommand(opts))
	cmd.AddCommand(newBookmarksCommand(opts))
	cmd.AddCommand(newThemeCommand(opts))
	cmd.AddCommand(newVersionCommand(version))

	return cmd
}

func newVersionCommand(version string) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "news-reader %s\n", version)
		},
	}
}

// runTUI starts the terminal reader, sending log output to the state dir so
// it does not corrupt the screen.
func runTUI(opts *rootOptions) error {
	env, err := setup(opts)
	if err != nil {
		return err
	}
	defer env.Close()

	logPath := config.LogPath()
	if err := os.MkdirAll(filepath.Dir(logPath), 0o755); err != nil {
		return fmt.Errorf("creating log dir: %w", err)
	}
	f, err := tea.LogToFile(logPath, "news-reader")
	if err != nil {
		return fmt.Errorf("opening log file: %w", err)
	}
	defer f.Close()

	return tui.Run(tui.Options{
		Config:  env.cfg,
		Store:   env.store,
		Fetcher: env.fetcher,
		Preview: preview.NewScraper(0),
	})
}
