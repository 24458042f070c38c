// cmd/topsy/main.go
//
// Entry point for the topsy overlay. The root command loads the config,
// builds every configured plugin and hands them to the frame host. The
// subcommands inspect the setup without opening the overlay.

package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/kingrea/topsy/internal/checklist"
	"github.com/kingrea/topsy/internal/config"
	"github.com/kingrea/topsy/internal/logging"
	"github.com/kingrea/topsy/internal/plugin"
	"github.com/kingrea/topsy/internal/plugins"
	"github.com/kingrea/topsy/internal/tui"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var configPath string

	rootCmd := &cobra.Command{
		Use:   config.AppName,
		Short: "Checklist overlay driven by plugins",
		Long: `topsy draws one checklist panel per markdown file in your notes directory.

Plugins are listed in the config file (default: $XDG_CONFIG_HOME/topsy/topsy.yaml)
and run once per frame. Checked items, deletions and new items are written back
to the markdown files when the overlay exits.

Keys:
  space   check / uncheck       a      new item
  d       delete item           tab    next list
  ?       help                  q      quit`,
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runOverlay(configPath)
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Config file path")

	pluginsCmd := &cobra.Command{
		Use:   "plugins",
		Short: "List the plugin modules that can be referenced from the config",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			listPlugins(cmd.OutOrStdout(), plugins.NewRegistry())
		},
	}

	checkCmd := &cobra.Command{
		Use:   "check [dir]",
		Short: "Parse every list in a notes directory and report progress",
		Long: `Parse every markdown list in dir, or in the notes_directory of the first
notes plugin in the config, and print each title with its progress. Nothing
is written. A malformed file stops the check with its path and line.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := ""
			if len(args) == 1 {
				dir = args[0]
			} else {
				cfg, err := loadConfig(configPath)
				if err != nil {
					return err
				}
				if dir = notesDirectory(cfg); dir == "" {
					return fmt.Errorf("no notes plugin configured in %s", cfg.Path)
				}
			}
			return checkDir(cmd.OutOrStdout(), dir)
		},
	}

	rootCmd.AddCommand(pluginsCmd, checkCmd)
	return rootCmd
}

func loadConfig(path string) (*config.Config, error) {
	if path == "" {
		var err error
		if path, err = config.DefaultPath(); err != nil {
			return nil, err
		}
	}
	return config.Load(path)
}

func runOverlay(configPath string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	stateDir, err := config.StateDir()
	if err != nil {
		return err
	}
	logger, err := logging.New(stateDir, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Close()
	logger.Info().Str("config", cfg.Path).Int("plugins", len(cfg.Plugins)).Msg("starting")

	surface := tui.NewSurface()
	env := plugin.Env{Logger: logger.Logger, Surface: surface}
	host, err := plugin.NewHost(plugins.NewRegistry(), env, cfg.Plugins)
	if err != nil {
		logger.Error().Err(err).Msg("startup failed")
		return fmt.Errorf("%w (log: %s)", err, logger.Path())
	}
	err = tui.Run(host, surface, tui.WithLogger(logger.Logger))
	if closeErr := host.CloseAll(); closeErr != nil && err == nil {
		err = closeErr
	}
	if err != nil {
		logger.Error().Err(err).Msg("exited with error")
		return fmt.Errorf("%w (log: %s)", err, logger.Path())
	}
	logger.Info().Uint64("frames", host.Frames()).Msg("stopped")
	return nil
}

func listPlugins(w io.Writer, reg *plugin.Registry) {
	for _, id := range reg.IDs() {
		fmt.Fprintln(w, id)
	}
}

func notesDirectory(cfg *config.Config) string {
	for _, pc := range cfg.Plugins {
		if pc.Module != "notes" && pc.Module != "topsy.plugins.notes" {
			continue
		}
		if dir, ok := pc.Options["notes_directory"].(string); ok && dir != "" {
			return dir
		}
	}
	return ""
}

func checkDir(w io.Writer, dir string) error {
	dir, err := config.ExpandPath(dir)
	if err != nil {
		return err
	}
	docs, err := checklist.NewCodec().LoadDir(dir, checklist.DefaultExtension)
	if err != nil {
		return err
	}
	for _, doc := range docs {
		done, total := doc.Progress()
		fmt.Fprintf(w, "%-24s %d/%d\n", doc.Title, done, total)
	}
	fmt.Fprintf(w, "%d lists in %s\n", len(docs), dir)
	return nil
}
