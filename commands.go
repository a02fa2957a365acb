package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"deepresearch/config"
	"deepresearch/storage"
	"deepresearch/ui"
)

func newConnectionsCommand(console *ui.Console, opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "connections",
		Short: "List the project's connections (use the Bing one's ID as BING_CONNECTION_ID)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			if cfg.ProjectEndpoint == "" {
				return &config.ConfigError{Setting: "project.endpoint", EnvVar: config.EnvProjectEndpoint, Reason: "is required"}
			}

			service, err := newService(cfg)
			if err != nil {
				return err
			}

			connections, err := service.ListConnections(cmd.Context())
			if err != nil {
				return err
			}
			if len(connections) == 0 {
				console.Println("No connections found in this project.")
				return nil
			}
			for _, c := range connections {
				console.Printf("%-32s %-16s %s\n", c.Name, c.Type, c.ID)
			}
			return nil
		},
	}
}

func newHistoryCommand(console *ui.Console, opts *cliOptions) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent research runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, opts)
			if err != nil {
				return err
			}
			if !config.FileExists(cfg.HistoryPath()) {
				console.Printf("%s", ui.FormatHistory(nil))
				return nil
			}

			history, err := storage.OpenHistoryStorage(cfg.HistoryPath())
			if err != nil {
				return fmt.Errorf("failed to open run history: %w", err)
			}
			defer history.Close()

			records, err := history.List(limit)
			if err != nil {
				return err
			}
			console.Printf("%s", ui.FormatHistory(records))
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "number of runs to show (0 for all)")
	return cmd
}

func newInitCommand(console *ui.Console, opts *cliOptions) *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a commented settings.toml template",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path := config.ExpandPath(opts.settingsPath)
			if path == "" {
				path = config.GetSettingsFilePath()
			}

			if err := config.CreateDefaultSettings(path, force); err != nil {
				return err
			}
			console.Successf("Settings template written to '%s'.", path)
			return nil
		},
	}

	cmd.Flags().BoolVar(&force, "force", false, "overwrite an existing settings file")
	return cmd
}
