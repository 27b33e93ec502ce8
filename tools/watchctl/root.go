package main

import (
	"context"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"cinetrack/config"
	"cinetrack/internal/database"
)

type commandContext struct {
	configFlag *string

	once     sync.Once
	settings config.Settings
	err      error
}

func (c *commandContext) ensureSettings() (config.Settings, error) {
	c.once.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		c.settings, c.err = config.NewManager(config.ResolvePath(path)).Load()
	})
	return c.settings, c.err
}

func (c *commandContext) openDB(ctx context.Context) (*database.DB, error) {
	settings, err := c.ensureSettings()
	if err != nil {
		return nil, err
	}
	return database.Open(ctx, database.Config{
		Driver:          settings.Database.Driver,
		DatabasePath:    settings.Database.Path,
		DSN:             settings.Database.DSN,
		ConnectAttempts: uint(settings.Database.ConnectAttempts),
		ConnectDelay:    settings.Database.ConnectDelay(),
	})
}

func newRootCommand() *cobra.Command {
	var configFlag string
	ctx := &commandContext{configFlag: &configFlag}

	rootCmd := &cobra.Command{
		Use:           "watchctl",
		Short:         "Inspect cinetrack watch state",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureSettings()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}
	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Settings file path")

	rootCmd.AddCommand(newMigrateCommand(ctx))
	rootCmd.AddCommand(newListCommand(ctx))
	rootCmd.AddCommand(newEpisodesCommand(ctx))
	rootCmd.AddCommand(newTokenCommand(ctx))
	return rootCmd
}
