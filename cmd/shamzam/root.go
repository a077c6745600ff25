package main

import (
	"io"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/cesargomez89/shamzam/internal/config"
	"github.com/cesargomez89/shamzam/internal/logger"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		c.config, c.configErr = config.LoadFile(path)
	})
	return c.config, c.configErr
}

func (c *commandContext) logger(cfg *config.Config, out io.Writer) *logger.Logger {
	return logger.New(logger.Config{
		Output: out,
		Level:  cfg.LogLevel,
		Format: cfg.LogFormat,
	})
}

func newRootCommand() *cobra.Command {
	var configFlag string

	ctx := newCommandContext(&configFlag)

	rootCmd := &cobra.Command{
		Use:           "shamzam",
		Short:         "Identify audio snippets and keep a catalog of recognized tracks",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_, err := ctx.ensureConfig()
			return err
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return cmd.Help()
		},
	}

	rootCmd.PersistentFlags().StringVarP(&configFlag, "config", "c", "", "Configuration file path (TOML)")

	rootCmd.AddCommand(newCatalogCommand(ctx))
	rootCmd.AddCommand(newGatewayCommand(ctx))
	rootCmd.AddCommand(newServeCommand(ctx))
	rootCmd.AddCommand(newIdentifyCommand(ctx))
	rootCmd.AddCommand(newTracksCommand(ctx))

	return rootCmd
}
