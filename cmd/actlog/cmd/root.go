package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/nari/actlog/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "actlog",
		Short: "ACT network log decoder and integrity validator",
		Long: `actlog verifies the integrity suffix of ACT network log lines and decodes
ability and status list lines into a storage backend.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			configDir, _ := cmd.Flags().GetString("config")
			if err := config.Load(configDir); err != nil {
				var notFound viper.ConfigFileNotFoundError
				if !errors.As(err, &notFound) {
					return err
				}
			}
			if cmd.Flags().Changed("log-level") {
				level, _ := cmd.Flags().GetString("log-level")
				viper.Set("logLevel", level)
			}
			return nil
		},
	}

	rootCmd.PersistentFlags().StringP("config", "c", ".", "Directory containing "+config.FileName)
	rootCmd.PersistentFlags().String("log-level", "", "Log level override (debug, info, warn, error)")

	rootCmd.AddCommand(newValidateCmd(), newIngestCmd())
	return rootCmd
}

// Execute runs the root command. This is called by main.main().
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
