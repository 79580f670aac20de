package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/phanxgames/armature/internal/logging"
)

var logger = logging.NewNop()

var rootCmd = &cobra.Command{
	Use:   "armature",
	Short: "Armature evaluates and previews skeletal sprite rigs",
	Long: `Armature loads rig documents (YAML or JSON) describing a skeleton, animations,
and a blend graph, and evaluates them headless or in a preview window.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		s, _ := cmd.Flags().GetString("log-level")
		level, err := logging.ParseLevel(s)
		if err != nil {
			return err
		}
		logger = logging.New(level)
		slog.SetDefault(logger)
		return nil
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
}
