package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/phanxgames/armature/project"
)

var validateCmd = &cobra.Command{
	Use:   "validate FILE...",
	Short: "Check rig documents for errors",
	Long:  `Loads each rig and reports every invalid field, or a summary of what it contains.`,
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		failed := 0
		for _, path := range args {
			if err := runValidate(cmd.OutOrStdout(), path); err != nil {
				failed++
			}
		}
		if failed > 0 {
			return fmt.Errorf("%d of %d files failed validation", failed, len(args))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(w io.Writer, path string) error {
	r, err := project.Load(path)
	if err != nil {
		if fields := project.FieldErrors(err); len(fields) > 0 {
			fmt.Fprintf(w, "%s: %d errors\n", path, len(fields))
			for _, fe := range fields {
				fmt.Fprintf(w, "  - %v\n", fe)
			}
		} else {
			fmt.Fprintf(w, "%s: %v\n", path, err)
		}
		logger.Debug("validation failed", "path", path, "error", err)
		return err
	}
	fmt.Fprintf(w, "%s: ok (%d bones, %d animations, %d nodes, %d properties, %d skins)\n",
		path, r.Skeleton.Len(), len(r.Animations), r.Graph.Len(), r.Graph.Properties().Len(), len(r.Skins))
	return nil
}
