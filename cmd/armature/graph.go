package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/phanxgames/armature/internal/mermaid"
)

var graphCmd = &cobra.Command{
	Use:   "graph FILE",
	Short: "Export the blend graph visualization",
	Long:  `Loads a rig and outputs a Mermaid diagram (graph TD) of its blend graph and state machines.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		current, _ := cmd.Flags().GetBool("current")
		return runGraph(cmd.OutOrStdout(), args[0], current)
	},
}

func init() {
	rootCmd.AddCommand(graphCmd)
	graphCmd.Flags().Bool("current", false, "Highlight each state machine's start state")
}

func runGraph(w io.Writer, path string, current bool) error {
	r, err := loadRig(path, nil)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(w, mermaid.GenerateMermaid(r.Graph, &mermaid.Overlay{
		Animations: mermaid.AnimationNames(r.Animations),
		Skeleton:   r.Skeleton,
		Current:    current,
	}))
	return err
}
