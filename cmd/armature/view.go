package main

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/spf13/cobra"

	"github.com/phanxgames/armature"
	"github.com/phanxgames/armature/project"
)

type viewOptions struct {
	Sets    []string
	Width   int
	Height  int
	Zoom    float64
	ShowFPS bool
}

var viewOpts viewOptions

var viewCmd = &cobra.Command{
	Use:   "view FILE",
	Short: "Preview a rig in a window",
	Long: `Opens a window that plays the rig and draws its skins and bones.
Space pauses, R restarts, B toggles bones, arrows pan and the wheel zooms.
Skin images are resolved relative to the rig file.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := newRigViewer(args[0], viewOpts)
		if err != nil {
			return err
		}
		return armature.RunViewer(v, armature.ViewerConfig{
			Title:   "armature - " + filepath.Base(args[0]),
			Width:   viewOpts.Width,
			Height:  viewOpts.Height,
			ShowFPS: viewOpts.ShowFPS,
		})
	},
}

func init() {
	rootCmd.AddCommand(viewCmd)
	f := viewCmd.Flags()
	f.StringArrayVar(&viewOpts.Sets, "set", nil, "Property override name=value (repeatable)")
	f.IntVar(&viewOpts.Width, "width", 800, "Window width")
	f.IntVar(&viewOpts.Height, "height", 600, "Window height")
	f.Float64Var(&viewOpts.Zoom, "zoom", 1, "Initial camera zoom")
	f.BoolVar(&viewOpts.ShowFPS, "fps", false, "Show the FPS counter")
}

func newRigViewer(path string, opts viewOptions) (*armature.Viewer, error) {
	if opts.Width <= 0 || opts.Height <= 0 {
		return nil, fmt.Errorf("window size %dx%d must be positive", opts.Width, opts.Height)
	}
	r, err := loadRig(path, opts.Sets)
	if err != nil {
		return nil, err
	}
	p := r.NewPlayer(armature.WithLogger(logger))
	p.Play()

	v := armature.NewViewer(opts.Width, opts.Height)
	if opts.Zoom > 0 {
		v.Camera.Zoom = opts.Zoom
	}
	v.Add(p, skinImages(r, filepath.Dir(path))...)
	v.SetUpdateFunc(func(float64) error {
		v.SetStatus(statusText(r))
		return nil
	})
	v.SetStatus(statusText(r))
	return v, nil
}

// skinImages loads every skin texture. Skins whose image cannot be loaded
// are skipped with a warning so the bones can still be inspected.
func skinImages(r *project.Rig, dir string) []armature.SkinImage {
	var out []armature.SkinImage
	for _, s := range r.Skins {
		if s.Image == "" {
			logger.Warn("skin has no image", "skin", s.Name)
			continue
		}
		path := s.Image
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		img, _, err := ebitenutil.NewImageFromFile(path)
		if err != nil {
			logger.Warn("skin image not loaded", "skin", s.Name, "path", path, "error", err)
			continue
		}
		out = append(out, armature.SkinImage{Skin: s, Image: img})
	}
	return out
}

// statusText lists the rig's properties and the current state of every
// state machine.
func statusText(r *project.Rig) string {
	var sb strings.Builder
	sb.WriteString(r.Name)
	for _, p := range r.Graph.Properties().All() {
		fmt.Fprintf(&sb, "\n%s = %.3g", p.Name, p.Value)
	}
	for _, n := range r.Graph.Nodes() {
		if n.Machine == nil {
			continue
		}
		if st, ok := n.Machine.State(n.Machine.Current()); ok {
			fmt.Fprintf(&sb, "\nnode %d: %s", n.ID, st.Name)
		}
	}
	return sb.String()
}
