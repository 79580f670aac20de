package armature

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// SkinImage pairs a skin with the texture it samples.
type SkinImage struct {
	Skin  *Skin
	Image *ebiten.Image
}

type viewerEntry struct {
	player *Player
	skins  []SkinImage
	rest   map[BoneID]Transform
	buf    []ebiten.Vertex
}

// ViewerConfig holds window settings for RunViewer.
type ViewerConfig struct {
	Title         string
	Width, Height int
	ShowFPS       bool
}

// Viewer is an ebiten.Game that plays and draws rigs. Keys: Space toggles
// playback, R resets, B toggles bones, arrows pan, and the mouse wheel zooms
// at the cursor.
type Viewer struct {
	Camera     *Camera
	Debug      DebugOptions
	ShowBones  bool
	ShowFPS    bool
	ClearColor color.Color

	entries []*viewerEntry
	update  func(dt float64) error
	width   int
	height  int
	status  string
}

// NewViewer creates a viewer for a screen of the given size with its
// camera centered on the skeleton origin.
func NewViewer(width, height int) *Viewer {
	return &Viewer{
		Camera:     NewCamera(float64(width), float64(height)),
		ShowBones:  true,
		ClearColor: color.RGBA{0x1e, 0x1e, 0x28, 0xff},
		width:      width,
		height:     height,
	}
}

// Add registers a player and the skins drawn for it. Players are updated
// and drawn in the order added.
func (v *Viewer) Add(p *Player, skins ...SkinImage) {
	v.entries = append(v.entries, &viewerEntry{
		player: p,
		skins:  skins,
		rest:   Pose{}.Resolve(p.Skeleton()),
	})
}

// Players returns the registered players.
func (v *Viewer) Players() []*Player {
	out := make([]*Player, len(v.entries))
	for i, e := range v.entries {
		out[i] = e.player
	}
	return out
}

// SetUpdateFunc installs a callback run once per tick before the players
// are updated, e.g. to drive properties from game input.
func (v *Viewer) SetUpdateFunc(fn func(dt float64) error) {
	v.update = fn
}

// SetStatus sets a line of text drawn in the top-left corner.
func (v *Viewer) SetStatus(s string) { v.status = s }

// Update implements ebiten.Game.
func (v *Viewer) Update() error {
	v.handleInput()
	return v.Step(1.0 / float64(ebiten.TPS()))
}

// Step advances the camera and every player by dt seconds.
func (v *Viewer) Step(dt float64) error {
	if v.update != nil {
		if err := v.update(dt); err != nil {
			return err
		}
	}
	v.Camera.Update(float32(dt))
	for _, e := range v.entries {
		e.player.Update(dt)
	}
	return nil
}

func (v *Viewer) handleInput() {
	if inpututil.IsKeyJustPressed(ebiten.KeySpace) {
		for _, e := range v.entries {
			if e.player.Playing() {
				e.player.Stop()
			} else {
				e.player.Play()
			}
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		for _, e := range v.entries {
			e.player.Reset()
			e.player.Play()
		}
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyB) {
		v.ShowBones = !v.ShowBones
	}
	const panSpeed = 6
	if ebiten.IsKeyPressed(ebiten.KeyArrowLeft) {
		v.Camera.Pan(-panSpeed, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowRight) {
		v.Camera.Pan(panSpeed, 0)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowUp) {
		v.Camera.Pan(0, -panSpeed)
	}
	if ebiten.IsKeyPressed(ebiten.KeyArrowDown) {
		v.Camera.Pan(0, panSpeed)
	}
	if _, wy := ebiten.Wheel(); wy != 0 {
		mx, my := ebiten.CursorPosition()
		factor := 1.1
		if wy < 0 {
			factor = 1 / factor
		}
		v.Camera.ZoomAt(Vec2{float64(mx), float64(my)}, factor)
	}
}

// Draw implements ebiten.Game.
func (v *Viewer) Draw(screen *ebiten.Image) {
	if v.ClearColor != nil {
		screen.Fill(v.ClearColor)
	}
	view := v.Camera.GeoM()
	for _, e := range v.entries {
		world := e.player.World()
		if world == nil {
			continue
		}
		for _, si := range e.skins {
			if si.Image == nil {
				continue
			}
			e.buf = DrawSkin(screen, si.Image, si.Skin, e.rest, world, view, e.buf)
		}
		if v.ShowBones {
			opts := v.Debug
			opts.GeoM = view
			DrawBones(screen, e.player.Skeleton(), world, &opts)
		}
	}

	text := v.status
	if v.ShowFPS {
		text = fmt.Sprintf("FPS: %.1f\nTPS: %.1f\n%s", ebiten.ActualFPS(), ebiten.ActualTPS(), text)
	}
	if text != "" {
		ebitenutil.DebugPrint(screen, text)
	}
}

// Layout implements ebiten.Game with a fixed logical screen size.
func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return v.width, v.height
}

// RunViewer opens a window and runs v until it is closed.
func RunViewer(v *Viewer, cfg ViewerConfig) error {
	if cfg.Width == 0 || cfg.Height == 0 {
		cfg.Width, cfg.Height = v.width, v.height
	}
	if cfg.Title == "" {
		cfg.Title = "armature"
	}
	v.ShowFPS = v.ShowFPS || cfg.ShowFPS
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	return ebiten.RunGame(v)
}
