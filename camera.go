package armature

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween"
)

// scrollAnim holds active scroll-to tweens for camera X and Y.
type scrollAnim struct {
	tweenX *gween.Tween
	tweenY *gween.Tween
	doneX  bool
	doneY  bool
}

// Camera maps skeleton space onto a viewport: the point (X, Y) appears at
// the viewport center, scaled by Zoom and rotated by -Rotation.
type Camera struct {
	// X and Y are the skeleton-space position the camera centers on.
	X, Y float64
	// Zoom is the scale factor (1.0 = no zoom, >1 = zoom in, <1 = zoom out).
	Zoom float64
	// Rotation is the camera rotation in radians.
	Rotation float64
	// Width and Height are the viewport size in screen pixels.
	Width, Height float64

	scroll *scrollAnim
}

// NewCamera creates a camera centered on the origin for a viewport of the
// given size.
func NewCamera(width, height float64) *Camera {
	return &Camera{Zoom: 1, Width: width, Height: height}
}

// ScrollTo animates the camera to (x, y) over duration seconds.
func (c *Camera) ScrollTo(x, y float64, duration float32, easing Easing) {
	fn := easingFuncs[EaseLinear]
	if easing.Valid() {
		fn = easingFuncs[easing]
	}
	c.scroll = &scrollAnim{
		tweenX: gween.New(float32(c.X), float32(x), duration, fn),
		tweenY: gween.New(float32(c.Y), float32(y), duration, fn),
	}
}

// Scrolling reports whether a ScrollTo animation is running.
func (c *Camera) Scrolling() bool { return c.scroll != nil }

// Update advances a running scroll animation by dt seconds.
func (c *Camera) Update(dt float32) {
	s := c.scroll
	if s == nil {
		return
	}
	if !s.doneX {
		val, done := s.tweenX.Update(dt)
		c.X = float64(val)
		s.doneX = done
	}
	if !s.doneY {
		val, done := s.tweenY.Update(dt)
		c.Y = float64(val)
		s.doneY = done
	}
	if s.doneX && s.doneY {
		c.scroll = nil
	}
}

// GeoM returns the view matrix:
// Translate(cx, cy) * Scale(zoom) * Rotate(-rotation) * Translate(-X, -Y)
// where cx, cy is the viewport center.
func (c *Camera) GeoM() ebiten.GeoM {
	var m ebiten.GeoM
	m.Translate(-c.X, -c.Y)
	m.Rotate(-c.Rotation)
	m.Scale(c.Zoom, c.Zoom)
	m.Translate(c.Width/2, c.Height/2)
	return m
}

// WorldToScreen converts skeleton-space coordinates to screen coordinates.
func (c *Camera) WorldToScreen(p Vec2) Vec2 {
	m := c.GeoM()
	x, y := m.Apply(p.X, p.Y)
	return Vec2{x, y}
}

// ScreenToWorld converts screen coordinates to skeleton-space coordinates.
// A camera with zero zoom maps everything to its center.
func (c *Camera) ScreenToWorld(p Vec2) Vec2 {
	if c.Zoom == 0 {
		return Vec2{c.X, c.Y}
	}
	return p.Sub(Vec2{c.Width / 2, c.Height / 2}).
		Scale(1 / c.Zoom).
		Rotate(c.Rotation).
		Add(Vec2{c.X, c.Y})
}

// ZoomAt multiplies Zoom by factor while keeping the skeleton-space point
// under the screen position p fixed.
func (c *Camera) ZoomAt(p Vec2, factor float64) {
	if factor <= 0 || math.IsInf(factor, 0) || math.IsNaN(factor) {
		return
	}
	before := c.ScreenToWorld(p)
	c.Zoom *= factor
	after := c.ScreenToWorld(p)
	c.X += before.X - after.X
	c.Y += before.Y - after.Y
}

// Pan moves the camera by a screen-space offset.
func (c *Camera) Pan(dx, dy float64) {
	if c.Zoom == 0 {
		return
	}
	d := Vec2{dx, dy}.Scale(1 / c.Zoom).Rotate(c.Rotation)
	c.X += d.X
	c.Y += d.Y
}
