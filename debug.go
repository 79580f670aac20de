package armature

import (
	"image/color"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
)

// DebugOptions controls DrawBones.
type DebugOptions struct {
	BoneColor      color.Color // parent to child segments
	ArrowColor     color.Color // per-bone orientation arrow
	JointColor     color.Color
	Highlight      BoneID // drawn with HighlightColor when non-zero
	HighlightColor color.Color
	ArrowLength    float32 // 0 means 12
	Width          float32 // 0 means 2

	// GeoM maps skeleton space onto dst, e.g. a camera transform.
	GeoM ebiten.GeoM
}

var (
	debugBoneColor      = color.RGBA{0xd0, 0xd0, 0xd0, 0xff}
	debugArrowColor     = color.RGBA{0xff, 0x40, 0x40, 0xff}
	debugJointColor     = color.RGBA{0xff, 0xc0, 0x20, 0xff}
	debugHighlightColor = color.RGBA{0x40, 0xa0, 0xff, 0xff}
)

// DrawBones draws a resolved skeleton: a segment from every bone to each of
// its children, a joint dot, and an arrow showing the bone's world rotation.
// world is usually the result of Pose.Resolve or Player.Update. opts may be nil.
func DrawBones(dst *ebiten.Image, skel *Skeleton, world map[BoneID]Transform, opts *DebugOptions) {
	var o DebugOptions
	if opts != nil {
		o = *opts
	}
	if o.BoneColor == nil {
		o.BoneColor = debugBoneColor
	}
	if o.ArrowColor == nil {
		o.ArrowColor = debugArrowColor
	}
	if o.JointColor == nil {
		o.JointColor = debugJointColor
	}
	if o.HighlightColor == nil {
		o.HighlightColor = debugHighlightColor
	}
	if o.ArrowLength == 0 {
		o.ArrowLength = 12
	}
	if o.Width == 0 {
		o.Width = 2
	}

	project := func(v Vec2) (float32, float32) {
		x, y := o.GeoM.Apply(v.X, v.Y)
		return float32(x), float32(y)
	}

	skel.Walk(func(b *Bone, _ int) bool {
		t, ok := world[b.ID]
		if !ok {
			return true
		}
		x0, y0 := project(t.Translation)
		segment := o.BoneColor
		if b.ID == o.Highlight {
			segment = o.HighlightColor
		}
		for _, c := range b.children {
			ct, ok := world[c]
			if !ok {
				continue
			}
			x1, y1 := project(ct.Translation)
			vector.StrokeLine(dst, x0, y0, x1, y1, o.Width, segment, true)
		}

		tip := t.Translation.Add(Vec2{X: float64(o.ArrowLength)}.Rotate(t.Rotation))
		x1, y1 := project(tip)
		vector.StrokeLine(dst, x0, y0, x1, y1, o.Width, o.ArrowColor, true)
		for _, side := range [2]float64{math.Pi * 0.8, -math.Pi * 0.8} {
			barb := tip.Add(Vec2{X: float64(o.ArrowLength) / 3}.Rotate(t.Rotation + side))
			bx, by := project(barb)
			vector.StrokeLine(dst, x1, y1, bx, by, o.Width, o.ArrowColor, true)
		}

		joint := o.JointColor
		if b.ID == o.Highlight {
			joint = o.HighlightColor
		}
		vector.DrawFilledCircle(dst, x0, y0, o.Width*1.5, joint, true)
		return true
	})
}
