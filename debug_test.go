package armature

import (
	"image/color"
	"testing"

	"github.com/hajimehoshi/ebiten/v2"
)

func TestDrawBonesSkipsMissingTransforms(t *testing.T) {
	s, ids := buildChain(t, Vec2{10, 0}, Vec2{10, 0})
	world := Pose{}.Resolve(s)
	delete(world, ids[1])

	dst := ebiten.NewImage(64, 64)
	DrawBones(dst, s, world, nil)
	DrawBones(dst, s, world, &DebugOptions{
		Highlight:  ids[0],
		BoneColor:  color.White,
		Width:      1,
		ArrowColor: color.RGBA{0, 0xff, 0, 0xff},
	})
}

func BenchmarkDrawBones(b *testing.B) {
	s := NewSkeleton()
	parent := s.Root().ID
	for range 32 {
		c, _ := s.AddChild(parent)
		_ = s.SetRest(c.ID, NewPartialTransform(Vec2{8, 0}, 0.1, 1))
		parent = c.ID
	}
	world := Pose{}.Resolve(s)
	dst := ebiten.NewImage(320, 240)
	var opts DebugOptions
	opts.GeoM.Translate(160, 120)

	b.ResetTimer()
	for range b.N {
		DrawBones(dst, s, world, &opts)
	}
}
