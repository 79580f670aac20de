package armature

import (
	"fmt"

	"github.com/hajimehoshi/ebiten/v2"
)

// BoneWeight binds a skin vertex to a bone.
type BoneWeight struct {
	Bone   BoneID
	Weight float64
}

// SkinVertex is a mesh vertex placed in the skeleton's rest space, with the
// texel it samples.
type SkinVertex struct {
	Position   Vec2
	SrcX, SrcY float32
	Weights    []BoneWeight
}

// Skin is an image mapped onto the skeleton as a triangle mesh whose
// vertices follow weighted bones. Indices are supplied by the caller.
type Skin struct {
	Name     string
	Image    string // asset reference, resolved by the caller
	Vertices []SkinVertex
	Indices  []uint16
}

// Validate checks that indices form triangles over existing vertices and
// that every weight references a bone of skel.
func (s *Skin) Validate(skel *Skeleton) error {
	if len(s.Indices)%3 != 0 {
		return fmt.Errorf("skin %q: %d indices do not form triangles", s.Name, len(s.Indices))
	}
	for _, i := range s.Indices {
		if int(i) >= len(s.Vertices) {
			return fmt.Errorf("skin %q: index %d out of range", s.Name, i)
		}
	}
	for vi, v := range s.Vertices {
		for _, w := range v.Weights {
			if _, ok := skel.Bone(w.Bone); !ok {
				return fmt.Errorf("skin %q: vertex %d: bone %d: %w", s.Name, vi, w.Bone, ErrUnknownBone)
			}
		}
	}
	return nil
}

// Deform moves every vertex with its bones from rest to world and writes the
// result into dst, which is grown as needed and returned. Each bone carries
// the vertex by the change in its rotation and scale between rest and world;
// results are averaged by weight. Vertices without usable weights stay at
// their rest position.
func (s *Skin) Deform(dst []ebiten.Vertex, rest, world map[BoneID]Transform) []ebiten.Vertex {
	if cap(dst) < len(s.Vertices) {
		dst = make([]ebiten.Vertex, len(s.Vertices))
	}
	dst = dst[:len(s.Vertices)]
	for i := range s.Vertices {
		v := &s.Vertices[i]
		p := deformPoint(v, rest, world)
		dst[i] = ebiten.Vertex{
			DstX:   float32(p.X),
			DstY:   float32(p.Y),
			SrcX:   v.SrcX,
			SrcY:   v.SrcY,
			ColorR: 1,
			ColorG: 1,
			ColorB: 1,
			ColorA: 1,
		}
	}
	return dst
}

func deformPoint(v *SkinVertex, rest, world map[BoneID]Transform) Vec2 {
	var sum Vec2
	var total float64
	for _, w := range v.Weights {
		r, ok := rest[w.Bone]
		if !ok || w.Weight == 0 || r.Scale == 0 {
			continue
		}
		p, ok := world[w.Bone]
		if !ok {
			continue
		}
		moved := v.Position.Sub(r.Translation).
			Rotate(p.Rotation - r.Rotation).
			Scale(p.Scale / r.Scale).
			Add(p.Translation)
		sum = sum.Add(moved.Scale(w.Weight))
		total += w.Weight
	}
	if total == 0 {
		return v.Position
	}
	return sum.Scale(1 / total)
}

// DrawSkin deforms s, maps the result through geoM, and draws it with img as
// the texture. buf is reused for the vertices and returned.
func DrawSkin(dst, img *ebiten.Image, s *Skin, rest, world map[BoneID]Transform, geoM ebiten.GeoM, buf []ebiten.Vertex) []ebiten.Vertex {
	buf = s.Deform(buf, rest, world)
	for i := range buf {
		x, y := geoM.Apply(float64(buf[i].DstX), float64(buf[i].DstY))
		buf[i].DstX, buf[i].DstY = float32(x), float32(y)
	}
	if len(s.Indices) > 0 {
		dst.DrawTriangles(buf, s.Indices, img, &ebiten.DrawTrianglesOptions{})
	}
	return buf
}
