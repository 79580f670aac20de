package project

import (
	"fmt"
	"maps"
	"slices"

	"github.com/phanxgames/armature"
)

type encoder struct {
	props *armature.Properties
	names map[*armature.Animation]string
}

func (e *encoder) animationName(n *armature.Node) string {
	if n.Clip.Animation == nil {
		return ""
	}
	return e.names[n.Clip.Animation]
}

// FromRig converts a rig to its persisted form. Animations referenced by a
// graph node but missing from r.Animations are included under a generated
// name; unreferenced empty clips are dropped.
func FromRig(r *Rig) *Document {
	doc := &Document{Version: Version, Name: r.Name}
	e := &encoder{
		props: r.Graph.Properties(),
		names: make(map[*armature.Animation]string, len(r.Animations)),
	}

	r.Skeleton.Walk(func(b *armature.Bone, _ int) bool {
		bd := BoneDoc{ID: uint32(b.ID), Name: b.Name, Parent: uint32(b.Parent), Rest: transformDoc(b.Rest)}
		for _, c := range b.Children() {
			bd.Children = append(bd.Children, uint32(c))
		}
		doc.Bones = append(doc.Bones, bd)
		return true
	})

	for _, p := range e.props.All() {
		pd := PropertyDoc{ID: uint32(p.ID), Name: p.Name, Value: p.Value}
		if v, ok := p.ResetValue(); ok {
			pd.ResetValue = &v
		}
		doc.Properties = append(doc.Properties, pd)
	}

	for _, name := range slices.Sorted(maps.Keys(r.Animations)) {
		a := r.Animations[name]
		e.names[a] = name
		doc.Animations = append(doc.Animations, animationDoc(name, a))
	}
	nodes := r.Graph.Nodes()
	for _, n := range nodes {
		if n.Clip == nil || n.Clip.Animation == nil {
			continue
		}
		a := n.Clip.Animation
		if _, ok := e.names[a]; ok || len(a.Bones()) == 0 {
			continue
		}
		name := uniqueName(r.Animations, fmt.Sprintf("clip-%d", n.ID))
		e.names[a] = name
		doc.Animations = append(doc.Animations, animationDoc(name, a))
	}

	doc.Graph.Final = uint32(r.Graph.Final().ID)
	for _, n := range nodes {
		nd := NodeDoc{
			ID:       uint32(n.ID),
			Type:     n.Kind.String(),
			Position: [2]float64{n.Position.X, n.Position.Y},
		}
		if in := n.Inputs(); len(in) > 0 {
			nd.Inputs = make(map[string]uint32, len(in))
			for slot, id := range in {
				nd.Inputs[slot] = uint32(id)
			}
		}
		if c, ok := codecs[n.Kind]; ok {
			nd.Params = encodeParams(c.encode(e, n))
		}
		doc.Graph.Nodes = append(doc.Graph.Nodes, nd)
	}

	for _, s := range r.Skins {
		doc.Skins = append(doc.Skins, skinDoc(s))
	}
	return doc
}

func uniqueName(taken map[string]*armature.Animation, base string) string {
	name := base
	for i := 2; ; i++ {
		if _, ok := taken[name]; !ok {
			return name
		}
		name = fmt.Sprintf("%s-%d", base, i)
	}
}

func transformDoc(p armature.PartialTransform) TransformDoc {
	var t TransformDoc
	if v, ok := p.Translation(); ok {
		t.Translation = &[2]float64{v.X, v.Y}
	}
	if v, ok := p.Rotation(); ok {
		t.Rotation = &v
	}
	if v, ok := p.Scale(); ok {
		t.Scale = &v
	}
	return t
}

func easingName(e armature.Easing) string {
	if e == armature.EaseLinear {
		return ""
	}
	return e.String()
}

func animationDoc(name string, a *armature.Animation) AnimationDoc {
	ad := AnimationDoc{Name: name}
	for _, bone := range a.Bones() {
		tr, _ := a.LookupTrack(bone)
		td := TrackDoc{Bone: uint32(bone)}
		for _, k := range tr.Translation.Keys() {
			td.Translation = append(td.Translation, Vec2KeyDoc{Time: k.Time, Value: [2]float64{k.Value.X, k.Value.Y}, Easing: easingName(k.Easing)})
		}
		for _, k := range tr.Rotation.Keys() {
			td.Rotation = append(td.Rotation, KeyDoc{Time: k.Time, Value: k.Value, Easing: easingName(k.Easing)})
		}
		for _, k := range tr.Scale.Keys() {
			td.Scale = append(td.Scale, KeyDoc{Time: k.Time, Value: k.Value, Easing: easingName(k.Easing)})
		}
		ad.Tracks = append(ad.Tracks, td)
	}
	return ad
}

func skinDoc(s *armature.Skin) SkinDoc {
	sd := SkinDoc{Name: s.Name, Image: s.Image, Indices: slices.Clone(s.Indices)}
	for _, v := range s.Vertices {
		vd := SkinVertexDoc{
			Position: [2]float64{v.Position.X, v.Position.Y},
			Src:      [2]float32{v.SrcX, v.SrcY},
			Weights:  make(map[uint32]float64, len(v.Weights)),
		}
		for _, w := range v.Weights {
			vd.Weights[uint32(w.Bone)] += w.Weight
		}
		sd.Vertices = append(sd.Vertices, vd)
	}
	return sd
}
