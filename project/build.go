package project

import (
	"fmt"
	"maps"
	"slices"

	"github.com/phanxgames/armature"
)

// Rig is a loaded document: everything needed to construct a Player.
type Rig struct {
	Name       string
	Skeleton   *armature.Skeleton
	Graph      *armature.Graph
	Animations map[string]*armature.Animation
	Skins      []*armature.Skin
}

// NewPlayer creates a player for the rig.
func (r *Rig) NewPlayer(opts ...armature.PlayerOption) *armature.Player {
	return armature.NewPlayer(r.Skeleton, r.Graph, opts...)
}

// Skin returns the skin with the given name.
func (r *Rig) Skin(name string) (*armature.Skin, bool) {
	for _, s := range r.Skins {
		if s.Name == name {
			return s, true
		}
	}
	return nil, false
}

type builder struct {
	doc  *Document
	rig  *Rig
	errs errorList
}

// Build turns a document into a rig. Every problem found is reported; the
// returned error is a *DecodeError holding one *FieldError per problem.
func Build(doc *Document) (*Rig, error) {
	if doc.Version != Version {
		return nil, &DecodeError{Errors: []error{&FieldError{
			Field:  "version",
			Reason: fmt.Sprintf("unsupported version %d, want %d", doc.Version, Version),
		}}}
	}
	b := &builder{
		doc: doc,
		rig: &Rig{
			Name:       doc.Name,
			Graph:      armature.NewGraph(),
			Animations: make(map[string]*armature.Animation),
		},
	}
	if !b.skeleton() {
		// later sections reference bones; stop here
		return nil, b.errs.err()
	}
	b.properties()
	b.animations()
	b.graph()
	b.skins()
	if err := b.errs.err(); err != nil {
		return nil, err
	}
	b.rig.Graph.Reset()
	return b.rig, nil
}

func restDoc(t TransformDoc) armature.PartialTransform {
	var p armature.PartialTransform
	if t.Translation != nil {
		p = p.WithTranslation(armature.Vec2{X: t.Translation[0], Y: t.Translation[1]})
	}
	if t.Rotation != nil {
		p = p.WithRotation(*t.Rotation)
	}
	if t.Scale != nil {
		p = p.WithScale(*t.Scale)
	}
	return p
}

func (b *builder) skeleton() bool {
	if len(b.doc.Bones) == 0 {
		b.errs.add("bones", "at least one bone is required", nil)
		return false
	}
	bones := make([]armature.Bone, len(b.doc.Bones))
	children := make(map[armature.BoneID][]armature.BoneID, len(b.doc.Bones))
	for i, bd := range b.doc.Bones {
		bones[i] = armature.Bone{
			ID:     armature.BoneID(bd.ID),
			Parent: armature.BoneID(bd.Parent),
			Name:   bd.Name,
			Rest:   restDoc(bd.Rest),
		}
		for _, c := range bd.Children {
			children[bones[i].ID] = append(children[bones[i].ID], armature.BoneID(c))
		}
	}
	skel, err := armature.RestoreSkeleton(bones, children)
	if err != nil {
		b.errs.add("bones", "invalid skeleton", err)
		return false
	}
	b.rig.Skeleton = skel
	return true
}

// boneRef resolves a bone id used by a constraint or track. Zero is allowed
// and leaves the reference unset.
func (b *builder) boneRef(field string, id uint32) armature.BoneID {
	if id == 0 {
		return 0
	}
	if _, ok := b.rig.Skeleton.Bone(armature.BoneID(id)); !ok {
		b.errs.add(field, fmt.Sprintf("unknown bone %d", id), nil)
		return 0
	}
	return armature.BoneID(id)
}

func (b *builder) properties() {
	props := b.rig.Graph.Properties()
	for i, pd := range b.doc.Properties {
		p := &armature.Property{ID: armature.PropertyID(pd.ID), Name: pd.Name, Value: pd.Value}
		if pd.ResetValue != nil {
			p.SetResetValue(*pd.ResetValue)
		}
		if err := props.Insert(p); err != nil {
			b.errs.add(fmt.Sprintf("properties[%d]", i), "invalid property", err)
		}
	}
}

func (b *builder) easing(field, name string) armature.Easing {
	if name == "" {
		return armature.EaseLinear
	}
	e, err := armature.ParseEasing(name)
	if err != nil {
		b.errs.add(field, "invalid easing", err)
	}
	return e
}

func (b *builder) animations() {
	for i, ad := range b.doc.Animations {
		field := fmt.Sprintf("animations[%d]", i)
		if ad.Name == "" {
			b.errs.add(field+".name", "name is required", nil)
			continue
		}
		if _, dup := b.rig.Animations[ad.Name]; dup {
			b.errs.add(field+".name", fmt.Sprintf("duplicate animation %q", ad.Name), nil)
			continue
		}
		a := armature.NewAnimation()
		for j, td := range ad.Tracks {
			tf := fmt.Sprintf("%s.tracks[%d]", field, j)
			bone := b.boneRef(tf+".bone", td.Bone)
			if bone == 0 {
				if td.Bone == 0 {
					b.errs.add(tf+".bone", "bone is required", nil)
				}
				continue
			}
			tr := a.Track(bone)
			for k, kd := range td.Translation {
				ease := b.easing(fmt.Sprintf("%s.translation[%d].easing", tf, k), kd.Easing)
				tr.Translation.Set(kd.Time, armature.Vec2{X: kd.Value[0], Y: kd.Value[1]}, ease)
			}
			for k, kd := range td.Rotation {
				tr.Rotation.Set(kd.Time, kd.Value, b.easing(fmt.Sprintf("%s.rotation[%d].easing", tf, k), kd.Easing))
			}
			for k, kd := range td.Scale {
				tr.Scale.Set(kd.Time, kd.Value, b.easing(fmt.Sprintf("%s.scale[%d].easing", tf, k), kd.Easing))
			}
		}
		b.rig.Animations[ad.Name] = a
	}
}

func (b *builder) graph() {
	g := b.rig.Graph
	nodes := b.doc.Graph.Nodes

	// The Final Pose node goes in first so that it replaces the default one
	// before anything is connected.
	order := make([]int, 0, len(nodes))
	for i, nd := range nodes {
		if nd.ID == b.doc.Graph.Final {
			order = append([]int{i}, order...)
		} else {
			order = append(order, i)
		}
	}

	inserted := make(map[int]*armature.Node, len(nodes))
	for _, i := range order {
		nd := nodes[i]
		field := fmt.Sprintf("graph.nodes[%d]", i)
		kind, ok := KindByName(nd.Type)
		if !ok {
			b.errs.add(field+".type", fmt.Sprintf("unknown node type %q", nd.Type), nil)
			continue
		}
		if kind == armature.NodeFinalPose && nd.ID != b.doc.Graph.Final {
			b.errs.add(field+".type", "graph.final names a different node", nil)
			continue
		}
		if kind != armature.NodeFinalPose && nd.ID == b.doc.Graph.Final {
			b.errs.add("graph.final", fmt.Sprintf("node %d is not a Final Pose node", nd.ID), nil)
			continue
		}
		n, err := g.InsertNode(armature.NodeID(nd.ID), kind)
		if err != nil {
			b.errs.add(field+".id", "invalid node", err)
			continue
		}
		n.Position = armature.Vec2{X: nd.Position[0], Y: nd.Position[1]}
		if c, ok := codecs[kind]; ok {
			c.decode(b, field+".params", n, nd.Params)
		} else if len(nd.Params) > 0 {
			b.errs.add(field+".params", fmt.Sprintf("%s takes no params", kind), nil)
		}
		inserted[i] = n
	}
	if g.Final().ID != armature.NodeID(b.doc.Graph.Final) {
		b.errs.add("graph.final", fmt.Sprintf("no Final Pose node with id %d", b.doc.Graph.Final), nil)
	}

	// Edges are made once every node and state exists.
	for i, nd := range nodes {
		n, ok := inserted[i]
		if !ok {
			continue
		}
		for _, slot := range slices.Sorted(maps.Keys(nd.Inputs)) {
			if err := g.Connect(n.ID, slot, armature.NodeID(nd.Inputs[slot])); err != nil {
				b.errs.add(fmt.Sprintf("graph.nodes[%d].inputs.%s", i, slot), "invalid connection", err)
			}
		}
	}
}

func (b *builder) skins() {
	for i, sd := range b.doc.Skins {
		field := fmt.Sprintf("skins[%d]", i)
		s := &armature.Skin{
			Name:     sd.Name,
			Image:    sd.Image,
			Vertices: make([]armature.SkinVertex, len(sd.Vertices)),
			Indices:  slices.Clone(sd.Indices),
		}
		for j, vd := range sd.Vertices {
			v := &s.Vertices[j]
			v.Position = armature.Vec2{X: vd.Position[0], Y: vd.Position[1]}
			v.SrcX, v.SrcY = vd.Src[0], vd.Src[1]
			for _, bone := range slices.Sorted(maps.Keys(vd.Weights)) {
				v.Weights = append(v.Weights, armature.BoneWeight{Bone: armature.BoneID(bone), Weight: vd.Weights[bone]})
			}
		}
		if err := s.Validate(b.rig.Skeleton); err != nil {
			b.errs.add(field, "invalid skin", err)
			continue
		}
		b.rig.Skins = append(b.rig.Skins, s)
	}
}
