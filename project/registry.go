package project

import (
	"fmt"

	"github.com/mitchellh/mapstructure"

	"github.com/phanxgames/armature"
)

// Params structs mirror each node kind's settings. The mapstructure tags
// drive decoding from the generic params map; the json and yaml tags keep
// encoded output identical when a params struct is nested inside that map.

type clipParams struct {
	Animation string `mapstructure:"animation" json:"animation" yaml:"animation"`
	Looping   bool   `mapstructure:"looping" json:"looping" yaml:"looping"`
}

type amountParams struct {
	Amount string `mapstructure:"amount" json:"amount" yaml:"amount"`
}

type conditionParams struct {
	Property   string  `mapstructure:"property" json:"property" yaml:"property"`
	Comparator string  `mapstructure:"comparator" json:"comparator" yaml:"comparator"`
	Threshold  float64 `mapstructure:"threshold" json:"threshold" yaml:"threshold"`
}

type transitionParams struct {
	Target          uint32            `mapstructure:"target" json:"target" yaml:"target"`
	BlendTime       float64           `mapstructure:"blendTime" json:"blendTime" yaml:"blendTime"`
	Easing          string            `mapstructure:"easing" json:"easing" yaml:"easing"`
	RequireFinished bool              `mapstructure:"requireFinished" json:"requireFinished" yaml:"requireFinished"`
	Resets          bool              `mapstructure:"resets" json:"resets" yaml:"resets"`
	Conditions      []conditionParams `mapstructure:"conditions,omitempty" json:"conditions,omitempty" yaml:"conditions,omitempty"`
}

type stateParams struct {
	ID          uint32             `mapstructure:"id" json:"id" yaml:"id"`
	Name        string             `mapstructure:"name" json:"name" yaml:"name"`
	End         bool               `mapstructure:"end" json:"end" yaml:"end"`
	Position    [2]float64         `mapstructure:"position" json:"position" yaml:"position,flow"`
	Transitions []transitionParams `mapstructure:"transitions,omitempty" json:"transitions,omitempty" yaml:"transitions,omitempty"`
}

type machineParams struct {
	Start  uint32        `mapstructure:"start" json:"start" yaml:"start"`
	States []stateParams `mapstructure:"states" json:"states" yaml:"states"`
}

type symmetryParams struct {
	Projected uint32 `mapstructure:"projected" json:"projected" yaml:"projected"`
	Center    uint32 `mapstructure:"center" json:"center" yaml:"center"`
	Target    uint32 `mapstructure:"target" json:"target" yaml:"target"`
}

type ikParams struct {
	Start     uint32 `mapstructure:"start" json:"start" yaml:"start"`
	End       uint32 `mapstructure:"end" json:"end" yaml:"end"`
	Target    uint32 `mapstructure:"target" json:"target" yaml:"target"`
	Clockwise bool   `mapstructure:"clockwise" json:"clockwise" yaml:"clockwise"`
}

// nodeCodec converts a node kind's payload to and from its params struct.
type nodeCodec struct {
	decode func(b *builder, field string, n *armature.Node, raw map[string]any)
	encode func(e *encoder, n *armature.Node) any
}

var codecs = map[armature.NodeKind]nodeCodec{
	armature.NodeAnimatedPose:       {decodeClip, encodeClip},
	armature.NodeBlendPose:          {decodeAmount, encodeAmount},
	armature.NodeMultiplyPose:       {decodeAmount, encodeAmount},
	armature.NodePlaybackSpeed:      {decodeAmount, encodeAmount},
	armature.NodeStateMachine:       {decodeMachine, encodeMachine},
	armature.NodeSymmetryConstraint: {decodeSymmetry, encodeSymmetry},
	armature.NodeIKConstraint:       {decodeIK, encodeIK},
}

var kindsByName = func() map[string]armature.NodeKind {
	m := make(map[string]armature.NodeKind)
	for _, k := range armature.NodeKinds() {
		m[k.String()] = k
	}
	return m
}()

// KindByName resolves a persisted node type name such as "Blend Pose".
func KindByName(name string) (armature.NodeKind, bool) {
	k, ok := kindsByName[name]
	return k, ok
}

// decodeParams fills out from raw. Numbers are accepted where strings are
// expected so that amounts can be written as plain literals, and unknown
// keys are rejected.
func decodeParams(raw map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           out,
		WeaklyTypedInput: true,
		ErrorUnused:      true,
	})
	if err != nil {
		return err
	}
	return dec.Decode(raw)
}

// encodeParams flattens a params struct into the generic map stored in a
// NodeDoc.
func encodeParams(in any) map[string]any {
	out := make(map[string]any)
	if err := mapstructure.Decode(in, &out); err != nil {
		// params structs only hold plain fields; this cannot fail
		panic(fmt.Sprintf("project: encode params: %v", err))
	}
	return out
}

func decodeClip(b *builder, field string, n *armature.Node, raw map[string]any) {
	var p clipParams
	if err := decodeParams(raw, &p); err != nil {
		b.errs.add(field, "invalid params", err)
		return
	}
	n.Clip.Looping = p.Looping
	if p.Animation == "" {
		return
	}
	a, ok := b.rig.Animations[p.Animation]
	if !ok {
		b.errs.add(field+".animation", fmt.Sprintf("unknown animation %q", p.Animation), nil)
		return
	}
	n.Clip.Animation = a
}

func encodeClip(e *encoder, n *armature.Node) any {
	return clipParams{Animation: e.animationName(n), Looping: n.Clip.Looping}
}

func decodeAmount(b *builder, field string, n *armature.Node, raw map[string]any) {
	var p amountParams
	if err := decodeParams(raw, &p); err != nil {
		b.errs.add(field, "invalid params", err)
		return
	}
	if p.Amount == "" {
		return
	}
	a, err := armature.ParseAmount(p.Amount)
	if err != nil {
		b.errs.add(field+".amount", "invalid expression", err)
		return
	}
	n.Amount = a
}

func encodeAmount(_ *encoder, n *armature.Node) any {
	return amountParams{Amount: n.Amount.String()}
}

func decodeMachine(b *builder, field string, n *armature.Node, raw map[string]any) {
	var p machineParams
	if err := decodeParams(raw, &p); err != nil {
		b.errs.add(field, "invalid params", err)
		return
	}
	m := n.Machine
	// the first inserted state becomes both start and current
	order := make([]int, 0, len(p.States))
	for i, sp := range p.States {
		if sp.ID == p.Start {
			order = append([]int{i}, order...)
		} else {
			order = append(order, i)
		}
	}
	for _, i := range order {
		sp := p.States[i]
		s := &armature.State{
			ID:       armature.StateID(sp.ID),
			Name:     sp.Name,
			End:      sp.End,
			Position: armature.Vec2{X: sp.Position[0], Y: sp.Position[1]},
		}
		if err := m.InsertState(s); err != nil {
			b.errs.add(fmt.Sprintf("%s.states[%d].id", field, i), "invalid state", err)
		}
	}
	if p.Start != 0 {
		if _, ok := m.State(armature.StateID(p.Start)); !ok {
			b.errs.add(field+".start", fmt.Sprintf("unknown state %d", p.Start), nil)
		}
	}
	for i, sp := range p.States {
		s, ok := m.State(armature.StateID(sp.ID))
		if !ok || s.Name != sp.Name {
			continue
		}
		for j, tp := range sp.Transitions {
			tf := fmt.Sprintf("%s.states[%d].transitions[%d]", field, i, j)
			if t, ok := b.transition(tf, m, tp); ok {
				s.Transitions = append(s.Transitions, t)
			}
		}
	}
}

func (b *builder) transition(field string, m *armature.StateMachine, tp transitionParams) (*armature.Transition, bool) {
	ok := true
	t := &armature.Transition{
		Target:          armature.StateID(tp.Target),
		BlendTime:       tp.BlendTime,
		RequireFinished: tp.RequireFinished,
		Resets:          tp.Resets,
	}
	if _, found := m.State(t.Target); !found {
		b.errs.add(field+".target", fmt.Sprintf("unknown state %d", tp.Target), nil)
		ok = false
	}
	if tp.Easing != "" {
		ease, err := armature.ParseEasing(tp.Easing)
		if err != nil {
			b.errs.add(field+".easing", "invalid easing", err)
			ok = false
		}
		t.Easing = ease
	}
	for k, cp := range tp.Conditions {
		cf := fmt.Sprintf("%s.conditions[%d]", field, k)
		prop, found := b.rig.Graph.Properties().Lookup(cp.Property)
		if !found {
			b.errs.add(cf+".property", fmt.Sprintf("unknown property %q", cp.Property), nil)
			ok = false
			continue
		}
		cmp, err := armature.ParseComparator(cp.Comparator)
		if err != nil {
			b.errs.add(cf+".comparator", "invalid comparator", err)
			ok = false
			continue
		}
		t.Conditions = append(t.Conditions, armature.Condition{
			Property:   prop.ID,
			Comparator: cmp,
			Threshold:  cp.Threshold,
		})
	}
	return t, ok
}

func encodeMachine(e *encoder, n *armature.Node) any {
	m := n.Machine
	p := machineParams{Start: uint32(m.Start())}
	for _, s := range m.States() {
		sp := stateParams{
			ID:       uint32(s.ID),
			Name:     s.Name,
			End:      s.End,
			Position: [2]float64{s.Position.X, s.Position.Y},
		}
		for _, t := range s.Transitions {
			tp := transitionParams{
				Target:          uint32(t.Target),
				BlendTime:       t.BlendTime,
				Easing:          easingName(t.Easing),
				RequireFinished: t.RequireFinished,
				Resets:          t.Resets,
			}
			for _, c := range t.Conditions {
				name := ""
				if prop, ok := e.props.Get(c.Property); ok {
					name = prop.Name
				}
				tp.Conditions = append(tp.Conditions, conditionParams{
					Property:   name,
					Comparator: c.Comparator.String(),
					Threshold:  c.Threshold,
				})
			}
			sp.Transitions = append(sp.Transitions, tp)
		}
		p.States = append(p.States, sp)
	}
	return p
}

func decodeSymmetry(b *builder, field string, n *armature.Node, raw map[string]any) {
	var p symmetryParams
	if err := decodeParams(raw, &p); err != nil {
		b.errs.add(field, "invalid params", err)
		return
	}
	*n.Symmetry = armature.SymmetryConstraint{
		Projected: b.boneRef(field+".projected", p.Projected),
		Center:    b.boneRef(field+".center", p.Center),
		Target:    b.boneRef(field+".target", p.Target),
	}
}

func encodeSymmetry(_ *encoder, n *armature.Node) any {
	c := n.Symmetry
	return symmetryParams{Projected: uint32(c.Projected), Center: uint32(c.Center), Target: uint32(c.Target)}
}

func decodeIK(b *builder, field string, n *armature.Node, raw map[string]any) {
	var p ikParams
	if err := decodeParams(raw, &p); err != nil {
		b.errs.add(field, "invalid params", err)
		return
	}
	*n.IK = armature.IKConstraint{
		Start:     b.boneRef(field+".start", p.Start),
		End:       b.boneRef(field+".end", p.End),
		Target:    b.boneRef(field+".target", p.Target),
		Clockwise: p.Clockwise,
	}
}

func encodeIK(_ *encoder, n *armature.Node) any {
	c := n.IK
	return ikParams{Start: uint32(c.Start), End: uint32(c.End), Target: uint32(c.Target), Clockwise: c.Clockwise}
}
