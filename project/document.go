package project

// Version is the document format version written by Encode.
const Version = 1

// Document is the persisted form of a rig. Bones, nodes, states, and
// properties keep their numeric ids so that references survive a round trip.
type Document struct {
	Version    int            `json:"version" yaml:"version"`
	Name       string         `json:"name,omitempty" yaml:"name,omitempty"`
	Bones      []BoneDoc      `json:"bones" yaml:"bones"`
	Properties []PropertyDoc  `json:"properties,omitempty" yaml:"properties,omitempty"`
	Animations []AnimationDoc `json:"animations,omitempty" yaml:"animations,omitempty"`
	Graph      GraphDoc       `json:"graph" yaml:"graph"`
	Skins      []SkinDoc      `json:"skins,omitempty" yaml:"skins,omitempty"`
}

// TransformDoc is a partial transform; absent fields are unset.
type TransformDoc struct {
	Translation *[2]float64 `json:"translation,omitempty" yaml:"translation,omitempty,flow"`
	Rotation    *float64    `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	Scale       *float64    `json:"scale,omitempty" yaml:"scale,omitempty"`
}

// BoneDoc is one skeleton bone. Exactly one bone has no parent.
type BoneDoc struct {
	ID       uint32       `json:"id" yaml:"id"`
	Name     string       `json:"name" yaml:"name"`
	Parent   uint32       `json:"parent,omitempty" yaml:"parent,omitempty"`
	Children []uint32     `json:"children,omitempty" yaml:"children,omitempty,flow"`
	Rest     TransformDoc `json:"rest" yaml:"rest"`
}

// PropertyDoc is a graph property. ResetValue makes it a trigger.
type PropertyDoc struct {
	ID         uint32   `json:"id" yaml:"id"`
	Name       string   `json:"name" yaml:"name"`
	Value      float64  `json:"value" yaml:"value"`
	ResetValue *float64 `json:"resetValue,omitempty" yaml:"resetValue,omitempty"`
}

// AnimationDoc is a named clip shared by Animated Pose nodes.
type AnimationDoc struct {
	Name   string     `json:"name" yaml:"name"`
	Tracks []TrackDoc `json:"tracks" yaml:"tracks"`
}

// TrackDoc holds the keyframes of one bone.
type TrackDoc struct {
	Bone        uint32       `json:"bone" yaml:"bone"`
	Translation []Vec2KeyDoc `json:"translation,omitempty" yaml:"translation,omitempty"`
	Rotation    []KeyDoc     `json:"rotation,omitempty" yaml:"rotation,omitempty"`
	Scale       []KeyDoc     `json:"scale,omitempty" yaml:"scale,omitempty"`
}

// KeyDoc is a scalar keyframe. Easing is a curve name; empty means linear.
type KeyDoc struct {
	Time   float64 `json:"time" yaml:"time"`
	Value  float64 `json:"value" yaml:"value"`
	Easing string  `json:"easing,omitempty" yaml:"easing,omitempty"`
}

// Vec2KeyDoc is a translation keyframe.
type Vec2KeyDoc struct {
	Time   float64    `json:"time" yaml:"time"`
	Value  [2]float64 `json:"value" yaml:"value,flow"`
	Easing string     `json:"easing,omitempty" yaml:"easing,omitempty"`
}

// GraphDoc is the blend graph. Final must name the node of type "Final Pose".
type GraphDoc struct {
	Final uint32    `json:"final" yaml:"final"`
	Nodes []NodeDoc `json:"nodes" yaml:"nodes"`
}

// NodeDoc is one graph node. Type is the node kind's display name and
// Params holds its kind-specific settings.
type NodeDoc struct {
	ID       uint32            `json:"id" yaml:"id"`
	Type     string            `json:"type" yaml:"type"`
	Position [2]float64        `json:"position" yaml:"position,flow"`
	Inputs   map[string]uint32 `json:"inputs,omitempty" yaml:"inputs,omitempty"`
	Params   map[string]any    `json:"params,omitempty" yaml:"params,omitempty"`
}

// SkinDoc is a vertex-weighted image.
type SkinDoc struct {
	Name     string          `json:"name" yaml:"name"`
	Image    string          `json:"image,omitempty" yaml:"image,omitempty"`
	Vertices []SkinVertexDoc `json:"vertices" yaml:"vertices"`
	Indices  []uint16        `json:"indices,omitempty" yaml:"indices,omitempty,flow"`
}

// SkinVertexDoc is a mesh vertex with its bone weights keyed by bone id.
type SkinVertexDoc struct {
	Position [2]float64         `json:"position" yaml:"position,flow"`
	Src      [2]float32         `json:"src" yaml:"src,flow"`
	Weights  map[uint32]float64 `json:"weights" yaml:"weights,flow"`
}
