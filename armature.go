package armature

import (
	"errors"
	"math"
)

// Vec2 is a 2D vector used for bone translations, world positions, and
// editor positions throughout the API.
type Vec2 struct {
	X, Y float64
}

// Add returns v + o.
func (v Vec2) Add(o Vec2) Vec2 { return Vec2{v.X + o.X, v.Y + o.Y} }

// Sub returns v - o.
func (v Vec2) Sub(o Vec2) Vec2 { return Vec2{v.X - o.X, v.Y - o.Y} }

// Scale returns v * s.
func (v Vec2) Scale(s float64) Vec2 { return Vec2{v.X * s, v.Y * s} }

// Rotate returns v rotated counter-clockwise by rad radians.
func (v Vec2) Rotate(rad float64) Vec2 {
	sin, cos := math.Sincos(rad)
	return Vec2{v.X*cos - v.Y*sin, v.X*sin + v.Y*cos}
}

// Len returns the Euclidean length of v.
func (v Vec2) Len() float64 { return math.Hypot(v.X, v.Y) }

// Dist returns the distance between v and o.
func (v Vec2) Dist(o Vec2) float64 { return v.Sub(o).Len() }

// Angle returns the angle of v in radians, measured from the positive X axis.
func (v Vec2) Angle() float64 { return math.Atan2(v.Y, v.X) }

// Cross returns the z component of the 3D cross product of v and o.
func (v Vec2) Cross(o Vec2) float64 { return v.X*o.Y - v.Y*o.X }

// Lerp linearly interpolates between v and o.
func (v Vec2) Lerp(o Vec2, t float64) Vec2 {
	return Vec2{lerp(v.X, o.X, t), lerp(v.Y, o.Y, t)}
}

// BoneID identifies a bone within a Skeleton. The zero value means "no bone".
type BoneID uint32

// NodeID identifies a node within a Graph. The zero value means "no node".
type NodeID uint32

// StateID identifies a state within a StateMachine. The zero value means "no state".
type StateID uint32

// PropertyID identifies a Property. The zero value means "no property".
type PropertyID uint32

// Edit errors. Evaluation never returns these; they are reported by the
// operations that change a skeleton, graph, state machine, or property set.
var (
	ErrUnknownBone       = errors.New("armature: unknown bone")
	ErrRootBone          = errors.New("armature: operation not allowed on the root bone")
	ErrUnknownNode       = errors.New("armature: unknown node")
	ErrFinalNode         = errors.New("armature: operation not allowed on the final pose node")
	ErrNotConsumable     = errors.New("armature: node has no output")
	ErrUnknownSlot       = errors.New("armature: unknown input slot")
	ErrCycle             = errors.New("armature: connection would create a cycle")
	ErrUnknownState      = errors.New("armature: unknown state")
	ErrUnknownProperty   = errors.New("armature: unknown property")
	ErrDuplicateProperty = errors.New("armature: duplicate property name")
	ErrInvalidSkeleton   = errors.New("armature: invalid skeleton")
)

// clamp01 restricts v to [0, 1]. NaN maps to 0.
func clamp01(v float64) float64 {
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
