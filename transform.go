package armature

import "math"

// fieldMask records which fields of a PartialTransform are set.
type fieldMask uint8

const (
	hasTranslation fieldMask = 1 << iota
	hasRotation
	hasScale

	hasAll = hasTranslation | hasRotation | hasScale
)

// PartialTransform is a 2D transform whose fields may each be unset. An unset
// field inherits from whatever the transform is patched onto, which lets an
// animation track or graph node touch a single property of a bone.
//
// The zero value has every field unset.
type PartialTransform struct {
	translation Vec2
	rotation    float64
	scale       float64
	set         fieldMask
}

// Transform is a fully specified 2D transform: translation, rotation in
// radians, and uniform scale.
type Transform struct {
	Translation Vec2
	Rotation    float64
	Scale       float64
}

// IdentityTransform has zero translation and rotation and unit scale.
var IdentityTransform = Transform{Scale: 1}

// NewPartialTransform returns a partial transform with every field set.
func NewPartialTransform(translation Vec2, rotation, scale float64) PartialTransform {
	return PartialTransform{translation: translation, rotation: rotation, scale: scale, set: hasAll}
}

// Translation returns the translation and whether it is set.
func (p PartialTransform) Translation() (Vec2, bool) {
	return p.translation, p.set&hasTranslation != 0
}

// Rotation returns the rotation and whether it is set.
func (p PartialTransform) Rotation() (float64, bool) {
	return p.rotation, p.set&hasRotation != 0
}

// Scale returns the scale and whether it is set.
func (p PartialTransform) Scale() (float64, bool) {
	return p.scale, p.set&hasScale != 0
}

// WithTranslation returns a copy of p with the translation set to v.
func (p PartialTransform) WithTranslation(v Vec2) PartialTransform {
	p.translation = v
	p.set |= hasTranslation
	return p
}

// WithRotation returns a copy of p with the rotation set to r.
func (p PartialTransform) WithRotation(r float64) PartialTransform {
	p.rotation = r
	p.set |= hasRotation
	return p
}

// WithScale returns a copy of p with the scale set to s.
func (p PartialTransform) WithScale(s float64) PartialTransform {
	p.scale = s
	p.set |= hasScale
	return p
}

// WithoutTranslation returns a copy of p with the translation unset.
func (p PartialTransform) WithoutTranslation() PartialTransform {
	p.translation = Vec2{}
	p.set &^= hasTranslation
	return p
}

// WithoutRotation returns a copy of p with the rotation unset.
func (p PartialTransform) WithoutRotation() PartialTransform {
	p.rotation = 0
	p.set &^= hasRotation
	return p
}

// WithoutScale returns a copy of p with the scale unset.
func (p PartialTransform) WithoutScale() PartialTransform {
	p.scale = 0
	p.set &^= hasScale
	return p
}

// IsEmpty reports whether no field is set.
func (p PartialTransform) IsEmpty() bool { return p.set == 0 }

// IsFull reports whether every field is set.
func (p PartialTransform) IsFull() bool { return p.set == hasAll }

// Lock fills unset fields with identity defaults: translation (0,0),
// rotation 0, scale 1.
func (p PartialTransform) Lock() Transform {
	t := IdentityTransform
	if p.set&hasTranslation != 0 {
		t.Translation = p.translation
	}
	if p.set&hasRotation != 0 {
		t.Rotation = p.rotation
	}
	if p.set&hasScale != 0 {
		t.Scale = p.scale
	}
	return t
}

// Patch returns p with each unset field taken from base. Fields unset in
// both stay unset.
func (p PartialTransform) Patch(base PartialTransform) PartialTransform {
	out := base
	if p.set&hasTranslation != 0 {
		out.translation = p.translation
	}
	if p.set&hasRotation != 0 {
		out.rotation = p.rotation
	}
	if p.set&hasScale != 0 {
		out.scale = p.scale
	}
	out.set = p.set | base.set
	return out
}

// Lerp interpolates p toward o by t, field by field. Fields set on only one
// side pass through unchanged; rotation follows the shortest arc.
func (p PartialTransform) Lerp(o PartialTransform, t float64) PartialTransform {
	out := PartialTransform{set: p.set | o.set}
	switch {
	case p.set&o.set&hasTranslation != 0:
		out.translation = p.translation.Lerp(o.translation, t)
	case p.set&hasTranslation != 0:
		out.translation = p.translation
	default:
		out.translation = o.translation
	}
	switch {
	case p.set&o.set&hasRotation != 0:
		out.rotation = lerpAngle(p.rotation, o.rotation, t)
	case p.set&hasRotation != 0:
		out.rotation = p.rotation
	default:
		out.rotation = o.rotation
	}
	switch {
	case p.set&o.set&hasScale != 0:
		out.scale = lerp(p.scale, o.scale, t)
	case p.set&hasScale != 0:
		out.scale = p.scale
	default:
		out.scale = o.scale
	}
	return out
}

// Add sums the fields set on both sides and passes through fields set on
// only one side.
func (p PartialTransform) Add(o PartialTransform) PartialTransform {
	out := PartialTransform{set: p.set | o.set}
	out.translation = p.translation.Add(o.translation)
	out.rotation = p.rotation + o.rotation
	out.scale = p.scale + o.scale
	return out
}

// Multiply scales every set field by s. Unset fields stay unset.
func (p PartialTransform) Multiply(s float64) PartialTransform {
	out := PartialTransform{set: p.set}
	if p.set&hasTranslation != 0 {
		out.translation = p.translation.Scale(s)
	}
	if p.set&hasRotation != 0 {
		out.rotation = p.rotation * s
	}
	if p.set&hasScale != 0 {
		out.scale = p.scale * s
	}
	return out
}

// Partial returns t as a partial transform with every field set.
func (t Transform) Partial() PartialTransform {
	return NewPartialTransform(t.Translation, t.Rotation, t.Scale)
}

// Compose returns the world transform of a child whose parent-relative
// transform is child, given that t is the parent's world transform.
func (t Transform) Compose(child Transform) Transform {
	return Transform{
		Translation: t.Translation.Add(child.Translation.Rotate(t.Rotation).Scale(t.Scale)),
		Rotation:    t.Rotation + child.Rotation,
		Scale:       t.Scale * child.Scale,
	}
}

// Apply maps a point from t's local space into the space t is expressed in.
func (t Transform) Apply(p Vec2) Vec2 {
	return t.Translation.Add(p.Rotate(t.Rotation).Scale(t.Scale))
}

// Unapply is the inverse of Apply. A zero scale maps every point to the origin.
func (t Transform) Unapply(p Vec2) Vec2 {
	if t.Scale == 0 {
		return Vec2{}
	}
	return p.Sub(t.Translation).Rotate(-t.Rotation).Scale(1 / t.Scale)
}

// lerp is exact at t = 0 and t = 1.
func lerp(a, b, t float64) float64 {
	return a*(1-t) + b*t
}

// lerpAngle interpolates from a to b along the shortest arc. The endpoints
// are returned verbatim so exact keys survive interpolation.
func lerpAngle(a, b, t float64) float64 {
	switch t {
	case 0:
		return a
	case 1:
		return b
	}
	return a + wrapAngle(b-a)*t
}

// wrapAngle maps d into [-Pi, Pi).
func wrapAngle(d float64) float64 {
	d = math.Mod(d+math.Pi, 2*math.Pi)
	if d < 0 {
		d += 2 * math.Pi
	}
	return d - math.Pi
}
