package armature

import (
	"slices"
	"sort"
)

// Keyframe is a value pinned at a time. Easing shapes the segment that ends
// at this key.
type Keyframe[T any] struct {
	Time   float64
	Value  T
	Easing Easing
}

// PropertyTrack is a time-sorted list of keyframes for one property. Times
// are unique; setting a key at an existing time overwrites it.
type PropertyTrack[T any] struct {
	keys   []Keyframe[T]
	interp func(a, b T, u float64) T
}

func newPropertyTrack[T any](interp func(a, b T, u float64) T) PropertyTrack[T] {
	return PropertyTrack[T]{interp: interp}
}

// search returns the index of the first key with Time >= t.
func (p *PropertyTrack[T]) search(t float64) int {
	return sort.Search(len(p.keys), func(i int) bool { return p.keys[i].Time >= t })
}

// Set inserts or overwrites the keyframe at time t.
func (p *PropertyTrack[T]) Set(t float64, value T, easing Easing) {
	k := Keyframe[T]{Time: t, Value: value, Easing: easing}
	i := p.search(t)
	if i < len(p.keys) && p.keys[i].Time == t {
		p.keys[i] = k
		return
	}
	p.keys = slices.Insert(p.keys, i, k)
}

// Get returns the keyframe at exactly time t.
func (p *PropertyTrack[T]) Get(t float64) (Keyframe[T], bool) {
	i := p.search(t)
	if i < len(p.keys) && p.keys[i].Time == t {
		return p.keys[i], true
	}
	return Keyframe[T]{}, false
}

// Remove deletes the keyframe at exactly time t and reports whether one existed.
func (p *PropertyTrack[T]) Remove(t float64) bool {
	i := p.search(t)
	if i < len(p.keys) && p.keys[i].Time == t {
		p.keys = slices.Delete(p.keys, i, i+1)
		return true
	}
	return false
}

// Move re-times the keyframe at from to to, keeping its value and easing.
// A key already at to is overwritten.
func (p *PropertyTrack[T]) Move(from, to float64) bool {
	k, ok := p.Get(from)
	if !ok {
		return false
	}
	p.Remove(from)
	p.Set(to, k.Value, k.Easing)
	return true
}

// Keys returns a copy of the keyframes in time order.
func (p *PropertyTrack[T]) Keys() []Keyframe[T] { return slices.Clone(p.keys) }

// Len returns the number of keyframes.
func (p *PropertyTrack[T]) Len() int { return len(p.keys) }

// Clear removes every keyframe.
func (p *PropertyTrack[T]) Clear() { p.keys = nil }

// Last returns the time of the latest keyframe, or 0 for an empty track.
func (p *PropertyTrack[T]) Last() float64 {
	if len(p.keys) == 0 {
		return 0
	}
	return p.keys[len(p.keys)-1].Time
}

// Sample returns the property value at time t. Times outside the keyed range
// clamp to the first or last key. It reports false when the track is empty.
func (p *PropertyTrack[T]) Sample(t float64) (T, bool) {
	var zero T
	n := len(p.keys)
	if n == 0 {
		return zero, false
	}
	if t <= p.keys[0].Time {
		return p.keys[0].Value, true
	}
	if t >= p.keys[n-1].Time {
		return p.keys[n-1].Value, true
	}
	// keys[i-1].Time < t <= keys[i].Time
	i := p.search(t)
	prev, next := p.keys[i-1], p.keys[i]
	u := (t - prev.Time) / (next.Time - prev.Time)
	return p.interp(prev.Value, next.Value, next.Easing.Apply(u)), true
}

// Track animates the three properties of one bone independently.
type Track struct {
	Translation PropertyTrack[Vec2]
	Rotation    PropertyTrack[float64]
	Scale       PropertyTrack[float64]
}

// NewTrack creates an empty track.
func NewTrack() *Track {
	return &Track{
		Translation: newPropertyTrack(Vec2.Lerp),
		Rotation:    newPropertyTrack(lerpAngle),
		Scale:       newPropertyTrack(lerp),
	}
}

// Sample assembles the partial transform at time t. Properties without
// keyframes stay unset.
func (tr *Track) Sample(t float64) PartialTransform {
	var p PartialTransform
	if v, ok := tr.Translation.Sample(t); ok {
		p = p.WithTranslation(v)
	}
	if v, ok := tr.Rotation.Sample(t); ok {
		p = p.WithRotation(v)
	}
	if v, ok := tr.Scale.Sample(t); ok {
		p = p.WithScale(v)
	}
	return p
}

// Length returns the latest keyframe time across all three properties.
func (tr *Track) Length() float64 {
	return max(tr.Translation.Last(), tr.Rotation.Last(), tr.Scale.Last())
}

// IsEmpty reports whether no property has a keyframe.
func (tr *Track) IsEmpty() bool {
	return tr.Translation.Len() == 0 && tr.Rotation.Len() == 0 && tr.Scale.Len() == 0
}
