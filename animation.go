package armature

import (
	"maps"
	"slices"
)

// Animation maps bones to keyframe tracks. It holds no skeleton reference:
// bone ids that do not exist in the skeleton it is played against are
// ignored during resolution.
type Animation struct {
	tracks map[BoneID]*Track
}

// NewAnimation creates an empty animation.
func NewAnimation() *Animation {
	return &Animation{tracks: make(map[BoneID]*Track)}
}

// Track returns the track for bone, creating an empty one if needed.
func (a *Animation) Track(bone BoneID) *Track {
	tr, ok := a.tracks[bone]
	if !ok {
		tr = NewTrack()
		a.tracks[bone] = tr
	}
	return tr
}

// LookupTrack returns the track for bone without creating one.
func (a *Animation) LookupTrack(bone BoneID) (*Track, bool) {
	tr, ok := a.tracks[bone]
	return tr, ok
}

// RemoveTrack drops the track for bone.
func (a *Animation) RemoveTrack(bone BoneID) {
	delete(a.tracks, bone)
}

// Bones returns the ids of every bone with a track, in ascending order.
func (a *Animation) Bones() []BoneID {
	return slices.Sorted(maps.Keys(a.tracks))
}

// Pose samples every track at time t. Bones without a track are absent from
// the result.
func (a *Animation) Pose(t float64) Pose {
	p := make(Pose, len(a.tracks))
	for id, tr := range a.tracks {
		p[id] = tr.Sample(t)
	}
	return p
}

// Length returns the latest keyframe time over all tracks, or 0 when the
// animation has no keyframes.
func (a *Animation) Length() float64 {
	var l float64
	for _, tr := range a.tracks {
		l = max(l, tr.Length())
	}
	return l
}
