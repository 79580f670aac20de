package armature

import "maps"

// Pose is a sparse set of per-bone overrides relative to the rest pose.
// Composition operators return new poses and never modify their inputs.
type Pose map[BoneID]PartialTransform

// Clone returns a shallow copy of p. PartialTransform is a value type, so the
// copy is fully independent.
func (p Pose) Clone() Pose {
	if p == nil {
		return Pose{}
	}
	return maps.Clone(p)
}

// Add combines p and o bone by bone over the union of their bones.
func (p Pose) Add(o Pose) Pose {
	out := make(Pose, max(len(p), len(o)))
	for id, t := range p {
		out[id] = t.Add(o[id])
	}
	for id, t := range o {
		if _, ok := p[id]; !ok {
			out[id] = t
		}
	}
	return out
}

// Lerp blends p toward o by t bone by bone over the union of their bones.
// A bone present on one side only keeps that side's override.
func (p Pose) Lerp(o Pose, t float64) Pose {
	out := make(Pose, max(len(p), len(o)))
	for id, a := range p {
		out[id] = a.Lerp(o[id], t)
	}
	for id, b := range o {
		if _, ok := p[id]; !ok {
			out[id] = b
		}
	}
	return out
}

// Multiply scales every set field of every override by s.
func (p Pose) Multiply(s float64) Pose {
	out := make(Pose, len(p))
	for id, t := range p {
		out[id] = t.Multiply(s)
	}
	return out
}

// Resolve computes the world transform of every bone of skel under p, with
// the root placed in the identity frame.
func (p Pose) Resolve(skel *Skeleton) map[BoneID]Transform {
	return p.ResolveFrom(skel, IdentityTransform)
}

// ResolveFrom is Resolve with the root placed in the given frame. Bones are
// visited parent-before-children; overrides for bones that are not in skel
// are ignored.
func (p Pose) ResolveFrom(skel *Skeleton, origin Transform) map[BoneID]Transform {
	out := make(map[BoneID]Transform, skel.Len())
	p.resolve(skel, skel.root, origin, out)
	return out
}

func (p Pose) resolve(skel *Skeleton, id BoneID, parent Transform, out map[BoneID]Transform) {
	b, ok := skel.bones[id]
	if !ok {
		return
	}
	world := parent.Compose(p[id].Patch(b.Rest).Lock())
	out[id] = world
	for _, c := range b.children {
		p.resolve(skel, c, world, out)
	}
}

// Local returns the locked parent-relative transform of bone under p.
func (p Pose) Local(skel *Skeleton, bone BoneID) (Transform, bool) {
	b, ok := skel.bones[bone]
	if !ok {
		return Transform{}, false
	}
	return p[bone].Patch(b.Rest).Lock(), true
}
