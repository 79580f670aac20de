package armature

import (
	"math"
	"testing"
)

func TestPoseAddDisjointIsUnion(t *testing.T) {
	a := Pose{1: PartialTransform{}.WithRotation(1)}
	b := Pose{2: PartialTransform{}.WithScale(2)}
	got := a.Add(b)
	if len(got) != 2 || got[1] != a[1] || got[2] != b[2] {
		t.Errorf("Add = %v", got)
	}
}

func TestPoseLerpOneSidedBonesPassThrough(t *testing.T) {
	a := Pose{1: PartialTransform{}.WithRotation(1)}
	b := Pose{
		1: PartialTransform{}.WithRotation(2),
		2: PartialTransform{}.WithScale(3),
	}
	got := a.Lerp(b, 0.5)
	r, _ := got[1].Rotation()
	assertNear(t, "bone 1 rotation", r, 1.5)
	if got[2] != b[2] {
		t.Errorf("bone 2 = %+v, want %+v", got[2], b[2])
	}
}

func TestPoseOpsDoNotMutateInputs(t *testing.T) {
	a := Pose{1: PartialTransform{}.WithRotation(1)}
	b := Pose{1: PartialTransform{}.WithRotation(2)}
	_ = a.Add(b)
	_ = a.Lerp(b, 0.3)
	_ = a.Multiply(4)
	if r, _ := a[1].Rotation(); r != 1 {
		t.Errorf("a mutated: %v", r)
	}
}

func TestPoseCloneNil(t *testing.T) {
	var p Pose
	c := p.Clone()
	c[1] = PartialTransform{}
	if len(c) != 1 {
		t.Error("Clone of nil should be writable")
	}
}

func TestResolveChain(t *testing.T) {
	s, ids := buildChain(t, Vec2{10, 0}, Vec2{10, 0})
	p := Pose{ids[0]: PartialTransform{}.WithRotation(math.Pi / 2)}
	world := p.Resolve(s)
	if len(world) != 3 {
		t.Fatalf("len = %d, want 3", len(world))
	}
	assertVec(t, "a", world[ids[0]].Translation, Vec2{10, 0}, 1e-9)
	assertVec(t, "b", world[ids[1]].Translation, Vec2{10, 10}, 1e-9)
	assertNear(t, "b rotation", world[ids[1]].Rotation, math.Pi/2)
}

func TestResolveIgnoresUnknownBones(t *testing.T) {
	s := NewSkeleton()
	world := Pose{42: PartialTransform{}.WithScale(9)}.Resolve(s)
	if len(world) != 1 {
		t.Errorf("len = %d, want 1", len(world))
	}
}

func TestResolveFromOrigin(t *testing.T) {
	s, ids := buildChain(t, Vec2{1, 0})
	origin := Transform{Translation: Vec2{100, 50}, Scale: 2}
	world := Pose{}.ResolveFrom(s, origin)
	assertVec(t, "bone", world[ids[0]].Translation, Vec2{102, 50}, 1e-9)
}

func TestPoseLocalPatchesRest(t *testing.T) {
	s, ids := buildChain(t, Vec2{5, 0})
	p := Pose{ids[0]: PartialTransform{}.WithRotation(0.5)}
	l, ok := p.Local(s, ids[0])
	if !ok {
		t.Fatal("Local failed")
	}
	want := Transform{Translation: Vec2{5, 0}, Rotation: 0.5, Scale: 1}
	if l != want {
		t.Errorf("Local = %+v, want %+v", l, want)
	}
}
