package armature

import (
	"errors"
	"testing"
)

func mustAdd(t *testing.T, g *Graph, kind NodeKind) *Node {
	t.Helper()
	n, err := g.AddNode(kind)
	if err != nil {
		t.Fatalf("AddNode(%s): %v", kind, err)
	}
	return n
}

func mustConnect(t *testing.T, g *Graph, consumer NodeID, slot string, producer NodeID) {
	t.Helper()
	if err := g.Connect(consumer, slot, producer); err != nil {
		t.Fatalf("Connect(%d.%s <- %d): %v", consumer, slot, producer, err)
	}
}

// clipNode adds an Animated Pose node whose animation sets bone's rotation
// to value over [0, length].
func clipNode(t *testing.T, g *Graph, bone BoneID, value, length float64, looping bool) *Node {
	t.Helper()
	n := mustAdd(t, g, NodeAnimatedPose)
	n.Clip.Looping = looping
	tr := n.Clip.Animation.Track(bone)
	tr.Rotation.Set(0, value, EaseLinear)
	tr.Rotation.Set(length, value, EaseLinear)
	return n
}

func rotationOf(t *testing.T, p Pose, bone BoneID) float64 {
	t.Helper()
	r, ok := p[bone].Rotation()
	if !ok {
		t.Fatalf("bone %d has no rotation in %v", bone, p)
	}
	return r
}

func TestNewGraphHasFinalNode(t *testing.T) {
	g := NewGraph()
	if g.Len() != 1 || g.Final().Kind != NodeFinalPose {
		t.Fatalf("graph = %v", g.Nodes())
	}
	if len(g.Pose(NewSkeleton())) != 0 {
		t.Error("unconnected final node should give an empty pose")
	}
	if _, err := g.AddNode(NodeFinalPose); !errors.Is(err, ErrFinalNode) {
		t.Errorf("err = %v, want ErrFinalNode", err)
	}
	if err := g.RemoveNode(g.Final().ID); !errors.Is(err, ErrFinalNode) {
		t.Errorf("err = %v, want ErrFinalNode", err)
	}
}

func TestNodeDefaults(t *testing.T) {
	g := NewGraph()
	tests := []struct {
		kind NodeKind
		want float64
	}{
		{NodeBlendPose, 0.5},
		{NodeMultiplyPose, 1},
		{NodePlaybackSpeed, 1},
	}
	for _, tt := range tests {
		n := mustAdd(t, g, tt.kind)
		if got := n.Amount.Eval(g.Properties()); got != tt.want {
			t.Errorf("%s default amount = %v, want %v", tt.kind, got, tt.want)
		}
	}
}

func TestConnectValidation(t *testing.T) {
	g := NewGraph()
	blend := mustAdd(t, g, NodeBlendPose)
	clip := mustAdd(t, g, NodeAnimatedPose)

	if err := g.Connect(blend.ID, "Nope", clip.ID); !errors.Is(err, ErrUnknownSlot) {
		t.Errorf("bad slot err = %v", err)
	}
	if err := g.Connect(blend.ID, SlotPose1, g.Final().ID); !errors.Is(err, ErrNotConsumable) {
		t.Errorf("final as producer err = %v", err)
	}
	if err := g.Connect(blend.ID, SlotPose1, 99); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("unknown producer err = %v", err)
	}
	if err := g.Connect(clip.ID, SlotPose, blend.ID); !errors.Is(err, ErrUnknownSlot) {
		t.Errorf("animated pose has no inputs, err = %v", err)
	}
}

func TestConnectRejectsCycles(t *testing.T) {
	g := NewGraph()
	a := mustAdd(t, g, NodeMultiplyPose)
	b := mustAdd(t, g, NodeAddPose)
	mustConnect(t, g, b.ID, SlotPose1, a.ID)

	if err := g.Connect(a.ID, SlotPose, b.ID); !errors.Is(err, ErrCycle) {
		t.Errorf("err = %v, want ErrCycle", err)
	}
	if err := g.Connect(b.ID, SlotPose2, b.ID); !errors.Is(err, ErrCycle) {
		t.Errorf("self loop err = %v, want ErrCycle", err)
	}
}

func TestRemoveNodeScrubsEdges(t *testing.T) {
	g := NewGraph()
	clip := mustAdd(t, g, NodeAnimatedPose)
	blend := mustAdd(t, g, NodeBlendPose)
	mustConnect(t, g, blend.ID, SlotPose1, clip.ID)
	mustConnect(t, g, blend.ID, SlotPose2, clip.ID)
	mustConnect(t, g, g.Final().ID, SlotOut, clip.ID)

	if err := g.RemoveNode(clip.ID); err != nil {
		t.Fatal(err)
	}
	for _, n := range g.Nodes() {
		for slot, in := range n.Inputs() {
			if in == clip.ID {
				t.Errorf("node %d slot %s still references removed node", n.ID, slot)
			}
		}
	}
	if err := g.RemoveNode(clip.ID); !errors.Is(err, ErrUnknownNode) {
		t.Errorf("err = %v, want ErrUnknownNode", err)
	}
}

func TestInsertNodeReplacesFinal(t *testing.T) {
	g := NewGraph()
	if _, err := g.InsertNode(10, NodeFinalPose); err != nil {
		t.Fatal(err)
	}
	if g.Final().ID != 10 || g.Len() != 1 {
		t.Errorf("final = %d, len = %d", g.Final().ID, g.Len())
	}
	n := mustAdd(t, g, NodeAddPose)
	if n.ID != 11 {
		t.Errorf("next id = %d, want 11", n.ID)
	}
	if _, err := g.InsertNode(11, NodeAddPose); err == nil {
		t.Error("duplicate id should fail")
	}
}

func TestEvalBlendPose(t *testing.T) {
	g := NewGraph()
	a := clipNode(t, g, 2, 0, 1, false)
	b := clipNode(t, g, 2, 1, 1, false)
	blend := mustAdd(t, g, NodeBlendPose)
	blend.Amount = LiteralAmount(0.25)
	mustConnect(t, g, blend.ID, SlotPose1, a.ID)
	mustConnect(t, g, blend.ID, SlotPose2, b.ID)
	mustConnect(t, g, g.Final().ID, SlotOut, blend.ID)

	assertNear(t, "blend", rotationOf(t, g.Pose(nil), 2), 0.25)
}

func TestEvalBlendAmountExpression(t *testing.T) {
	g := NewGraph()
	speed, _ := g.Properties().Create("speed")
	a := clipNode(t, g, 2, 0, 1, false)
	b := clipNode(t, g, 2, 1, 1, false)
	blend := mustAdd(t, g, NodeBlendPose)
	blend.Amount = MustParseAmount("speed / 100")
	mustConnect(t, g, blend.ID, SlotPose1, a.ID)
	mustConnect(t, g, blend.ID, SlotPose2, b.ID)

	speed.Value = 40
	assertNear(t, "blend", rotationOf(t, g.NodePose(blend.ID, nil), 2), 0.4)
}

func TestEvalMultiplyAndAdd(t *testing.T) {
	g := NewGraph()
	a := clipNode(t, g, 2, 0.5, 1, false)
	b := clipNode(t, g, 3, 2, 1, false)
	mul := mustAdd(t, g, NodeMultiplyPose)
	mul.Amount = LiteralAmount(3)
	add := mustAdd(t, g, NodeAddPose)
	mustConnect(t, g, mul.ID, SlotPose, a.ID)
	mustConnect(t, g, add.ID, SlotPose1, mul.ID)
	mustConnect(t, g, add.ID, SlotPose2, b.ID)
	mustConnect(t, g, g.Final().ID, SlotOut, add.ID)

	p := g.Pose(nil)
	assertNear(t, "bone 2", rotationOf(t, p, 2), 1.5)
	assertNear(t, "bone 3", rotationOf(t, p, 3), 2)
}

func TestEvalMissingInputsAreEmpty(t *testing.T) {
	g := NewGraph()
	a := clipNode(t, g, 2, 1, 1, false)
	blend := mustAdd(t, g, NodeBlendPose)
	mustConnect(t, g, blend.ID, SlotPose1, a.ID)
	mustConnect(t, g, g.Final().ID, SlotOut, blend.ID)

	// bone 2 is only on one side, so it passes through
	assertNear(t, "bone 2", rotationOf(t, g.Pose(nil), 2), 1)
	if len(g.NodePose(99, nil)) != 0 {
		t.Error("unknown node should give an empty pose")
	}
}

func TestClipLoopingWraps(t *testing.T) {
	g := NewGraph()
	clip := mustAdd(t, g, NodeAnimatedPose)
	clip.Clip.Looping = true
	tr := clip.Clip.Animation.Track(2)
	tr.Rotation.Set(0, 0, EaseLinear)
	tr.Rotation.Set(2, 2, EaseLinear)
	mustConnect(t, g, g.Final().ID, SlotOut, clip.ID)

	g.Tick(2.5)
	assertNear(t, "time", clip.Clip.Time, 0.5)
	assertNear(t, "rotation", rotationOf(t, g.Pose(nil), 2), 0.5)
	if g.Finished() {
		t.Error("looping clip should never finish")
	}
}

func TestClipNonLoopingFinishes(t *testing.T) {
	g := NewGraph()
	clip := clipNode(t, g, 2, 1, 1, false)
	mustConnect(t, g, g.Final().ID, SlotOut, clip.ID)

	g.Tick(1)
	if g.Finished() {
		t.Error("clip at exactly its length should not be finished")
	}
	g.Tick(0.01)
	if !g.Finished() {
		t.Error("clip past its length should be finished")
	}
	g.Reset()
	if clip.Clip.Time != 0 || g.Finished() {
		t.Errorf("after reset time = %v finished = %v", clip.Clip.Time, g.Finished())
	}
}

func TestClipZeroLengthLooping(t *testing.T) {
	c := &Clip{Animation: NewAnimation(), Looping: true}
	c.advance(3)
	if c.Time != 0 {
		t.Errorf("Time = %v, want 0", c.Time)
	}
}

func TestClipWithoutAnimationIsEmpty(t *testing.T) {
	g := NewGraph()
	loop := mustAdd(t, g, NodeAnimatedPose)
	loop.Clip.Animation = nil
	loop.Clip.Looping = true
	once := mustAdd(t, g, NodeAnimatedPose)
	once.Clip.Animation = nil
	add := mustAdd(t, g, NodeAddPose)
	mustConnect(t, g, add.ID, SlotPose1, loop.ID)
	mustConnect(t, g, add.ID, SlotPose2, once.ID)
	mustConnect(t, g, g.Final().ID, SlotOut, add.ID)

	g.Tick(0.1)
	if loop.Clip.Time != 0 {
		t.Errorf("looping time = %v, want 0", loop.Clip.Time)
	}
	if loop.Clip.Finished() {
		t.Error("looping clip without animation should not finish")
	}
	if !once.Clip.Finished() || !g.Finished() {
		t.Error("non-looping clip without animation should be finished")
	}
	if p := g.Pose(NewSkeleton()); len(p) != 0 {
		t.Errorf("pose = %v, want empty", p)
	}
}

func TestPlaybackSpeedScalesTick(t *testing.T) {
	g := NewGraph()
	clip := clipNode(t, g, 2, 0, 10, false)
	speed := mustAdd(t, g, NodePlaybackSpeed)
	speed.Amount = LiteralAmount(2)
	mustConnect(t, g, speed.ID, SlotPose, clip.ID)
	mustConnect(t, g, g.Final().ID, SlotOut, speed.ID)

	g.Tick(0.5)
	assertNear(t, "time", clip.Clip.Time, 1)
}

func TestSharedProducerTickedPerConsumer(t *testing.T) {
	g := NewGraph()
	clip := clipNode(t, g, 2, 0, 10, false)
	add := mustAdd(t, g, NodeAddPose)
	mustConnect(t, g, add.ID, SlotPose1, clip.ID)
	mustConnect(t, g, add.ID, SlotPose2, clip.ID)
	mustConnect(t, g, g.Final().ID, SlotOut, add.ID)

	g.Tick(1)
	assertNear(t, "time", clip.Clip.Time, 2)
}

func TestDefaultFinishedRule(t *testing.T) {
	g := NewGraph()
	if !g.Finished() {
		t.Error("node with no inputs should be finished")
	}
	done := clipNode(t, g, 2, 0, 0, false)
	done.Clip.Time = 1
	loop := clipNode(t, g, 2, 0, 1, true)
	add := mustAdd(t, g, NodeAddPose)
	mustConnect(t, g, add.ID, SlotPose1, loop.ID)
	mustConnect(t, g, g.Final().ID, SlotOut, add.ID)
	if g.Finished() {
		t.Error("looping input should keep the graph running")
	}
	mustConnect(t, g, add.ID, SlotPose2, done.ID)
	if !g.Finished() {
		t.Error("any finished input should finish the node")
	}
}
