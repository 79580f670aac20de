package armature

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestPlayerStoppedDoesNotTick(t *testing.T) {
	s, ids := buildChain(t, Vec2{10, 0})
	g := NewGraph()
	clip := clipNode(t, g, ids[0], 0, 5, false)
	mustConnect(t, g, g.Final().ID, SlotOut, clip.ID)

	p := NewPlayer(s, g)
	world := p.Update(1)
	if clip.Clip.Time != 0 {
		t.Errorf("time = %v, want 0", clip.Clip.Time)
	}
	if len(world) != 2 {
		t.Errorf("world = %v", world)
	}
}

func TestPlayerStopsWhenFinished(t *testing.T) {
	s, ids := buildChain(t, Vec2{10, 0})
	g := NewGraph()
	clip := clipNode(t, g, ids[0], 0, 1, false)
	mustConnect(t, g, g.Final().ID, SlotOut, clip.ID)

	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	p := NewPlayer(s, g, WithLogger(log))
	p.Play()
	p.Update(0.6)
	if !p.Playing() {
		t.Fatal("stopped too early")
	}
	p.Update(0.6)
	if p.Playing() {
		t.Error("player should stop once the graph finishes")
	}
	if !strings.Contains(buf.String(), "playback finished") {
		t.Errorf("log = %q", buf.String())
	}
}

func TestPlayerAppliesResetsAfterEvaluation(t *testing.T) {
	s, ids := buildChain(t, Vec2{10, 0})
	g := NewGraph()
	trigger, _ := g.Properties().Create("wave")
	trigger.SetResetValue(0)

	a := clipNode(t, g, ids[0], 0, 1, true)
	b := clipNode(t, g, ids[0], 1, 1, true)
	blend := mustAdd(t, g, NodeBlendPose)
	blend.Amount = MustParseAmount("wave")
	mustConnect(t, g, blend.ID, SlotPose1, a.ID)
	mustConnect(t, g, blend.ID, SlotPose2, b.ID)
	mustConnect(t, g, g.Final().ID, SlotOut, blend.ID)

	p := NewPlayer(s, g)
	p.Play()
	trigger.Value = 1
	world := p.Update(0.1)
	assertNear(t, "triggered frame", world[ids[0]].Rotation, 1)
	if trigger.Value != 0 {
		t.Errorf("trigger = %v, want reset to 0", trigger.Value)
	}
	world = p.Update(0.1)
	assertNear(t, "next frame", world[ids[0]].Rotation, 0)
}

func TestPlayerPreviewSeesValuesBeforeResets(t *testing.T) {
	s, ids := buildChain(t, Vec2{10, 0})
	g := NewGraph()
	trigger, _ := g.Properties().Create("wave")
	trigger.SetResetValue(0)

	a := clipNode(t, g, ids[0], 0, 1, true)
	b := clipNode(t, g, ids[0], 1, 1, true)
	blend := mustAdd(t, g, NodeBlendPose)
	blend.Amount = MustParseAmount("wave")
	mustConnect(t, g, blend.ID, SlotPose1, a.ID)
	mustConnect(t, g, blend.ID, SlotPose2, b.ID)
	mul := mustAdd(t, g, NodeMultiplyPose)
	mul.Amount = LiteralAmount(1)
	mustConnect(t, g, mul.ID, SlotPose, blend.ID)
	mustConnect(t, g, g.Final().ID, SlotOut, mul.ID)

	p := NewPlayer(s, g)
	if p.PreviewWorld() != nil {
		t.Fatal("PreviewWorld without a preview node should be nil")
	}
	p.SetPreview(blend.ID)
	p.Play()
	trigger.Value = 1
	world := p.Update(0.1)
	assertNear(t, "final", world[ids[0]].Rotation, 1)
	assertNear(t, "preview", p.PreviewWorld()[ids[0]].Rotation, 1)
	if trigger.Value != 0 {
		t.Errorf("trigger = %v, want reset to 0", trigger.Value)
	}

	p.Update(0.1)
	assertNear(t, "preview next frame", p.PreviewWorld()[ids[0]].Rotation, 0)

	p.SetPreview(0)
	p.Update(0.1)
	if p.PreviewWorld() != nil {
		t.Error("PreviewWorld after SetPreview(0) should be nil")
	}
}

func TestPlayerOrigin(t *testing.T) {
	s, ids := buildChain(t, Vec2{10, 0})
	p := NewPlayer(s, NewGraph(), WithOrigin(Transform{Translation: Vec2{100, 100}, Scale: 1}))
	world := p.Update(0)
	assertVec(t, "bone", world[ids[0]].Translation, Vec2{110, 100}, 1e-9)
	if p.World()[ids[0]] != world[ids[0]] {
		t.Error("World should return the last result")
	}
}

func TestPlayerReset(t *testing.T) {
	s, ids := buildChain(t, Vec2{10, 0})
	g := NewGraph()
	clip := clipNode(t, g, ids[0], 0, 5, false)
	mustConnect(t, g, g.Final().ID, SlotOut, clip.ID)
	p := NewPlayer(s, g)
	p.Play()
	p.Update(2)
	p.Stop()
	p.Reset()
	if clip.Clip.Time != 0 || p.Playing() {
		t.Errorf("time = %v playing = %v", clip.Clip.Time, p.Playing())
	}
}
