package armature

import (
	"errors"
	"testing"
)

type machineRig struct {
	g      *Graph
	node   *Node
	s0, s1 *State
	c0, c1 *Node
}

// newMachineRig wires a two-state machine into the final node. State 0
// holds bone 2 at rotation 0 and state 1 at rotation 1; both clips loop
// over one second.
func newMachineRig(t *testing.T) *machineRig {
	t.Helper()
	g := NewGraph()
	r := &machineRig{g: g, node: mustAdd(t, g, NodeStateMachine)}
	r.s0, _ = g.AddState(r.node.ID, "idle")
	r.s1, _ = g.AddState(r.node.ID, "walk")
	r.c0 = clipNode(t, g, 2, 0, 1, true)
	r.c1 = clipNode(t, g, 2, 1, 1, true)
	mustConnect(t, g, r.node.ID, StateSlot(r.s0.ID), r.c0.ID)
	mustConnect(t, g, r.node.ID, StateSlot(r.s1.ID), r.c1.ID)
	mustConnect(t, g, g.Final().ID, SlotOut, r.node.ID)
	return r
}

func TestComparator(t *testing.T) {
	tests := []struct {
		c    Comparator
		v    float64
		want bool
	}{
		{CompareLess, 0, true},
		{CompareLessEqual, 1, true},
		{CompareEqual, 1, true},
		{CompareNotEqual, 1, false},
		{CompareGreaterEqual, 0, false},
		{CompareGreater, 2, true},
	}
	for _, tt := range tests {
		if got := tt.c.Compare(tt.v, 1); got != tt.want {
			t.Errorf("%v %s 1 = %v, want %v", tt.v, tt.c, got, tt.want)
		}
		back, err := ParseComparator(tt.c.String())
		if err != nil || back != tt.c {
			t.Errorf("ParseComparator(%q) = %v, %v", tt.c.String(), back, err)
		}
	}
}

func TestStateMachineFirstStateIsStart(t *testing.T) {
	m := NewStateMachine()
	a := m.AddState("a")
	m.AddState("b")
	if m.Start() != a.ID || m.Current() != a.ID {
		t.Errorf("start = %d current = %d, want %d", m.Start(), m.Current(), a.ID)
	}
}

func TestStateMachineTransitionBlendsOverTime(t *testing.T) {
	r := newMachineRig(t)
	tr, err := r.node.Machine.AddTransition(r.s0.ID, r.s1.ID)
	if err != nil {
		t.Fatal(err)
	}
	tr.BlendTime = 1

	var starts, commits []TransitionEvent
	r.g.SetHooks(Hooks{
		OnTransitionStart:  func(e TransitionEvent) { starts = append(starts, e) },
		OnTransitionCommit: func(e TransitionEvent) { commits = append(commits, e) },
	})

	// first tick starts the transition at elapsed 0
	r.g.Tick(0.25)
	if len(starts) != 1 || starts[0].From != r.s0.ID || starts[0].To != r.s1.ID {
		t.Fatalf("starts = %+v", starts)
	}
	assertNear(t, "progress 0", rotationOf(t, r.g.Pose(nil), 2), 0)

	for i, want := range []float64{0.25, 0.5, 0.75} {
		r.g.Tick(0.25)
		assertNear(t, "blended rotation", rotationOf(t, r.g.Pose(nil), 2), want)
		if r.node.Machine.Current() != r.s0.ID {
			t.Fatalf("tick %d: committed early", i)
		}
	}

	r.g.Tick(0.25)
	if r.node.Machine.Current() != r.s1.ID {
		t.Errorf("current = %d, want %d", r.node.Machine.Current(), r.s1.ID)
	}
	if _, ok := r.node.Machine.ActiveTransition(); ok {
		t.Error("transition should be cleared after commit")
	}
	if len(commits) != 1 || commits[0].BlendTime != 1 {
		t.Errorf("commits = %+v", commits)
	}
	assertNear(t, "committed rotation", rotationOf(t, r.g.Pose(nil), 2), 1)
}

func TestStateMachineZeroBlendCommitsNextTick(t *testing.T) {
	r := newMachineRig(t)
	tr, _ := r.node.Machine.AddTransition(r.s0.ID, r.s1.ID)
	tr.BlendTime = 0

	r.g.Tick(0.1)
	assertNear(t, "during", rotationOf(t, r.g.Pose(nil), 2), 1)
	r.g.Tick(0.1)
	if r.node.Machine.Current() != r.s1.ID {
		t.Errorf("current = %d, want %d", r.node.Machine.Current(), r.s1.ID)
	}
}

func TestStateMachineConditions(t *testing.T) {
	r := newMachineRig(t)
	speed, _ := r.g.Properties().Create("speed")
	tr, _ := r.node.Machine.AddTransition(r.s0.ID, r.s1.ID)
	tr.Conditions = []Condition{{Property: speed.ID, Comparator: CompareGreater, Threshold: 10}}

	r.g.Tick(0.1)
	if _, ok := r.node.Machine.ActiveTransition(); ok {
		t.Fatal("transition started without its condition")
	}
	speed.Value = 11
	r.g.Tick(0.1)
	if _, ok := r.node.Machine.ActiveTransition(); !ok {
		t.Fatal("transition should start once the condition passes")
	}
}

func TestStateMachineDeletedPropertyNeverPasses(t *testing.T) {
	r := newMachineRig(t)
	p, _ := r.g.Properties().Create("go")
	tr, _ := r.node.Machine.AddTransition(r.s0.ID, r.s1.ID)
	tr.Conditions = []Condition{{Property: p.ID, Comparator: CompareEqual, Threshold: 0}}
	r.g.Properties().Delete(p.ID)

	r.g.Tick(0.1)
	if _, ok := r.node.Machine.ActiveTransition(); ok {
		t.Error("condition on a deleted property should not pass")
	}
}

func TestStateMachineFirstPassingTransitionWins(t *testing.T) {
	r := newMachineRig(t)
	s2, _ := r.g.AddState(r.node.ID, "run")
	first, _ := r.node.Machine.AddTransition(r.s0.ID, s2.ID)
	first.Conditions = []Condition{{Property: 99, Comparator: CompareEqual, Threshold: 0}}
	_, _ = r.node.Machine.AddTransition(r.s0.ID, r.s1.ID)
	_, _ = r.node.Machine.AddTransition(r.s0.ID, s2.ID)

	r.g.Tick(0.1)
	active, ok := r.node.Machine.ActiveTransition()
	if !ok || active.Target != r.s1.ID {
		t.Errorf("active = %+v, %v; want target %d", active, ok, r.s1.ID)
	}
}

func TestStateMachineRequireFinished(t *testing.T) {
	r := newMachineRig(t)
	r.c0.Clip.Looping = false
	tr, _ := r.node.Machine.AddTransition(r.s0.ID, r.s1.ID)
	tr.RequireFinished = true

	r.g.Tick(0.5)
	if _, ok := r.node.Machine.ActiveTransition(); ok {
		t.Fatal("transition started before the source finished")
	}
	r.g.Tick(0.6)
	if _, ok := r.node.Machine.ActiveTransition(); !ok {
		t.Fatal("transition should start once the source finished")
	}
}

func TestStateMachineRequireFinishedMissingInput(t *testing.T) {
	r := newMachineRig(t)
	r.g.Disconnect(r.node.ID, StateSlot(r.s0.ID))
	tr, _ := r.node.Machine.AddTransition(r.s0.ID, r.s1.ID)
	tr.RequireFinished = true

	r.g.Tick(0.1)
	if _, ok := r.node.Machine.ActiveTransition(); !ok {
		t.Error("missing source input counts as finished")
	}
}

func TestStateMachineResetsTarget(t *testing.T) {
	r := newMachineRig(t)
	r.c1.Clip.Time = 0.7
	tr, _ := r.node.Machine.AddTransition(r.s0.ID, r.s1.ID)
	tr.Resets = true

	r.g.Tick(0.1)
	if r.c1.Clip.Time != 0 {
		t.Errorf("target time = %v, want 0", r.c1.Clip.Time)
	}
	if r.c0.Clip.Time == 0 {
		t.Error("source should have been ticked")
	}
}

func TestStateMachineOnlyCurrentInputTicked(t *testing.T) {
	r := newMachineRig(t)
	r.g.Tick(0.3)
	assertNear(t, "current clip", r.c0.Clip.Time, 0.3)
	assertNear(t, "other clip", r.c1.Clip.Time, 0)
}

func TestStateMachineFinished(t *testing.T) {
	r := newMachineRig(t)
	r.c0.Clip.Looping = false
	r.g.Tick(2)
	if r.g.Finished() {
		t.Error("non-end state should not finish the machine")
	}
	r.s0.End = true
	if !r.g.Finished() {
		t.Error("end state with a finished input should finish the machine")
	}
}

func TestStateMachineReset(t *testing.T) {
	r := newMachineRig(t)
	tr, _ := r.node.Machine.AddTransition(r.s0.ID, r.s1.ID)
	tr.BlendTime = 0
	r.g.Tick(0.1)
	r.g.Tick(0.1)
	if r.node.Machine.Current() != r.s1.ID {
		t.Fatal("setup: expected to be in s1")
	}
	r.c0.Clip.Time = 0.5
	r.g.Reset()
	if r.node.Machine.Current() != r.s0.ID {
		t.Errorf("current = %d, want start", r.node.Machine.Current())
	}
	if r.c0.Clip.Time != 0 {
		t.Errorf("start input time = %v, want 0", r.c0.Clip.Time)
	}
}

func TestStateMachineEmptyIsFinished(t *testing.T) {
	g := NewGraph()
	n := mustAdd(t, g, NodeStateMachine)
	mustConnect(t, g, g.Final().ID, SlotOut, n.ID)
	g.Tick(1)
	if !g.Finished() || len(g.Pose(nil)) != 0 {
		t.Error("empty machine should be finished with an empty pose")
	}
}

func TestRemoveStateDropsTransitionsAndSlot(t *testing.T) {
	r := newMachineRig(t)
	_, _ = r.node.Machine.AddTransition(r.s0.ID, r.s1.ID)
	if err := r.g.RemoveState(r.node.ID, r.s1.ID); err != nil {
		t.Fatal(err)
	}
	if len(r.s0.Transitions) != 0 {
		t.Errorf("transitions = %v", r.s0.Transitions)
	}
	if _, ok := r.node.Input(StateSlot(r.s1.ID)); ok {
		t.Error("slot of removed state still connected")
	}
	if err := r.g.RemoveState(r.node.ID, r.s1.ID); !errors.Is(err, ErrUnknownState) {
		t.Errorf("err = %v, want ErrUnknownState", err)
	}
}

func TestRemoveStartStateFallsBack(t *testing.T) {
	m := NewStateMachine()
	a := m.AddState("a")
	b := m.AddState("b")
	c := m.AddState("c")
	if err := m.RemoveState(a.ID); err != nil {
		t.Fatal(err)
	}
	if m.Start() != b.ID || m.Current() != b.ID {
		t.Errorf("start = %d, want %d", m.Start(), b.ID)
	}
	if err := m.SetStart(c.ID); err != nil || m.Start() != c.ID {
		t.Errorf("SetStart = %v", err)
	}
}

func TestRemoveStateKeepsActiveTransition(t *testing.T) {
	g := NewGraph()
	n := mustAdd(t, g, NodeStateMachine)
	m := n.Machine
	s1, _ := g.AddState(n.ID, "s1")
	s2, _ := g.AddState(n.ID, "s2")
	s3, _ := g.AddState(n.ID, "s3")
	s4, _ := g.AddState(n.ID, "s4")
	mustConnect(t, g, g.Final().ID, SlotOut, n.ID)

	gate, _ := g.Properties().Create("gate")
	blocked, _ := m.AddTransition(s1.ID, s2.ID)
	blocked.Conditions = []Condition{{Property: gate.ID, Comparator: CompareGreater, Threshold: 0}}
	_, _ = m.AddTransition(s1.ID, s3.ID)
	_, _ = m.AddTransition(s1.ID, s4.ID)

	g.Tick(0.1)
	if tr, ok := m.ActiveTransition(); !ok || tr.Target != s3.ID {
		t.Fatalf("active transition = %+v, want target %d", tr, s3.ID)
	}

	if err := g.RemoveState(n.ID, s2.ID); err != nil {
		t.Fatal(err)
	}
	if tr, ok := m.ActiveTransition(); !ok || tr.Target != s3.ID {
		t.Errorf("after removing an unrelated state: active = %+v, want target %d", tr, s3.ID)
	}
	assertNear(t, "elapsed", m.Elapsed(), 0)

	if err := g.RemoveState(n.ID, s3.ID); err != nil {
		t.Fatal(err)
	}
	if tr, ok := m.ActiveTransition(); ok {
		t.Errorf("active = %+v after removing its target, want none", tr)
	}
	if m.Current() != s1.ID {
		t.Errorf("current = %d, want %d", m.Current(), s1.ID)
	}
}

func TestAddTransitionDefaults(t *testing.T) {
	m := NewStateMachine()
	a := m.AddState("a")
	b := m.AddState("b")
	tr, err := m.AddTransition(a.ID, b.ID)
	if err != nil {
		t.Fatal(err)
	}
	if tr.BlendTime != 0.2 || tr.Easing != EaseLinear {
		t.Errorf("defaults = %+v", tr)
	}
	if _, err := m.AddTransition(a.ID, 9); !errors.Is(err, ErrUnknownState) {
		t.Errorf("err = %v, want ErrUnknownState", err)
	}
	if err := m.RemoveTransition(a.ID, 3); err == nil {
		t.Error("out of range remove should fail")
	}
}

func TestConnectStateSlotMustExist(t *testing.T) {
	r := newMachineRig(t)
	if err := r.g.Connect(r.node.ID, StateSlot(42), r.c0.ID); !errors.Is(err, ErrUnknownSlot) {
		t.Errorf("err = %v, want ErrUnknownSlot", err)
	}
}

func TestHooksChain(t *testing.T) {
	var order []string
	h := Hooks{OnSolve: func(SolveEvent) { order = append(order, "a") }}.
		Chain(Hooks{OnSolve: func(SolveEvent) { order = append(order, "b") }})
	h.OnSolve(SolveEvent{})
	if len(order) != 2 || order[0] != "a" {
		t.Errorf("order = %v", order)
	}
	if (Hooks{}).Chain(Hooks{}).OnTransitionStart != nil {
		t.Error("chaining nil hooks should stay nil")
	}
}
