package metrics

import (
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phanxgames/armature"
)

func TestHooksCountTransitions(t *testing.T) {
	c := New()
	h := c.Hooks()
	ev := armature.TransitionEvent{Node: 4, From: 1, To: 2, BlendTime: 0.25}
	h.OnTransitionStart(ev)
	h.OnTransitionCommit(ev)
	h.OnTransitionStart(ev)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.transitions.WithLabelValues("4", "1", "2", "start")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.transitions.WithLabelValues("4", "1", "2", "commit")))
}

func TestHooksRecordSolves(t *testing.T) {
	c := New()
	h := c.Hooks()
	h.OnSolve(armature.SolveEvent{Node: 6, Iterations: 3, Reached: true})
	h.OnSolve(armature.SolveEvent{Node: 6, Iterations: 20, Distance: 4})

	assert.Equal(t, 1.0, testutil.ToFloat64(c.unreached.WithLabelValues("6")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.iterations, "armature_ik_iterations"))
}

func TestRegisterAndGather(t *testing.T) {
	c := New()
	reg := prometheus.NewPedanticRegistry()
	require.NoError(t, reg.Register(c))

	c.ObserveFrame(2 * time.Millisecond)
	c.ObserveFrame(3 * time.Millisecond)

	err := testutil.GatherAndCompare(reg, strings.NewReader(`
# HELP armature_frames_total Frames evaluated
# TYPE armature_frames_total counter
armature_frames_total 2
`), "armature_frames_total")
	assert.NoError(t, err)
}

func TestHooksDriveFromGraph(t *testing.T) {
	skel := armature.NewSkeleton()
	g := armature.NewGraph()
	sm, err := g.AddNode(armature.NodeStateMachine)
	require.NoError(t, err)
	a := sm.Machine.AddState("a")
	b := sm.Machine.AddState("b")
	tr, err := sm.Machine.AddTransition(a.ID, b.ID)
	require.NoError(t, err)
	tr.BlendTime = 0
	require.NoError(t, g.Connect(g.Final().ID, armature.SlotOut, sm.ID))

	c := New()
	g.SetHooks(c.Hooks())
	p := armature.NewPlayer(skel, g)
	p.Play()
	p.Update(0.1)
	p.Update(0.1)

	node := id(uint32(sm.ID))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.transitions.WithLabelValues(node, "1", "2", "start")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.transitions.WithLabelValues(node, "1", "2", "commit")))
}
