package armature

import (
	"maps"
	"math"
	"slices"
)

// Evaluation is pull-based: every Pose call walks the inputs of the node
// again, and a producer feeding two consumers is evaluated (and ticked) once
// per consumer. Nothing is cached between calls because clip and state
// machine nodes carry mutable playback state.

// Tick advances the graph by dt seconds, starting at the Final Pose node.
func (g *Graph) Tick(dt float64) { g.tick(g.final, dt) }

// Reset returns every clip and state machine reachable from the Final Pose
// node to its initial state.
func (g *Graph) Reset() { g.reset(g.final) }

// Finished reports whether the Final Pose node has finished playing.
func (g *Graph) Finished() bool { return g.finished(g.final) }

// Pose evaluates the Final Pose node against skel. The skeleton is only
// consulted by constraint nodes.
func (g *Graph) Pose(skel *Skeleton) Pose { return g.pose(g.final, skel) }

// NodePose evaluates any node, for previewing intermediate results. Unknown
// ids yield an empty pose.
func (g *Graph) NodePose(id NodeID, skel *Skeleton) Pose { return g.pose(id, skel) }

// inputIDs returns the producers of n in slot name order, skipping dangling ids.
func (g *Graph) inputIDs(n *Node) []NodeID {
	out := make([]NodeID, 0, len(n.inputs))
	for _, slot := range slices.Sorted(maps.Keys(n.inputs)) {
		if id := n.inputs[slot]; g.nodes[id] != nil {
			out = append(out, id)
		}
	}
	return out
}

func (g *Graph) tick(id NodeID, dt float64) {
	n, ok := g.nodes[id]
	if !ok {
		return
	}
	switch n.Kind {
	case NodeAnimatedPose:
		n.Clip.advance(dt)
	case NodePlaybackSpeed:
		if in, ok := n.inputs[SlotPose]; ok {
			g.tick(in, dt*n.Amount.Eval(g.props))
		}
	case NodeStateMachine:
		g.tickMachine(n, dt)
	default:
		for _, in := range g.inputIDs(n) {
			g.tick(in, dt)
		}
	}
}

func (g *Graph) reset(id NodeID) {
	n, ok := g.nodes[id]
	if !ok {
		return
	}
	switch n.Kind {
	case NodeAnimatedPose:
		n.Clip.Time = 0
	case NodeStateMachine:
		g.resetMachine(n)
	default:
		for _, in := range g.inputIDs(n) {
			g.reset(in)
		}
	}
}

// finished treats unknown nodes as finished so that a missing branch never
// holds a transition forever.
func (g *Graph) finished(id NodeID) bool {
	n, ok := g.nodes[id]
	if !ok {
		return true
	}
	switch n.Kind {
	case NodeAnimatedPose:
		return n.Clip.Finished()
	case NodeStateMachine:
		return g.machineFinished(n)
	}
	if len(n.inputs) == 0 {
		return true
	}
	for _, in := range n.inputs {
		if g.finished(in) {
			return true
		}
	}
	return false
}

func (g *Graph) pose(id NodeID, skel *Skeleton) Pose {
	n, ok := g.nodes[id]
	if !ok {
		return Pose{}
	}
	switch n.Kind {
	case NodeFinalPose:
		return g.input(n, SlotOut, skel)
	case NodeAnimatedPose:
		if n.Clip.Animation == nil {
			return Pose{}
		}
		return n.Clip.Animation.Pose(n.Clip.Time)
	case NodeBlendPose:
		return g.input(n, SlotPose1, skel).Lerp(g.input(n, SlotPose2, skel), n.Amount.Eval(g.props))
	case NodeMultiplyPose:
		return g.input(n, SlotPose, skel).Multiply(n.Amount.Eval(g.props))
	case NodeAddPose:
		return g.input(n, SlotPose1, skel).Add(g.input(n, SlotPose2, skel))
	case NodePlaybackSpeed:
		return g.input(n, SlotPose, skel)
	case NodeStateMachine:
		return g.machinePose(n, skel)
	case NodeSymmetryConstraint:
		return g.applySymmetry(n, g.input(n, SlotInput, skel).Clone(), skel)
	case NodeIKConstraint:
		return g.applyIK(n, g.input(n, SlotInput, skel).Clone(), skel)
	}
	return Pose{}
}

// input evaluates the producer on slot, or returns an empty pose when the
// slot is unconnected.
func (g *Graph) input(n *Node, slot string, skel *Skeleton) Pose {
	in, ok := n.inputs[slot]
	if !ok {
		return Pose{}
	}
	return g.pose(in, skel)
}

// advance moves the clip forward by dt, wrapping when looping.
func (c *Clip) advance(dt float64) {
	c.Time += dt
	if !c.Looping {
		return
	}
	l := c.length()
	if l <= 0 {
		c.Time = 0
		return
	}
	c.Time = math.Mod(c.Time, l)
	if c.Time < 0 {
		c.Time += l
	}
}

// Finished reports whether a non-looping clip has played past its end.
func (c *Clip) Finished() bool {
	return !c.Looping && c.Time > c.length()
}

// length is the animation's length; a clip without an animation is empty.
func (c *Clip) length() float64 {
	if c.Animation == nil {
		return 0
	}
	return c.Animation.Length()
}

// --- state machine ---

func (g *Graph) stateInput(n *Node, s StateID) (NodeID, bool) {
	in, ok := n.inputs[StateSlot(s)]
	if !ok || g.nodes[in] == nil {
		return 0, false
	}
	return in, true
}

func (g *Graph) resetMachine(n *Node) {
	m := n.Machine
	m.current = m.start
	m.active = -1
	m.elapsed = 0
	if in, ok := g.stateInput(n, m.current); ok {
		g.reset(in)
	}
}

func (g *Graph) tickMachine(n *Node, dt float64) {
	m := n.Machine
	if _, ok := m.states[m.current]; !ok {
		m.current, m.active = m.start, -1
		if _, ok := m.states[m.current]; !ok {
			return
		}
	}
	if in, ok := g.stateInput(n, m.current); ok {
		g.tick(in, dt)
	}

	if t, ok := m.ActiveTransition(); ok {
		m.elapsed += dt
		if m.elapsed >= t.BlendTime {
			ev := TransitionEvent{Node: n.ID, From: m.current, To: t.Target, BlendTime: t.BlendTime}
			m.current = t.Target
			m.active = -1
			m.elapsed = 0
			if g.hooks.OnTransitionCommit != nil {
				g.hooks.OnTransitionCommit(ev)
			}
		}
		return
	}
	m.active = -1

	for i, t := range m.states[m.current].Transitions {
		if !g.transitionReady(n, t) {
			continue
		}
		m.active = i
		m.elapsed = 0
		if g.hooks.OnTransitionStart != nil {
			g.hooks.OnTransitionStart(TransitionEvent{Node: n.ID, From: m.current, To: t.Target, BlendTime: t.BlendTime})
		}
		if t.Resets {
			if in, ok := g.stateInput(n, t.Target); ok {
				g.reset(in)
			}
		}
		break
	}
}

func (g *Graph) transitionReady(n *Node, t *Transition) bool {
	if _, ok := n.Machine.states[t.Target]; !ok {
		return false
	}
	for _, c := range t.Conditions {
		if !c.passes(g.props) {
			return false
		}
	}
	if t.RequireFinished {
		in, ok := g.stateInput(n, n.Machine.current)
		if ok && !g.finished(in) {
			return false
		}
	}
	return true
}

func (g *Graph) machineFinished(n *Node) bool {
	m := n.Machine
	s, ok := m.states[m.current]
	if !ok {
		return true
	}
	if !s.End {
		return false
	}
	in, ok := g.stateInput(n, m.current)
	return !ok || g.finished(in)
}

func (g *Graph) statePose(n *Node, s StateID, skel *Skeleton) Pose {
	in, ok := g.stateInput(n, s)
	if !ok {
		return Pose{}
	}
	return g.pose(in, skel)
}

func (g *Graph) machinePose(n *Node, skel *Skeleton) Pose {
	m := n.Machine
	if _, ok := m.states[m.current]; !ok {
		return Pose{}
	}
	from := g.statePose(n, m.current, skel)
	t, ok := m.ActiveTransition()
	if !ok {
		return from
	}
	return from.Lerp(g.statePose(n, t.Target, skel), m.progress(t))
}
