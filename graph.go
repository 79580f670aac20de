package armature

import (
	"fmt"
	"maps"
	"slices"
	"strconv"
)

// NodeKind distinguishes the evaluation behavior of a Node.
type NodeKind uint8

const (
	NodeFinalPose      NodeKind = iota // evaluation root; output = input "Out"
	NodeAnimatedPose                   // plays an Animation clip
	NodeBlendPose                      // lerp(Pose1, Pose2, amount)
	NodeMultiplyPose                   // multiply(Pose, amount)
	NodeAddPose                        // add(Pose1, Pose2)
	NodePlaybackSpeed                  // scales the tick delta sent to Pose
	NodeStateMachine                   // one input per state
	NodeSymmetryConstraint             // point-reflects a bone about another
	NodeIKConstraint                   // FABRIK chain solve toward a target bone

	nodeKindCount
)

var nodeKindNames = [nodeKindCount]string{
	NodeFinalPose:          "Final Pose",
	NodeAnimatedPose:       "Animated Pose",
	NodeBlendPose:          "Blend Pose",
	NodeMultiplyPose:       "Multiply Pose",
	NodeAddPose:            "Add Pose",
	NodePlaybackSpeed:      "Playback Speed",
	NodeStateMachine:       "State Machine",
	NodeSymmetryConstraint: "Symmetry Constraint",
	NodeIKConstraint:       "IK Constraint",
}

func (k NodeKind) String() string {
	if k >= nodeKindCount {
		return fmt.Sprintf("NodeKind(%d)", uint8(k))
	}
	return nodeKindNames[k]
}

// NodeKinds returns every node kind in declaration order.
func NodeKinds() []NodeKind {
	out := make([]NodeKind, nodeKindCount)
	for i := range out {
		out[i] = NodeKind(i)
	}
	return out
}

// Input slot names for the fixed-slot node kinds.
const (
	SlotOut   = "Out"
	SlotPose  = "Pose"
	SlotPose1 = "Pose1"
	SlotPose2 = "Pose2"
	SlotInput = "Input"
)

var fixedSlots = [nodeKindCount][]string{
	NodeFinalPose:          {SlotOut},
	NodeBlendPose:          {SlotPose1, SlotPose2},
	NodeMultiplyPose:       {SlotPose},
	NodeAddPose:            {SlotPose1, SlotPose2},
	NodePlaybackSpeed:      {SlotPose},
	NodeSymmetryConstraint: {SlotInput},
	NodeIKConstraint:       {SlotInput},
}

// StateSlot returns the input slot name under which a state machine node
// receives the pose of the given state.
func StateSlot(id StateID) string {
	return strconv.FormatUint(uint64(id), 10)
}

// Clip is the payload of an Animated Pose node.
type Clip struct {
	Animation *Animation
	Looping   bool
	Time      float64
}

// SymmetryConstraint is the payload of a Symmetry Constraint node. Projected
// is moved to the point reflection of Target about Center.
type SymmetryConstraint struct {
	Projected, Center, Target BoneID
}

// IKConstraint is the payload of an IK Constraint node. The chain runs from
// Start down to End and is bent toward Target's world position.
type IKConstraint struct {
	Start, End, Target BoneID
	Clockwise          bool
}

// Node is a blend graph element. A single struct serves every kind; the
// payload fields that apply to a kind are non-nil for that kind only.
type Node struct {
	ID       NodeID
	Kind     NodeKind
	Position Vec2 // editor placement, not evaluated

	// Amount is the blend factor (Blend Pose), the multiplier (Multiply
	// Pose), or the speed (Playback Speed).
	Amount Amount

	Clip     *Clip               // NodeAnimatedPose
	Machine  *StateMachine       // NodeStateMachine
	Symmetry *SymmetryConstraint // NodeSymmetryConstraint
	IK       *IKConstraint       // NodeIKConstraint

	inputs map[string]NodeID
}

// Input returns the producer connected to slot.
func (n *Node) Input(slot string) (NodeID, bool) {
	id, ok := n.inputs[slot]
	return id, ok
}

// Inputs returns a copy of the node's slot to producer map.
func (n *Node) Inputs() map[string]NodeID { return maps.Clone(n.inputs) }

// HasOutput reports whether the node may feed other nodes.
func (n *Node) HasOutput() bool { return n.Kind != NodeFinalPose }

// Slots returns the input slot names the node accepts, in a stable order.
func (n *Node) Slots() []string {
	if n.Kind == NodeStateMachine {
		ids := n.Machine.StateIDs()
		out := make([]string, len(ids))
		for i, id := range ids {
			out[i] = StateSlot(id)
		}
		return out
	}
	return slices.Clone(fixedSlots[n.Kind])
}

func (n *Node) acceptsSlot(slot string) bool {
	if n.Kind == NodeStateMachine {
		id, err := strconv.ParseUint(slot, 10, 32)
		if err != nil {
			return false
		}
		_, ok := n.Machine.State(StateID(id))
		return ok
	}
	return slices.Contains(fixedSlots[n.Kind], slot)
}

func newNode(id NodeID, kind NodeKind) *Node {
	n := &Node{ID: id, Kind: kind, inputs: make(map[string]NodeID)}
	switch kind {
	case NodeAnimatedPose:
		n.Clip = &Clip{Animation: NewAnimation()}
	case NodeBlendPose:
		n.Amount = LiteralAmount(0.5)
	case NodeMultiplyPose, NodePlaybackSpeed:
		n.Amount = LiteralAmount(1)
	case NodeStateMachine:
		n.Machine = NewStateMachine()
	case NodeSymmetryConstraint:
		n.Symmetry = &SymmetryConstraint{}
	case NodeIKConstraint:
		n.IK = &IKConstraint{}
	}
	return n
}

// Graph is the blend graph: a set of nodes keyed by id, with edges stored
// on the consuming node, terminating at a single Final Pose node. Cycles
// are rejected when edges are made, so evaluation always terminates.
//
// A Graph is not safe for concurrent use. Edits and evaluation must happen
// on the same goroutine.
type Graph struct {
	nodes  map[NodeID]*Node
	final  NodeID
	nextID NodeID
	props  *Properties
	hooks  Hooks
}

// NewGraph creates a graph holding only the Final Pose node and an empty
// property set.
func NewGraph() *Graph {
	g := &Graph{nodes: make(map[NodeID]*Node), props: NewProperties()}
	g.nextID++
	final := newNode(g.nextID, NodeFinalPose)
	g.nodes[final.ID] = final
	g.final = final.ID
	return g
}

// Properties returns the graph's property set.
func (g *Graph) Properties() *Properties { return g.props }

// SetHooks installs evaluation callbacks.
func (g *Graph) SetHooks(h Hooks) { g.hooks = h }

// Hooks returns the installed evaluation callbacks.
func (g *Graph) Hooks() Hooks { return g.hooks }

// Final returns the Final Pose node.
func (g *Graph) Final() *Node { return g.nodes[g.final] }

// Node returns the node with the given id.
func (g *Graph) Node(id NodeID) (*Node, bool) {
	n, ok := g.nodes[id]
	return n, ok
}

// Nodes returns every node in id order.
func (g *Graph) Nodes() []*Node {
	out := make([]*Node, 0, len(g.nodes))
	for _, id := range slices.Sorted(maps.Keys(g.nodes)) {
		out = append(out, g.nodes[id])
	}
	return out
}

// Len returns the number of nodes, the Final Pose node included.
func (g *Graph) Len() int { return len(g.nodes) }

// AddNode creates a node of the given kind with default parameters.
func (g *Graph) AddNode(kind NodeKind) (*Node, error) {
	if kind == NodeFinalPose {
		return nil, fmt.Errorf("add node: %w", ErrFinalNode)
	}
	if kind >= nodeKindCount {
		return nil, fmt.Errorf("add node: unknown kind %d", kind)
	}
	g.nextID++
	n := newNode(g.nextID, kind)
	g.nodes[n.ID] = n
	return n, nil
}

// InsertNode adds a node of the given kind under a caller-chosen id, for
// loaders. Inserting a Final Pose node replaces the graph's existing Final
// Pose node, which must not have been connected yet.
func (g *Graph) InsertNode(id NodeID, kind NodeKind) (*Node, error) {
	if id == 0 {
		return nil, fmt.Errorf("insert node: id 0 is reserved")
	}
	if kind >= nodeKindCount {
		return nil, fmt.Errorf("insert node %d: unknown kind %d", id, kind)
	}
	if _, dup := g.nodes[id]; dup {
		return nil, fmt.Errorf("insert node %d: id already in use", id)
	}
	n := newNode(id, kind)
	if kind == NodeFinalPose {
		if old := g.nodes[g.final]; len(old.inputs) > 0 {
			return nil, fmt.Errorf("insert node %d: %w", id, ErrFinalNode)
		}
		delete(g.nodes, g.final)
		g.final = id
	}
	g.nodes[id] = n
	g.nextID = max(g.nextID, id)
	return n, nil
}

// RemoveNode deletes a node and clears every input slot that referenced it.
// The Final Pose node cannot be removed.
func (g *Graph) RemoveNode(id NodeID) error {
	if id == g.final {
		return fmt.Errorf("remove node %d: %w", id, ErrFinalNode)
	}
	if _, ok := g.nodes[id]; !ok {
		return fmt.Errorf("remove node %d: %w", id, ErrUnknownNode)
	}
	delete(g.nodes, id)
	for _, n := range g.nodes {
		maps.DeleteFunc(n.inputs, func(_ string, p NodeID) bool { return p == id })
	}
	return nil
}

// Connect feeds producer's output into consumer's slot, replacing any
// previous connection on that slot. It fails if the edge would close a cycle.
func (g *Graph) Connect(consumer NodeID, slot string, producer NodeID) error {
	c, ok := g.nodes[consumer]
	if !ok {
		return fmt.Errorf("connect %d.%s: %w", consumer, slot, ErrUnknownNode)
	}
	p, ok := g.nodes[producer]
	if !ok {
		return fmt.Errorf("connect %d.%s <- %d: %w", consumer, slot, producer, ErrUnknownNode)
	}
	if !p.HasOutput() {
		return fmt.Errorf("connect %d.%s <- %d: %w", consumer, slot, producer, ErrNotConsumable)
	}
	if !c.acceptsSlot(slot) {
		return fmt.Errorf("connect %d.%s: %w", consumer, slot, ErrUnknownSlot)
	}
	if g.reaches(producer, consumer) {
		return fmt.Errorf("connect %d.%s <- %d: %w", consumer, slot, producer, ErrCycle)
	}
	c.inputs[slot] = producer
	return nil
}

// Disconnect clears a consumer's slot.
func (g *Graph) Disconnect(consumer NodeID, slot string) {
	if c, ok := g.nodes[consumer]; ok {
		delete(c.inputs, slot)
	}
}

// reaches reports whether to is from itself or one of from's transitive inputs.
func (g *Graph) reaches(from, to NodeID) bool {
	seen := make(map[NodeID]bool)
	stack := []NodeID{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == to {
			return true
		}
		if seen[id] {
			continue
		}
		seen[id] = true
		if n, ok := g.nodes[id]; ok {
			for _, in := range n.inputs {
				stack = append(stack, in)
			}
		}
	}
	return false
}

// AddState adds a state to a state machine node.
func (g *Graph) AddState(node NodeID, name string) (*State, error) {
	n, ok := g.nodes[node]
	if !ok || n.Machine == nil {
		return nil, fmt.Errorf("add state to %d: %w", node, ErrUnknownNode)
	}
	return n.Machine.AddState(name), nil
}

// RemoveState removes a state from a state machine node and disconnects the
// state's input slot.
func (g *Graph) RemoveState(node NodeID, state StateID) error {
	n, ok := g.nodes[node]
	if !ok || n.Machine == nil {
		return fmt.Errorf("remove state from %d: %w", node, ErrUnknownNode)
	}
	if err := n.Machine.RemoveState(state); err != nil {
		return err
	}
	delete(n.inputs, StateSlot(state))
	return nil
}
