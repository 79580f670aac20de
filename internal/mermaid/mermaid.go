// Package mermaid renders a blend graph as a Mermaid flowchart.
package mermaid

import (
	"fmt"
	"slices"
	"strconv"
	"strings"

	"github.com/phanxgames/armature"
)

// Overlay carries optional naming and runtime data for the diagram.
type Overlay struct {
	// Animations names the clips played by Animated Pose nodes.
	Animations map[*armature.Animation]string
	// Skeleton supplies bone names for constraint labels.
	Skeleton *armature.Skeleton
	// Current highlights the state each state machine is in.
	Current bool
}

// GenerateMermaid produces a flowchart of g. Poses flow from producers
// towards the Final Pose node. Shapes follow node roles:
// - Final Pose: ((Circle))
// - Animated Pose: [/Parallelogram/]
// - Constraints: [[Subroutine]]
// - Default: [Rectangle]
// State machines become subgraphs holding one rounded node per state.
func GenerateMermaid(g *armature.Graph, overlay *Overlay) string {
	if overlay == nil {
		overlay = &Overlay{}
	}
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	var current []string
	for _, n := range g.Nodes() {
		if n.Kind == armature.NodeStateMachine {
			writeMachine(&sb, g, n, overlay)
			if overlay.Current && n.Machine.Current() != 0 {
				current = append(current, stateID(n.ID, n.Machine.Current()))
			}
			continue
		}
		opener, closer := "[", "]"
		switch n.Kind {
		case armature.NodeFinalPose:
			opener, closer = "((", "))"
		case armature.NodeAnimatedPose:
			opener, closer = "[/", "/]"
		case armature.NodeSymmetryConstraint, armature.NodeIKConstraint:
			opener, closer = "[[", "]]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", nodeID(n.ID), opener, escape(nodeLabel(n, overlay)), closer)
	}

	for _, n := range g.Nodes() {
		in := n.Inputs()
		for _, slot := range n.Slots() {
			producer, ok := in[slot]
			if !ok {
				continue
			}
			if _, ok := g.Node(producer); !ok {
				continue
			}
			if n.Kind == armature.NodeStateMachine {
				id, _ := parseStateSlot(slot)
				fmt.Fprintf(&sb, "    %s -.-> %s\n", nodeID(producer), stateID(n.ID, id))
				continue
			}
			fmt.Fprintf(&sb, "    %s -->|%s| %s\n", nodeID(producer), slot, nodeID(n.ID))
		}
	}

	if len(current) > 0 {
		sb.WriteString("\n    %% Runtime state\n")
		sb.WriteString("    classDef current fill:#ffeb3b,stroke:#fbc02d,stroke-width:4px,color:#000;\n")
		for _, id := range current {
			fmt.Fprintf(&sb, "    class %s current;\n", id)
		}
	}
	return sb.String()
}

func writeMachine(sb *strings.Builder, g *armature.Graph, n *armature.Node, overlay *Overlay) {
	m := n.Machine
	fmt.Fprintf(sb, "    subgraph %s [\"State Machine %d\"]\n", nodeID(n.ID), n.ID)
	for _, s := range m.States() {
		label := s.Name
		if s.ID == m.Start() {
			label = "▶ " + label
		}
		if s.End {
			label += " ■"
		}
		fmt.Fprintf(sb, "        %s([\"%s\"])\n", stateID(n.ID, s.ID), escape(label))
	}
	for _, s := range m.States() {
		for _, t := range s.Transitions {
			if _, ok := m.State(t.Target); !ok {
				continue
			}
			fmt.Fprintf(sb, "        %s -- \"%s\" --> %s\n",
				stateID(n.ID, s.ID), escape(transitionLabel(g, t)), stateID(n.ID, t.Target))
		}
	}
	sb.WriteString("    end\n")
}

func transitionLabel(g *armature.Graph, t *armature.Transition) string {
	var parts []string
	for _, c := range t.Conditions {
		name := fmt.Sprintf("#%d", c.Property)
		if p, ok := g.Properties().Get(c.Property); ok {
			name = p.Name
		}
		parts = append(parts, fmt.Sprintf("%s %s %g", name, c.Comparator, c.Threshold))
	}
	if t.RequireFinished {
		parts = append(parts, "finished")
	}
	label := strings.Join(parts, " && ")
	if label == "" {
		label = "always"
	}
	return fmt.Sprintf("%s / %gs", label, t.BlendTime)
}

func nodeLabel(n *armature.Node, overlay *Overlay) string {
	kind := n.Kind.String()
	switch n.Kind {
	case armature.NodeAnimatedPose:
		name := overlay.Animations[n.Clip.Animation]
		if name == "" {
			name = "clip"
		}
		if n.Clip.Looping {
			name += " ⟳"
		}
		return kind + "<br/>" + name
	case armature.NodeBlendPose, armature.NodeMultiplyPose, armature.NodePlaybackSpeed:
		return kind + "<br/>" + n.Amount.String()
	case armature.NodeSymmetryConstraint:
		c := n.Symmetry
		return fmt.Sprintf("%s<br/>%s = mirror %s about %s", kind,
			boneName(overlay, c.Projected), boneName(overlay, c.Target), boneName(overlay, c.Center))
	case armature.NodeIKConstraint:
		c := n.IK
		return fmt.Sprintf("%s<br/>%s..%s to %s", kind,
			boneName(overlay, c.Start), boneName(overlay, c.End), boneName(overlay, c.Target))
	}
	return kind
}

func boneName(overlay *Overlay, id armature.BoneID) string {
	if overlay.Skeleton != nil {
		if b, ok := overlay.Skeleton.Bone(id); ok {
			return b.Name
		}
	}
	return fmt.Sprintf("#%d", id)
}

func parseStateSlot(slot string) (armature.StateID, bool) {
	id, err := strconv.ParseUint(slot, 10, 32)
	if err != nil {
		return 0, false
	}
	return armature.StateID(id), true
}

func nodeID(id armature.NodeID) string { return fmt.Sprintf("n%d", id) }

func stateID(node armature.NodeID, s armature.StateID) string {
	return fmt.Sprintf("n%d_s%d", node, s)
}

// escape swaps double quotes for single ones so labels stay quoted.
func escape(s string) string {
	return strings.ReplaceAll(s, "\"", "'")
}

// AnimationNames inverts a name to animation map for use as
// Overlay.Animations. An animation registered under several names gets the
// alphabetically first.
func AnimationNames(anims map[string]*armature.Animation) map[*armature.Animation]string {
	out := make(map[*armature.Animation]string, len(anims))
	names := make([]string, 0, len(anims))
	for name := range anims {
		names = append(names, name)
	}
	slices.Sort(names)
	for _, name := range names {
		if _, dup := out[anims[name]]; !dup {
			out[anims[name]] = name
		}
	}
	return out
}
