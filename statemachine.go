package armature

import (
	"fmt"
	"maps"
	"slices"
)

// Comparator tests a property value against a condition threshold.
type Comparator uint8

const (
	CompareLess Comparator = iota
	CompareLessEqual
	CompareEqual
	CompareNotEqual
	CompareGreaterEqual
	CompareGreater
)

var comparatorSymbols = [...]string{"<", "<=", "==", "!=", ">=", ">"}

// Compare reports whether value <op> threshold holds.
func (c Comparator) Compare(value, threshold float64) bool {
	switch c {
	case CompareLess:
		return value < threshold
	case CompareLessEqual:
		return value <= threshold
	case CompareEqual:
		return value == threshold
	case CompareNotEqual:
		return value != threshold
	case CompareGreaterEqual:
		return value >= threshold
	case CompareGreater:
		return value > threshold
	}
	return false
}

func (c Comparator) String() string {
	if int(c) < len(comparatorSymbols) {
		return comparatorSymbols[c]
	}
	return fmt.Sprintf("Comparator(%d)", uint8(c))
}

// ParseComparator resolves a comparator from its symbol.
func ParseComparator(s string) (Comparator, error) {
	for i, sym := range comparatorSymbols {
		if sym == s {
			return Comparator(i), nil
		}
	}
	return 0, fmt.Errorf("armature: unknown comparator %q", s)
}

// Condition is one clause of a transition guard.
type Condition struct {
	Property   PropertyID
	Comparator Comparator
	Threshold  float64
}

// passes evaluates the condition. Unknown properties never pass.
func (c Condition) passes(ps *Properties) bool {
	v, ok := ps.Value(c.Property)
	return ok && c.Comparator.Compare(v, c.Threshold)
}

// Transition moves a state machine from the state that owns it to Target,
// cross-fading the two state poses over BlendTime seconds.
type Transition struct {
	Target     StateID
	BlendTime  float64
	Easing     Easing
	Conditions []Condition

	// RequireFinished holds the transition until the source state's input
	// reports finished.
	RequireFinished bool
	// Resets restarts the target state's input when the transition begins.
	Resets bool
}

// State is a node of the state machine automaton. Its pose comes from the
// owning graph node's input slot named StateSlot(ID).
type State struct {
	ID          StateID
	Name        string
	Transitions []*Transition
	End         bool
	Position    Vec2 // editor placement, not evaluated
}

// StateMachine is the payload of a State Machine node: the automaton plus
// its playback state.
type StateMachine struct {
	states map[StateID]*State
	start  StateID
	nextID StateID

	current StateID
	active  int // index into the current state's transitions, or -1
	elapsed float64
}

// NewStateMachine creates an empty state machine.
func NewStateMachine() *StateMachine {
	return &StateMachine{states: make(map[StateID]*State), active: -1}
}

// AddState creates a state. The first state added becomes the start state.
func (m *StateMachine) AddState(name string) *State {
	m.nextID++
	s := &State{ID: m.nextID, Name: name}
	m.states[s.ID] = s
	if m.start == 0 {
		m.start = s.ID
		m.current = s.ID
	}
	return s
}

// InsertState adds a state with a caller-chosen id, for loaders.
func (m *StateMachine) InsertState(s *State) error {
	if s.ID == 0 {
		return fmt.Errorf("insert state %q: id 0 is reserved", s.Name)
	}
	if _, dup := m.states[s.ID]; dup {
		return fmt.Errorf("insert state %q: id %d already in use", s.Name, s.ID)
	}
	m.states[s.ID] = s
	m.nextID = max(m.nextID, s.ID)
	if m.start == 0 {
		m.start = s.ID
		m.current = s.ID
	}
	return nil
}

// RemoveState deletes a state and every transition that targets it. If it
// was the start state, the remaining state with the lowest id becomes the
// start state.
func (m *StateMachine) RemoveState(id StateID) error {
	if _, ok := m.states[id]; !ok {
		return fmt.Errorf("remove state %d: %w", id, ErrUnknownState)
	}
	active, _ := m.ActiveTransition()
	delete(m.states, id)
	for _, s := range m.states {
		s.Transitions = slices.DeleteFunc(s.Transitions, func(t *Transition) bool { return t.Target == id })
	}
	if m.start == id {
		m.start = 0
		if ids := m.StateIDs(); len(ids) > 0 {
			m.start = ids[0]
		}
	}
	if m.current == id || m.current == 0 {
		m.current = m.start
		m.active = -1
	} else if active != nil {
		// the slice was compacted; follow the transition, not its old index
		m.active = slices.Index(m.states[m.current].Transitions, active)
	}
	return nil
}

// State returns the state with the given id.
func (m *StateMachine) State(id StateID) (*State, bool) {
	s, ok := m.states[id]
	return s, ok
}

// States returns every state in id order.
func (m *StateMachine) States() []*State {
	out := make([]*State, 0, len(m.states))
	for _, id := range m.StateIDs() {
		out = append(out, m.states[id])
	}
	return out
}

// StateIDs returns every state id in ascending order.
func (m *StateMachine) StateIDs() []StateID {
	return slices.Sorted(maps.Keys(m.states))
}

// Start returns the start state id, or 0 for an empty machine.
func (m *StateMachine) Start() StateID { return m.start }

// SetStart selects the state entered on reset.
func (m *StateMachine) SetStart(id StateID) error {
	if _, ok := m.states[id]; !ok {
		return fmt.Errorf("set start %d: %w", id, ErrUnknownState)
	}
	m.start = id
	return nil
}

// AddTransition appends a transition from one state to another with the
// default blend of 0.2 seconds, linear.
func (m *StateMachine) AddTransition(from, to StateID) (*Transition, error) {
	s, ok := m.states[from]
	if !ok {
		return nil, fmt.Errorf("add transition from %d: %w", from, ErrUnknownState)
	}
	if _, ok := m.states[to]; !ok {
		return nil, fmt.Errorf("add transition to %d: %w", to, ErrUnknownState)
	}
	t := &Transition{Target: to, BlendTime: 0.2, Easing: EaseLinear}
	s.Transitions = append(s.Transitions, t)
	return t, nil
}

// RemoveTransition deletes the i-th transition of a state.
func (m *StateMachine) RemoveTransition(from StateID, i int) error {
	s, ok := m.states[from]
	if !ok {
		return fmt.Errorf("remove transition from %d: %w", from, ErrUnknownState)
	}
	if i < 0 || i >= len(s.Transitions) {
		return fmt.Errorf("remove transition %d from %d: index out of range", i, from)
	}
	s.Transitions = slices.Delete(s.Transitions, i, i+1)
	if m.current == from && m.active >= 0 {
		m.active = -1
	}
	return nil
}

// Current returns the state the machine is in.
func (m *StateMachine) Current() StateID { return m.current }

// ActiveTransition returns the transition being blended, if any.
func (m *StateMachine) ActiveTransition() (*Transition, bool) {
	if m.active < 0 {
		return nil, false
	}
	s, ok := m.states[m.current]
	if !ok || m.active >= len(s.Transitions) {
		return nil, false
	}
	return s.Transitions[m.active], true
}

// Elapsed returns the time spent in the active transition.
func (m *StateMachine) Elapsed() float64 { return m.elapsed }

// progress returns the eased blend progress of the active transition.
func (m *StateMachine) progress(t *Transition) float64 {
	if t.BlendTime <= 0 {
		return 1
	}
	return t.Easing.Apply(clamp01(m.elapsed / t.BlendTime))
}
