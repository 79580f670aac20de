package armature

// TransitionEvent describes a state machine transition.
type TransitionEvent struct {
	Node      NodeID
	From, To  StateID
	BlendTime float64
}

// SolveEvent describes one IK solve.
type SolveEvent struct {
	Node       NodeID
	Iterations int
	Distance   float64 // end effector to target after solving
	Reached    bool
}

// Hooks are optional callbacks invoked during evaluation. Nil fields are
// skipped. Callbacks run synchronously on the evaluating goroutine and must
// not edit the graph.
type Hooks struct {
	OnTransitionStart  func(TransitionEvent)
	OnTransitionCommit func(TransitionEvent)
	OnSolve            func(SolveEvent)
}

// Chain returns hooks that call h first and then next.
func (h Hooks) Chain(next Hooks) Hooks {
	return Hooks{
		OnTransitionStart:  chainHook(h.OnTransitionStart, next.OnTransitionStart),
		OnTransitionCommit: chainHook(h.OnTransitionCommit, next.OnTransitionCommit),
		OnSolve:            chainHook(h.OnSolve, next.OnSolve),
	}
}

func chainHook[E any](a, b func(E)) func(E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(e E) {
		a(e)
		b(e)
	}
}
