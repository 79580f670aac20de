package ecs

import (
	"github.com/phanxgames/armature"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// Animator is the component holding an entity's player.
type Animator struct {
	Player *armature.Player
}

// AnimatorComponent is the Donburi component type for [Animator].
var AnimatorComponent = donburi.NewComponentType[Animator]()

// TransitionPhase tells whether a transition began or completed.
type TransitionPhase int

const (
	TransitionStarted TransitionPhase = iota
	TransitionCommitted
)

func (p TransitionPhase) String() string {
	if p == TransitionCommitted {
		return "committed"
	}
	return "started"
}

// TransitionEvent is a state machine transition of an animator entity.
type TransitionEvent struct {
	Entity donburi.Entity
	Phase  TransitionPhase
	armature.TransitionEvent
}

// TransitionEventType is the Donburi event type for animator transitions.
// Events are queued during [Update] and delivered at its end.
var TransitionEventType = events.NewEventType[TransitionEvent]()

// NewAnimator creates an entity animated by p. Hooks already installed on
// p's graph keep running; transition events are published after them.
func NewAnimator(world donburi.World, p *armature.Player) donburi.Entity {
	entity := world.Create(AnimatorComponent)
	AnimatorComponent.SetValue(world.Entry(entity), Animator{Player: p})
	g := p.Graph()
	g.SetHooks(g.Hooks().Chain(publishHooks(world, entity)))
	return entity
}

func publishHooks(world donburi.World, entity donburi.Entity) armature.Hooks {
	publish := func(phase TransitionPhase) func(armature.TransitionEvent) {
		return func(ev armature.TransitionEvent) {
			TransitionEventType.Publish(world, TransitionEvent{Entity: entity, Phase: phase, TransitionEvent: ev})
		}
	}
	return armature.Hooks{
		OnTransitionStart:  publish(TransitionStarted),
		OnTransitionCommit: publish(TransitionCommitted),
	}
}

// Update advances every animator by dt seconds, then delivers the
// transition events raised while doing so.
func Update(world donburi.World, dt float64) {
	AnimatorComponent.Each(world, func(e *donburi.Entry) {
		if a := AnimatorComponent.Get(e); a.Player != nil {
			a.Player.Update(dt)
		}
	})
	TransitionEventType.ProcessEvents(world)
}

// World returns the world transforms computed for entity by the last
// Update, or nil when entity has no animator.
func World(world donburi.World, entity donburi.Entity) map[armature.BoneID]armature.Transform {
	if !world.Valid(entity) {
		return nil
	}
	e := world.Entry(entity)
	if !e.HasComponent(AnimatorComponent) {
		return nil
	}
	if a := AnimatorComponent.Get(e); a.Player != nil {
		return a.Player.World()
	}
	return nil
}
