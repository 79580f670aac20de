// Package ecs runs armature players inside a [Donburi] world.
//
// [NewAnimator] attaches a player to a new entity as an [Animator]
// component and forwards its state machine transitions to
// [TransitionEventType]. Call [Update] once per tick to advance every
// animator and deliver the queued events.
//
// Usage:
//
//	world := donburi.NewWorld()
//	e := ecs.NewAnimator(world, rig.NewPlayer())
//	ecs.TransitionEventType.Subscribe(world, onTransition)
//	ecs.Update(world, 1.0/60)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
