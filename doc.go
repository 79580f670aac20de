// Package armature is the animation core of a 2D skeletal sprite animator
// built for [Ebitengine].
//
// A [Skeleton] is a tree of bones, each with a rest transform relative to its
// parent. Animations are sets of keyframe [Track]s per bone that produce
// sparse [Pose]s: per-bone [PartialTransform] overrides on top of the rest
// pose. Poses are combined by a blend [Graph] that is pulled from its Final
// Pose node once per frame, and resolved against the skeleton into world
// transforms.
//
// # Quick start
//
//	skel := armature.NewSkeleton()
//	arm, _ := skel.AddChild(skel.Root().ID)
//	_ = skel.SetRest(arm.ID, armature.NewPartialTransform(armature.Vec2{X: 40}, 0, 1))
//
//	g := armature.NewGraph()
//	clip, _ := g.AddNode(armature.NodeAnimatedPose)
//	clip.Clip.Looping = true
//	tr := clip.Clip.Animation.Track(arm.ID)
//	tr.Rotation.Set(0, 0, armature.EaseLinear)
//	tr.Rotation.Set(1, math.Pi/2, armature.EaseSwing)
//	_ = g.Connect(g.Final().ID, armature.SlotOut, clip.ID)
//
//	p := armature.NewPlayer(skel, g)
//	p.Play()
//	world := p.Update(1.0 / 60)
//
// # Transforms
//
// [PartialTransform] carries an optional translation, rotation, and scale.
// Missing fields are filled from a base with [PartialTransform.Patch] and
// from identity with [PartialTransform.Lock]. Blending interpolates only the
// fields both sides set; rotation takes the shortest arc. [Transform.Compose]
// places a child in its parent's frame: the child's translation is rotated
// and scaled by the parent.
//
// # Blend graph
//
// Nodes are created with [Graph.AddNode] and wired with [Graph.Connect],
// which rejects edges that would form a cycle. Each node kind reads fixed
// input slots ([SlotPose], [SlotPose1], [SlotPose2], [SlotInput], [SlotOut])
// except State Machine nodes, which read one slot per state ([StateSlot]).
// Blend, Multiply, and Playback Speed nodes take an [Amount], either a
// literal or an expression over graph [Properties]:
//
//	blend.Amount = armature.MustParseAmount("clamp(speed / 200, 0, 1)")
//
// Evaluation never fails. Missing inputs produce empty poses, unknown
// properties evaluate to 0, and misconfigured constraints pass their input
// through.
//
// # State machines
//
// A State Machine node plays one state at a time. Every tick it advances the
// current state's input, then either progresses the active transition or
// starts the first transition whose conditions pass. During a transition the
// node outputs a cross-fade of the two state poses shaped by the
// transition's [Easing].
//
// # Constraints
//
// Symmetry Constraint nodes mirror one bone through another. IK Constraint
// nodes bend a bone chain toward a target bone with [SolveFABRIK] and write
// the result back as local rotations.
//
// # Drawing
//
// A [Skin] maps an image onto the skeleton as a triangle mesh whose
// vertices follow weighted bones; [DrawSkin] deforms and draws it and
// [DrawBones] overlays the skeleton. [Viewer] is a ready-made ebiten.Game
// that plays any number of players under a [Camera]:
//
//	v := armature.NewViewer(640, 480)
//	v.Add(p)
//	err := armature.RunViewer(v, armature.ViewerConfig{Title: "rig"})
//
// # Observability
//
// The package never logs on its own. Install [Hooks] on a graph to observe
// transitions and IK solves, and pass [WithLogger] to a [Player] for
// playback events.
//
// [Ebitengine]: https://ebitengine.org
package armature
