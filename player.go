package armature

import (
	"log/slog"
)

// Player drives a Graph against a Skeleton once per frame.
//
//	p := armature.NewPlayer(skel, graph)
//	p.Play()
//	for {
//		world := p.Update(dt)
//		// draw world ...
//	}
type Player struct {
	skel    *Skeleton
	graph   *Graph
	origin  Transform
	playing bool
	log     *slog.Logger

	pose  Pose
	world map[BoneID]Transform

	preview      NodeID
	previewWorld map[BoneID]Transform
}

// PlayerOption configures a Player.
type PlayerOption func(*Player)

// WithLogger makes the player log playback events at debug level.
func WithLogger(l *slog.Logger) PlayerOption {
	return func(p *Player) {
		if l != nil {
			p.log = l
		}
	}
}

// WithOrigin places the skeleton root in the given frame instead of identity.
func WithOrigin(t Transform) PlayerOption {
	return func(p *Player) { p.origin = t }
}

// NewPlayer returns a stopped player.
func NewPlayer(skel *Skeleton, g *Graph, opts ...PlayerOption) *Player {
	p := &Player{
		skel:   skel,
		graph:  g,
		origin: IdentityTransform,
		log:    slog.New(slog.DiscardHandler),
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Skeleton returns the skeleton being animated.
func (p *Player) Skeleton() *Skeleton { return p.skel }

// Graph returns the blend graph being played.
func (p *Player) Graph() *Graph { return p.graph }

// Play resumes ticking on Update.
func (p *Player) Play() {
	if !p.playing {
		p.playing = true
		p.log.Debug("playback started")
	}
}

// Stop pauses ticking. Update still evaluates the current pose.
func (p *Player) Stop() {
	if p.playing {
		p.playing = false
		p.log.Debug("playback stopped")
	}
}

// Playing reports whether Update advances time.
func (p *Player) Playing() bool { return p.playing }

// Reset rewinds every clip and state machine in the graph.
func (p *Player) Reset() {
	p.graph.Reset()
	p.log.Debug("playback reset")
}

// SetOrigin moves the frame the skeleton root is resolved in.
func (p *Player) SetOrigin(t Transform) { p.origin = t }

// SetPreview makes Update also evaluate node id, in the same frame and
// before property resets, so PreviewWorld sees the values the Final node
// saw. 0 turns previewing off.
func (p *Player) SetPreview(id NodeID) {
	p.preview = id
	p.previewWorld = nil
}

// PreviewWorld returns the world transforms of the preview node computed by
// the last Update, or nil when no preview node is set.
func (p *Player) PreviewWorld() map[BoneID]Transform { return p.previewWorld }

// Update runs one frame: tick the graph by dt when playing, stop once the
// graph reports finished, evaluate the pose, apply property resets, and
// resolve world transforms. The returned map is owned by the player and is
// valid until the next call.
func (p *Player) Update(dt float64) map[BoneID]Transform {
	if p.playing {
		p.graph.Tick(dt)
		if p.graph.Finished() {
			p.playing = false
			p.log.Debug("playback finished")
		}
	}
	p.pose = p.graph.Pose(p.skel)
	if p.preview != 0 {
		p.previewWorld = p.graph.NodePose(p.preview, p.skel).ResolveFrom(p.skel, p.origin)
	}
	p.graph.props.ApplyResets()
	p.world = p.pose.ResolveFrom(p.skel, p.origin)
	return p.world
}

// Pose returns the pose computed by the last Update.
func (p *Player) Pose() Pose { return p.pose }

// World returns the world transforms computed by the last Update.
func (p *Player) World() map[BoneID]Transform { return p.world }
