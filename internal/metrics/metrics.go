// Package metrics exports playback statistics to Prometheus. A Collector
// is fed through armature.Hooks and per-frame timings.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/phanxgames/armature"
)

// Collector records state machine transitions, IK solves, and frames.
type Collector struct {
	transitions *prometheus.CounterVec
	iterations  *prometheus.HistogramVec
	unreached   *prometheus.CounterVec
	frames      prometheus.Counter
	frameTime   prometheus.Histogram
}

// New creates an unregistered collector.
func New() *Collector {
	return &Collector{
		transitions: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "armature_transitions_total",
				Help: "State machine transitions by phase (start or commit)",
			},
			[]string{"node", "from", "to", "phase"},
		),
		iterations: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "armature_ik_iterations",
				Help:    "FABRIK iterations per IK constraint solve",
				Buckets: []float64{0, 1, 2, 4, 8, 12, 16, 20},
			},
			[]string{"node"},
		),
		unreached: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "armature_ik_unreached_total",
				Help: "IK solves that ended outside tolerance",
			},
			[]string{"node"},
		),
		frames: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "armature_frames_total",
			Help: "Frames evaluated",
		}),
		frameTime: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "armature_frame_duration_seconds",
			Help:    "Wall time spent evaluating a frame",
			Buckets: prometheus.ExponentialBuckets(1e-6, 4, 10),
		}),
	}
}

// Describe implements prometheus.Collector.
func (c *Collector) Describe(ch chan<- *prometheus.Desc) {
	c.transitions.Describe(ch)
	c.iterations.Describe(ch)
	c.unreached.Describe(ch)
	c.frames.Describe(ch)
	c.frameTime.Describe(ch)
}

// Collect implements prometheus.Collector.
func (c *Collector) Collect(ch chan<- prometheus.Metric) {
	c.transitions.Collect(ch)
	c.iterations.Collect(ch)
	c.unreached.Collect(ch)
	c.frames.Collect(ch)
	c.frameTime.Collect(ch)
}

// Hooks returns evaluation callbacks that record into c. Combine them with
// other hooks through armature.Hooks.Chain.
func (c *Collector) Hooks() armature.Hooks {
	return armature.Hooks{
		OnTransitionStart: func(ev armature.TransitionEvent) {
			c.transition(ev, "start")
		},
		OnTransitionCommit: func(ev armature.TransitionEvent) {
			c.transition(ev, "commit")
		},
		OnSolve: func(ev armature.SolveEvent) {
			node := id(uint32(ev.Node))
			c.iterations.WithLabelValues(node).Observe(float64(ev.Iterations))
			if !ev.Reached {
				c.unreached.WithLabelValues(node).Inc()
			}
		},
	}
}

func (c *Collector) transition(ev armature.TransitionEvent, phase string) {
	c.transitions.WithLabelValues(
		id(uint32(ev.Node)), id(uint32(ev.From)), id(uint32(ev.To)), phase,
	).Inc()
}

// ObserveFrame records one evaluated frame and how long it took.
func (c *Collector) ObserveFrame(d time.Duration) {
	c.frames.Inc()
	c.frameTime.Observe(d.Seconds())
}

func id(v uint32) string { return strconv.FormatUint(uint64(v), 10) }
