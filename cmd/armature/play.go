package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	"github.com/phanxgames/armature"
	"github.com/phanxgames/armature/internal/metrics"
	"github.com/phanxgames/armature/project"
)

type playOptions struct {
	Duration    time.Duration
	FPS         float64
	Sets        []string
	MetricsAddr string
	Realtime    bool
}

var playOpts playOptions

var playCmd = &cobra.Command{
	Use:   "play FILE",
	Short: "Run a rig headless in real time",
	Long: `Plays the rig at a fixed frame rate, logging state machine transitions and IK
solves, and optionally serving Prometheus metrics on --metrics-addr.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return runPlay(ctx, args[0], playOpts)
	},
}

func init() {
	rootCmd.AddCommand(playCmd)
	f := playCmd.Flags()
	f.DurationVar(&playOpts.Duration, "duration", 5*time.Second, "How long to play (0 plays until interrupted or finished)")
	f.Float64Var(&playOpts.FPS, "fps", 60, "Frames per second")
	f.StringArrayVar(&playOpts.Sets, "set", nil, "Property override name=value (repeatable)")
	f.StringVar(&playOpts.MetricsAddr, "metrics-addr", "", "Serve Prometheus metrics on this address, e.g. :2112")
	f.BoolVar(&playOpts.Realtime, "realtime", true, "Pace frames with the wall clock")
}

// logHooks reports evaluation events through logger.
func logHooks() armature.Hooks {
	return armature.Hooks{
		OnTransitionStart: func(ev armature.TransitionEvent) {
			logger.Info("transition started", "node", ev.Node, "from", ev.From, "to", ev.To, "blend", ev.BlendTime)
		},
		OnTransitionCommit: func(ev armature.TransitionEvent) {
			logger.Info("transition committed", "node", ev.Node, "state", ev.To)
		},
		OnSolve: func(ev armature.SolveEvent) {
			logger.Debug("ik solved", "node", ev.Node, "iterations", ev.Iterations, "distance", ev.Distance, "reached", ev.Reached)
		},
	}
}

func runPlay(ctx context.Context, path string, opts playOptions) error {
	if opts.FPS <= 0 {
		return fmt.Errorf("--fps must be positive, got %v", opts.FPS)
	}
	r, err := loadRig(path, opts.Sets)
	if err != nil {
		return err
	}

	collector := metrics.New()
	r.Graph.SetHooks(logHooks().Chain(collector.Hooks()))

	if opts.MetricsAddr != "" {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collector)
		srv, err := serveMetrics(opts.MetricsAddr, reg)
		if err != nil {
			return err
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn("metrics server shutdown", "error", err)
			}
		}()
	}

	frames, err := playLoop(ctx, r, collector, opts)
	logger.Info("playback ended", "frames", frames)
	return err
}

func serveMetrics(addr string, reg *prometheus.Registry) (*http.Server, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("metrics listener: %w", err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg}))
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
	go func() {
		logger.Info("serving metrics", "addr", ln.Addr().String())
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics server", "error", err)
		}
	}()
	return srv, nil
}

// playLoop updates the player once per frame until the duration elapses,
// the graph finishes, or ctx is done. It returns the number of frames.
func playLoop(ctx context.Context, r *project.Rig, collector *metrics.Collector, opts playOptions) (int, error) {
	p := r.NewPlayer(armature.WithLogger(logger))
	p.Play()
	dt := 1 / opts.FPS
	frameDur := time.Duration(float64(time.Second) / opts.FPS)
	total := 0
	if opts.Duration > 0 {
		total = int(opts.Duration.Seconds() * opts.FPS)
	}

	var tick <-chan time.Time
	if opts.Realtime {
		t := time.NewTicker(frameDur)
		defer t.Stop()
		tick = t.C
	}

	for frame := 0; total == 0 || frame < total; frame++ {
		if tick != nil {
			select {
			case <-ctx.Done():
				return frame, nil
			case <-tick:
			}
		} else if err := ctx.Err(); err != nil {
			return frame, nil
		}
		start := time.Now()
		p.Update(dt)
		collector.ObserveFrame(time.Since(start))
		if !p.Playing() {
			logger.Info("graph finished", "time", float64(frame+1)*dt)
			return frame + 1, nil
		}
	}
	return total, nil
}
