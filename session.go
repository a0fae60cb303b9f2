package prismscene

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"sync/atomic"
	"time"

	"github.com/soypat/geometry/ms3"
)

// ErrClosed is returned by a [FrameSource] that will deliver no more frames.
var ErrClosed = errors.New("frame source closed")

// RenderTarget draws a scene. Render and SetSize are called from the goroutine running the session.
type RenderTarget interface {
	Render(sc *Scene, cam *Camera) error
	SetSize(width, height int)
}

// FrameSource is the host's per-frame scheduling primitive. NextFrame blocks
// until the next display refresh and returns its wall-clock time. Hosts
// dispatch pending input to the session from within NextFrame.
type FrameSource interface {
	NextFrame(ctx context.Context) (time.Time, error)
}

// Session owns the scene, camera and pointer state. All methods other than
// Stop must be called from a single goroutine.
type Session struct {
	Scene  *Scene
	Camera *Camera

	target  RenderTarget
	rng     *rand.Rand
	log     *slog.Logger
	pointer pointerState
	label   *LabelTask
	frames  uint64
	stopped atomic.Bool
	// cancel ends background work started by the session. Set once at construction.
	cancel context.CancelFunc
}

// NewSession builds the scene described by cfg, sizes target to the
// configured window and starts loading the label. The context bounds the label load.
func NewSession(ctx context.Context, cfg Config, target RenderTarget) (*Session, error) {
	if target == nil {
		return nil, errors.New("nil render target")
	}
	err := cfg.Validate()
	if err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	seed := cfg.Seed
	if seed == 0 {
		seed = rand.Uint64()
	}
	rng := rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
	scene, err := Build(rng)
	if err != nil {
		return nil, err
	}
	cam := NewPerspectiveCamera(cfg.FOV, float32(cfg.Width)/float32(cfg.Height), cfg.Near, cfg.Far)
	cam.Position = cfg.CameraPosition()
	cam.LookAt(ms3.Vec{})
	ctx, cancel := context.WithCancel(ctx)
	s := &Session{
		Scene:  scene,
		Camera: cam,
		target: target,
		rng:    rng,
		log:    cfg.logger(),
		cancel: cancel,
	}
	target.SetSize(cfg.Width, cfg.Height)
	if cfg.Label.Text != "" {
		s.label = LoadLabel(ctx, FontSourceFor(cfg.Label.Font), cfg.Label)
	}
	s.log.Debug("session built", slog.Uint64("seed", seed), slog.Int("satellites", len(scene.Satellites)))
	return s, nil
}

// Build creates the primary at the origin and [SatelliteCount] satellites at
// uniformly random positions inside a cube of side [SatelliteSpread] centered at the origin.
func Build(rng *rand.Rand) (*Scene, error) {
	primaryMesh, err := NewCone(1, 2, 3)
	if err != nil {
		return nil, err
	}
	satMesh, err := NewCone(0.2, 0.4, 3)
	if err != nil {
		return nil, err
	}
	sc := &Scene{
		Primary: Object{
			Mesh:  primaryMesh,
			Color: ColorFromHex(0x00ff00),
		},
		Satellites: make([]Object, SatelliteCount),
	}
	const half = SatelliteSpread / 2
	for i := range sc.Satellites {
		sc.Satellites[i] = Object{
			Mesh:  satMesh,
			Color: randomColor(rng),
			Position: ms3.Vec{
				X: rng.Float32()*SatelliteSpread - half,
				Y: rng.Float32()*SatelliteSpread - half,
				Z: rng.Float32()*SatelliteSpread - half,
			},
		}
	}
	return sc, nil
}

// Frame advances the scene to the display refresh at now. It does not render.
func (s *Session) Frame(now time.Time) {
	s.pollLabel()
	p := &s.Scene.Primary
	p.Rotation.X = wrapAngle(p.Rotation.X + RotationStep)
	p.Rotation.Y = wrapAngle(p.Rotation.Y + RotationStep)
	for i := range s.Scene.Satellites {
		sat := &s.Scene.Satellites[i]
		sat.Position = ms3.Add(sat.Position, s.jitter())
		sat.Rotation = ms3.Add(sat.Rotation, s.jitter())
		sat.Color = randomColor(s.rng)
	}
	p.Color = PrimaryColorAt(now)
	s.frames++
}

// Frames returns the number of frames advanced so far.
func (s *Session) Frames() uint64 { return s.frames }

// Run advances and renders a frame for every refresh delivered by frames
// until ctx is done, [Session.Stop] is called or frames returns [ErrClosed].
func (s *Session) Run(ctx context.Context, frames FrameSource) error {
	defer s.cancel()
	for !s.stopped.Load() {
		now, err := frames.NextFrame(ctx)
		if errors.Is(err, ErrClosed) {
			s.log.Debug("frame source closed", slog.Uint64("frames", s.frames))
			return nil
		} else if err != nil {
			return err
		}
		if s.stopped.Load() {
			// Input dispatched by NextFrame may have stopped the session.
			break
		}
		s.Frame(now)
		err = s.target.Render(s.Scene, s.Camera)
		if err != nil {
			return fmt.Errorf("rendering frame %d: %w", s.frames, err)
		}
	}
	s.log.Debug("session stopped", slog.Uint64("frames", s.frames))
	return nil
}

// Stop makes Run return after the current frame. It is safe to call from any goroutine.
func (s *Session) Stop() {
	s.stopped.Store(true)
	s.cancel()
}

// Stopped reports whether Stop was called.
func (s *Session) Stopped() bool { return s.stopped.Load() }

func (s *Session) pollLabel() {
	if s.label == nil {
		return
	}
	label, done, err := s.label.Poll()
	if !done {
		return
	}
	s.label = nil
	if err != nil {
		s.log.Warn("label unavailable", slog.String("err", err.Error()))
		return
	}
	s.Scene.Label = label
	s.log.Debug("label loaded", slog.String("text", label.Text))
}

// jitter returns a vector with components uniform in [-JitterAmount/2, JitterAmount/2).
func (s *Session) jitter() ms3.Vec {
	const half = JitterAmount / 2
	return ms3.Vec{
		X: s.rng.Float32()*JitterAmount - half,
		Y: s.rng.Float32()*JitterAmount - half,
		Z: s.rng.Float32()*JitterAmount - half,
	}
}
