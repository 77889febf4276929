package sim

import (
	"bytes"
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/isabella232/moabian/internal/display"
	"github.com/isabella232/moabian/internal/plant"
	"github.com/rs/zerolog"
)

func newEnv(t *testing.T, cfg Config) (*Env, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	env, err := New(cfg, display.New(&buf), zerolog.Nop())
	if err != nil {
		t.Fatalf("new env: %v", err)
	}
	return env, &buf
}

func TestNewInvalidFrequency(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Frequency = 0
	if _, err := New(cfg, nil, zerolog.Nop()); err == nil {
		t.Error("expected error for zero frequency")
	}
}

func TestResetShowsIndicator(t *testing.T) {
	env, buf := newEnv(t, DefaultConfig())

	s, err := env.Reset(context.Background(), plant.IconDot, plant.TextClassic)
	if err != nil {
		t.Fatalf("reset failed: %v", err)
	}
	if !s.Detected {
		t.Error("ball should start on the plate")
	}
	if s.BallX != DefaultConfig().InitialX {
		t.Errorf("expected initial x %.3f, got %.3f", DefaultConfig().InitialX, s.BallX)
	}
	if !strings.Contains(buf.String(), "CLASSIC") {
		t.Errorf("expected indicator output, got %q", buf.String())
	}
}

func TestStepBeforeReset(t *testing.T) {
	env, _ := newEnv(t, DefaultConfig())
	if _, err := env.Step(context.Background(), plant.Action{}); !errors.Is(err, plant.ErrNotReset) {
		t.Errorf("expected ErrNotReset, got %v", err)
	}
}

func TestStepAfterClose(t *testing.T) {
	env, _ := newEnv(t, DefaultConfig())
	if _, err := env.Reset(context.Background(), plant.IconDot, plant.TextClassic); err != nil {
		t.Fatal(err)
	}
	if err := env.Close(); err != nil {
		t.Fatalf("close failed: %v", err)
	}
	if err := env.Close(); err != nil {
		t.Errorf("second close should be harmless, got %v", err)
	}
	if _, err := env.Step(context.Background(), plant.Action{}); !errors.Is(err, plant.ErrClosed) {
		t.Errorf("expected ErrClosed, got %v", err)
	}
	if _, err := env.Reset(context.Background(), plant.IconDot, plant.TextClassic); !errors.Is(err, plant.ErrClosed) {
		t.Errorf("expected ErrClosed from reset, got %v", err)
	}
}

func TestTiltMovesBall(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Frequency = 1000
	cfg.InitialX, cfg.InitialY = 0, 0
	env, _ := newEnv(t, cfg)

	ctx := context.Background()
	if _, err := env.Reset(ctx, plant.IconDot, plant.TextClassic); err != nil {
		t.Fatal(err)
	}

	var s plant.State
	var err error
	for i := 0; i < 50; i++ {
		s, err = env.Step(ctx, plant.Action{Pitch: 5})
		if err != nil {
			t.Fatalf("step %d failed: %v", i, err)
		}
	}
	if s.BallX <= 0 || s.VelX <= 0 {
		t.Errorf("positive pitch should accelerate the ball toward +x, got x=%.5f vx=%.5f", s.BallX, s.VelX)
	}
	if s.BallY != 0 {
		t.Errorf("roll was zero, expected y=0, got %.5f", s.BallY)
	}
	if s.PlatePitch <= 0 || s.PlatePitch > 5 {
		t.Errorf("plate pitch should approach 5 degrees, got %.3f", s.PlatePitch)
	}
}

func TestPlateAnglesDirect(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Frequency = 1000
	cfg.UsePlateAngles = true
	env, _ := newEnv(t, cfg)

	ctx := context.Background()
	if _, err := env.Reset(ctx, plant.IconDot, plant.TextClassic); err != nil {
		t.Fatal(err)
	}
	s, err := env.Step(ctx, plant.Action{Pitch: 40, Roll: -3})
	if err != nil {
		t.Fatal(err)
	}
	if math.Abs(s.PlatePitch-DefaultMaxAngle) > 1e-9 {
		t.Errorf("pitch should be clipped to %.1f, got %.3f", DefaultMaxAngle, s.PlatePitch)
	}
	if math.Abs(s.PlateRoll+3) > 1e-9 {
		t.Errorf("roll should be applied directly, got %.3f", s.PlateRoll)
	}
}

func TestBallLeavesPlate(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Frequency = 1000
	cfg.UsePlateAngles = true
	env, _ := newEnv(t, cfg)

	ctx := context.Background()
	if _, err := env.Reset(ctx, plant.IconDot, plant.TextClassic); err != nil {
		t.Fatal(err)
	}

	var s plant.State
	for i := 0; i < 2000; i++ {
		var err error
		s, err = env.Step(ctx, plant.Action{Pitch: 22})
		if err != nil {
			t.Fatal(err)
		}
		if !s.Detected {
			break
		}
	}
	if s.Detected {
		t.Fatal("ball should roll off a fully tilted plate")
	}
	if r := math.Hypot(s.BallX, s.BallY); r > 0.1125+1e-9 {
		t.Errorf("ball should be held at the rim, got r=%.4f", r)
	}
}

func TestStepHonoursFrequency(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Frequency = 50
	env, _ := newEnv(t, cfg)

	if _, err := env.Reset(context.Background(), plant.IconDot, plant.TextClassic); err != nil {
		t.Fatal(err)
	}

	window := 300 * time.Millisecond
	ctx, cancel := context.WithTimeout(context.Background(), window)
	defer cancel()

	ticks := 0
	for {
		if _, err := env.Step(ctx, plant.Action{}); err != nil {
			break
		}
		ticks++
	}

	limit := int(float64(cfg.Frequency)*window.Seconds()) + 2
	if ticks > limit {
		t.Errorf("expected at most %d ticks in %v, got %d", limit, window, ticks)
	}
	if ticks == 0 {
		t.Error("expected some ticks to complete")
	}
}

func TestOpenerDefersConstruction(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Frequency = -1
	open := Opener(cfg, nil, zerolog.Nop())
	if _, err := open(); err == nil {
		t.Error("expected construction error from opener")
	}
}

func TestPacingPastDeadlineIsDeadline(t *testing.T) {
	env, _ := newEnv(t, DefaultConfig())
	if _, err := env.Reset(context.Background(), plant.IconDot, plant.TextClassic); err != nil {
		t.Fatal(err)
	}

	// The first token is free; the second is a full tick away.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Millisecond)
	defer cancel()
	if _, err := env.Step(ctx, plant.Action{}); err != nil {
		t.Fatalf("first step failed: %v", err)
	}
	_, err := env.Step(ctx, plant.Action{})
	if !errors.Is(err, plant.ErrPacingDeadline) {
		t.Errorf("expected plant.ErrPacingDeadline, got %v", err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		t.Error("pacing refusal should not look like a strategy timeout")
	}
}

func TestUnpacedRunsFast(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Unpaced = true
	env, _ := newEnv(t, cfg)
	if _, err := env.Reset(context.Background(), plant.IconDot, plant.TextClassic); err != nil {
		t.Fatal(err)
	}

	start := time.Now()
	for i := 0; i < 300; i++ {
		if _, err := env.Step(context.Background(), plant.Action{}); err != nil {
			t.Fatal(err)
		}
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("300 unpaced steps took %v", elapsed)
	}
}

func TestPhysicsParams(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Params = map[string]float64{"radius": 0.04}
	env, _ := newEnv(t, cfg)

	s, err := env.Reset(context.Background(), plant.IconDot, plant.TextClassic)
	if err != nil {
		t.Fatal(err)
	}
	if s.Detected {
		t.Error("ball starting outside the smaller plate should not be detected")
	}

	cfg.Params = map[string]float64{"mass": 1}
	if _, err := New(cfg, nil, zerolog.Nop()); err == nil {
		t.Error("expected error for unknown physics param")
	}
}
