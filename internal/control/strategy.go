package control

import (
	"context"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/isabella232/moabian/internal/plant"
	"github.com/rs/zerolog"
)

// Strategy maps a plant state to an action and diagnostic info. A strategy
// is called from one goroutine at a time.
type Strategy interface {
	Compute(ctx context.Context, s plant.State) (plant.Action, plant.Info, error)
}

// Func adapts a plain function to Strategy.
type Func func(ctx context.Context, s plant.State) (plant.Action, plant.Info, error)

func (f Func) Compute(ctx context.Context, s plant.State) (plant.Action, plant.Info, error) {
	return f(ctx, s)
}

type PIDGains struct {
	Kp float64
	Ki float64
	Kd float64
}

// Options is the superset of construction parameters. Factories ignore the
// fields they do not use.
type Options struct {
	Frequency int
	MaxAngle  float64 // degrees

	PID PIDGains

	// Endpoint is the host of the inference server. Port is normally bound by
	// the registry entry.
	Endpoint   string
	Port       int
	Timeout    time.Duration
	HTTPClient *http.Client

	JoystickDevice   string
	JoystickMaxAngle float64
	// OpenDevice opens the joystick device; nil means os.Open.
	OpenDevice func(path string) (io.ReadCloser, error)

	Logger zerolog.Logger
}

func DefaultOptions() Options {
	return Options{
		Frequency:        30,
		MaxAngle:         22,
		PID:              PIDGains{Kp: 75, Ki: 0.5, Kd: 45},
		Endpoint:         "localhost",
		Timeout:          time.Second,
		JoystickDevice:   "/dev/input/js0",
		JoystickMaxAngle: 16,
		Logger:           zerolog.Nop(),
	}
}

func (o Options) openDevice(path string) (io.ReadCloser, error) {
	if o.OpenDevice != nil {
		return o.OpenDevice(path)
	}
	return os.Open(path)
}

// Close releases a strategy's resources if it holds any.
func Close(s Strategy) error {
	if c, ok := s.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
