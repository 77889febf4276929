package control

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/isabella232/moabian/internal/plant"
	"github.com/rs/zerolog"
)

// Linux joystick API event types.
const (
	jsEventButton = 0x01
	jsEventAxis   = 0x02
	jsEventInit   = 0x80
)

const jsAxisMax = 32767.0

// jsEvent mirrors struct js_event from linux/joystick.h.
type jsEvent struct {
	Time   uint32
	Value  int16
	Type   uint8
	Number uint8
}

// Joystick tilts the plate from a gamepad. Events are read on a background
// goroutine so Compute never blocks on the device.
type Joystick struct {
	dev      io.ReadCloser
	maxAngle float64
	logger   zerolog.Logger

	mu      sync.Mutex
	x, y    float64
	button  bool
	readErr error

	closeOnce sync.Once
	closed    chan struct{}
	done      chan struct{}
}

// OpenJoystick opens the configured device and starts reading it.
func OpenJoystick(opts Options) (*Joystick, error) {
	if opts.JoystickDevice == "" {
		return nil, fmt.Errorf("%w: no device path", ErrNoDevice)
	}
	dev, err := opts.openDevice(opts.JoystickDevice)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrNoDevice, opts.JoystickDevice, err)
	}
	return NewJoystick(dev, opts.JoystickMaxAngle, opts.Logger)
}

func newJoystickStrategy(opts Options) (Strategy, error) {
	return OpenJoystick(opts)
}

// NewJoystick takes ownership of dev.
func NewJoystick(dev io.ReadCloser, maxAngle float64, logger zerolog.Logger) (*Joystick, error) {
	if maxAngle <= 0 {
		dev.Close()
		return nil, fmt.Errorf("%w: joystick max angle must be positive, got %f", ErrInvalidOptions, maxAngle)
	}
	j := &Joystick{
		dev:      dev,
		maxAngle: maxAngle,
		logger:   logger.With().Str("component", "joystick").Logger(),
		closed:   make(chan struct{}),
		done:     make(chan struct{}),
	}
	go j.readLoop()
	return j, nil
}

func (j *Joystick) readLoop() {
	defer close(j.done)
	for {
		var ev jsEvent
		if err := binary.Read(j.dev, binary.LittleEndian, &ev); err != nil {
			select {
			case <-j.closed:
			default:
				j.logger.Warn().Err(err).Msg("device read failed")
				j.mu.Lock()
				j.readErr = err
				j.mu.Unlock()
			}
			return
		}
		j.apply(ev)
	}
}

func (j *Joystick) apply(ev jsEvent) {
	j.mu.Lock()
	defer j.mu.Unlock()

	switch ev.Type &^ jsEventInit {
	case jsEventAxis:
		v := float64(ev.Value) / jsAxisMax
		switch ev.Number {
		case 0:
			j.x = v
		case 1:
			j.y = v
		}
	case jsEventButton:
		if ev.Number == 0 {
			j.button = ev.Value != 0
		}
	}
}

func (j *Joystick) Compute(ctx context.Context, s plant.State) (plant.Action, plant.Info, error) {
	j.mu.Lock()
	x, y, button, err := j.x, j.y, j.button, j.readErr
	j.mu.Unlock()

	if err != nil {
		return plant.Action{}, nil, fmt.Errorf("%w: %v", ErrDeviceRead, err)
	}

	action := plant.Action{
		Pitch: -x * j.maxAngle,
		Roll:  -y * j.maxAngle,
	}.Clip(j.maxAngle)

	return action, plant.Info{"joy_x": x, "joy_y": y, "button": button}, nil
}

// Close releases the device and waits for the reader to exit.
func (j *Joystick) Close() error {
	var err error
	j.closeOnce.Do(func() {
		close(j.closed)
		err = j.dev.Close()
		<-j.done
		if errors.Is(err, io.ErrClosedPipe) {
			err = nil
		}
	})
	return err
}
