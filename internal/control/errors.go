package control

import "errors"

var (
	// ErrUnknownController is returned for an identifier outside the registry.
	ErrUnknownController = errors.New("control: unknown controller")

	// ErrInvalidOptions is returned when a factory cannot use its options.
	ErrInvalidOptions = errors.New("control: invalid options")

	// ErrInference wraps every failure talking to the inference server.
	ErrInference = errors.New("control: inference request failed")

	// ErrNoDevice is returned when the joystick device cannot be opened.
	ErrNoDevice = errors.New("control: joystick device not available")

	// ErrDeviceRead is returned after the joystick stops delivering events.
	ErrDeviceRead = errors.New("control: joystick read failed")
)
