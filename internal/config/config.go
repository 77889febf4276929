package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/isabella232/moabian/internal/physics"
	"gopkg.in/yaml.v3"
)

const (
	DefaultController       = "pid"
	DefaultFrequency        = 30
	DefaultLogFile          = "/tmp/log.csv"
	DefaultLogLevel         = "info"
	DefaultMaxAngle         = 22.0
	DefaultInitialX         = 0.05
	DefaultInitialY         = -0.03
	DefaultKp               = 75.0
	DefaultKi               = 0.5
	DefaultKd               = 45.0
	DefaultEndpoint         = "localhost"
	DefaultTimeout          = time.Second
	DefaultJoystickDevice   = "/dev/input/js0"
	DefaultJoystickMaxAngle = 16.0
	DefaultLogBuffer        = 256
)

var ErrInvalid = errors.New("config: invalid")

type Config struct {
	Controller     string `yaml:"controller"`
	Frequency      int    `yaml:"frequency"`
	Debug          bool   `yaml:"debug"`
	EnableLogging  bool   `yaml:"enable_logging"`
	LogFile        string `yaml:"logfile"`
	LogBuffer      int    `yaml:"log_buffer"`
	LogBlocking    bool   `yaml:"log_blocking"`
	UsePlateAngles bool   `yaml:"use_plate_angles"`
	Ticks          int    `yaml:"ticks"`
	LogLevel       string `yaml:"log_level"`
	MetricsAddr    string `yaml:"metrics_addr"`

	Plate     PlateConfig     `yaml:"plate"`
	PID       PIDConfig       `yaml:"pid"`
	Inference InferenceConfig `yaml:"inference"`
	Joystick  JoystickConfig  `yaml:"joystick"`

	// Physics overrides simulated plate parameters (gravity, damping,
	// servo_tau, radius).
	Physics map[string]float64 `yaml:"physics,omitempty"`
}

type PlateConfig struct {
	MaxAngle float64 `yaml:"max_angle"`
	InitialX float64 `yaml:"initial_x"`
	InitialY float64 `yaml:"initial_y"`
}

type PIDConfig struct {
	Kp float64 `yaml:"kp"`
	Ki float64 `yaml:"ki"`
	Kd float64 `yaml:"kd"`
}

type InferenceConfig struct {
	Endpoint string        `yaml:"endpoint"`
	Timeout  time.Duration `yaml:"timeout"`
}

type JoystickConfig struct {
	Device   string  `yaml:"device"`
	MaxAngle float64 `yaml:"max_angle"`
}

func DefaultConfig() *Config {
	return &Config{
		Controller: DefaultController,
		Frequency:  DefaultFrequency,
		LogFile:    DefaultLogFile,
		LogBuffer:  DefaultLogBuffer,
		LogLevel:   DefaultLogLevel,
		Plate: PlateConfig{
			MaxAngle: DefaultMaxAngle,
			InitialX: DefaultInitialX,
			InitialY: DefaultInitialY,
		},
		PID: PIDConfig{
			Kp: DefaultKp,
			Ki: DefaultKi,
			Kd: DefaultKd,
		},
		Inference: InferenceConfig{
			Endpoint: DefaultEndpoint,
			Timeout:  DefaultTimeout,
		},
		Joystick: JoystickConfig{
			Device:   DefaultJoystickDevice,
			MaxAngle: DefaultJoystickMaxAngle,
		},
	}
}

// Load reads a YAML file over the defaults; keys missing from the file keep
// their default values.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: %s: %w", path, err)
	}
	return cfg, nil
}

func Save(path string, cfg *Config) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// Validate checks values that can be judged without touching the plant or
// the network. Controller names are checked by the registry.
func (c *Config) Validate() error {
	var errs []error
	check := func(ok bool, format string, args ...any) {
		if !ok {
			errs = append(errs, fmt.Errorf("%w: "+format, append([]any{ErrInvalid}, args...)...))
		}
	}

	check(c.Controller != "", "controller is required")
	check(c.Frequency > 0, "frequency must be a positive integer, got %d", c.Frequency)
	check(c.Ticks >= 0, "ticks must not be negative, got %d", c.Ticks)
	check(!c.EnableLogging || c.LogFile != "", "logfile is required when logging is enabled")
	check(c.Plate.MaxAngle > 0, "plate.max_angle must be positive, got %g", c.Plate.MaxAngle)
	check(c.PID.Kp >= 0 && c.PID.Ki >= 0 && c.PID.Kd >= 0, "pid gains must not be negative")
	check(c.Inference.Timeout > 0, "inference.timeout must be positive, got %s", c.Inference.Timeout)
	check(c.Joystick.MaxAngle > 0, "joystick.max_angle must be positive, got %g", c.Joystick.MaxAngle)
	if _, err := physics.Configure(c.Physics); err != nil {
		errs = append(errs, fmt.Errorf("%w: %w", ErrInvalid, err))
	}

	return errors.Join(errs...)
}
