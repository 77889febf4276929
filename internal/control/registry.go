package control

import (
	"fmt"
	"sort"
	"strings"

	"github.com/isabella232/moabian/internal/plant"
)

// Factory builds a Strategy from options.
type Factory func(opts Options) (Strategy, error)

// Spec describes one selectable controller: its identifier, what the plate
// display shows while it runs, and how to build it.
type Spec struct {
	Name string
	Icon plant.Icon
	Text plant.Text
	// Port binds the inference port; zero leaves Options.Port alone.
	Port    int
	factory Factory
}

// New builds the strategy with the spec's port bound into opts.
func (s Spec) New(opts Options) (Strategy, error) {
	if s.Port != 0 {
		opts.Port = s.Port
	}
	strategy, err := s.factory(opts)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", s.Name, err)
	}
	return strategy, nil
}

var registry = newRegistry()

func newRegistry() map[string]Spec {
	specs := []Spec{
		{Name: "pid", Icon: plant.IconDot, Text: plant.TextClassic, factory: newPIDStrategy},
		{Name: "brain", Icon: plant.IconDot, Text: plant.TextBrain, Port: 5000, factory: newInferenceStrategy},
		{Name: "custom1", Icon: plant.IconDot, Text: plant.TextCustom1, Port: 5001, factory: newInferenceStrategy},
		{Name: "custom2", Icon: plant.IconDot, Text: plant.TextCustom2, Port: 5002, factory: newInferenceStrategy},
		{Name: "joystick", Icon: plant.IconDot, Text: plant.TextManual, factory: newJoystickStrategy},
		{Name: "zero", Icon: plant.IconX, Text: plant.TextBlank, factory: func(Options) (Strategy, error) { return NewNull(), nil }},
	}
	m := make(map[string]Spec, len(specs))
	for _, s := range specs {
		m[s.Name] = s
	}
	return m
}

// Lookup returns the spec for name.
func Lookup(name string) (Spec, error) {
	s, ok := registry[name]
	if !ok {
		return Spec{}, fmt.Errorf("%w: %q (valid: %s)", ErrUnknownController, name, strings.Join(Names(), ", "))
	}
	return s, nil
}

// New looks up name and builds its strategy.
func New(name string, opts Options) (Strategy, Spec, error) {
	spec, err := Lookup(name)
	if err != nil {
		return nil, Spec{}, err
	}
	s, err := spec.New(opts)
	if err != nil {
		return nil, Spec{}, err
	}
	return s, spec, nil
}

func Names() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Specs returns every registered spec ordered by name.
func Specs() []Spec {
	names := Names()
	specs := make([]Spec, len(names))
	for i, name := range names {
		specs[i] = registry[name]
	}
	return specs
}
