package integrators

import (
	"fmt"
	"sort"

	"github.com/san-kum/kartsim/internal/dynamo"
)

var registry = map[string]func() dynamo.Integrator{
	"semi-implicit": func() dynamo.Integrator { return NewSemiImplicitEuler() },
	"euler":         func() dynamo.Integrator { return NewEuler() },
}

// New returns the integrator registered under name. An empty name selects
// the semi-implicit scheme.
func New(name string) (dynamo.Integrator, error) {
	if name == "" {
		name = "semi-implicit"
	}
	fn, ok := registry[name]
	if !ok {
		return nil, fmt.Errorf("%w: integrator %q", dynamo.ErrUnknownComponent, name)
	}
	return fn(), nil
}

func List() []string {
	names := make([]string, 0, len(registry))
	for name := range registry {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
