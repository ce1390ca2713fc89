package experiment

import (
	"fmt"
	"sort"

	"github.com/san-kum/kartsim/internal/config"
	"github.com/san-kum/kartsim/internal/dynamo"
)

// Registry maps scenario names to configuration builders. It starts with
// every config preset plus the scripted test drives.
type Registry struct {
	scenarios map[string]func() *config.Config
}

func NewRegistry() *Registry {
	r := &Registry{scenarios: make(map[string]func() *config.Config)}

	for name, fn := range config.Presets {
		r.scenarios[name] = fn
	}
	r.scenarios["brake_test"] = func() *config.Config {
		cfg := config.DefaultConfig()
		cfg.Inputs.Source = "script"
		cfg.Inputs.Script = "brake-test"
		return cfg
	}
	r.scenarios["ramp"] = func() *config.Config {
		cfg := config.DefaultConfig()
		cfg.Inputs.Source = "script"
		cfg.Inputs.Script = "ramp"
		return cfg
	}
	r.scenarios["coast"] = func() *config.Config {
		cfg := config.DefaultConfig()
		cfg.Inputs.Source = "none"
		return cfg
	}

	return r
}

func (r *Registry) Register(name string, fn func() *config.Config) {
	r.scenarios[name] = fn
}

// Config returns a fresh copy of the scenario's configuration.
func (r *Registry) Config(name string) (*config.Config, error) {
	fn, ok := r.scenarios[name]
	if !ok {
		return nil, fmt.Errorf("%w: scenario %q", dynamo.ErrUnknownComponent, name)
	}
	return fn(), nil
}

// Get builds the named scenario, applying overrides in order.
func (r *Registry) Get(name string, overrides ...func(*config.Config)) (*Experiment, error) {
	cfg, err := r.Config(name)
	if err != nil {
		return nil, err
	}
	for _, o := range overrides {
		o(cfg)
	}
	return New(name, cfg)
}

func (r *Registry) List() []string {
	names := make([]string, 0, len(r.scenarios))
	for name := range r.scenarios {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
