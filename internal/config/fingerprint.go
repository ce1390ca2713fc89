package config

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/kartsim/internal/control"
	"github.com/san-kum/kartsim/internal/physics"
)

// Fingerprint identifies everything that shapes a trajectory: vehicle, tuning,
// sim settings and inputs. Display and log settings are left out, so two runs
// with equal fingerprints are expected to produce identical states.
func (c *Config) Fingerprint() string {
	doc := struct {
		Vehicle VehicleConfig  `yaml:"vehicle"`
		Tuning  physics.Tuning `yaml:"tuning"`
		Sim     SimConfig      `yaml:"sim"`
		Inputs  control.Spec   `yaml:"inputs"`
	}{c.Vehicle, c.Tuning, c.Sim, c.Inputs}

	data, err := yaml.Marshal(doc)
	if err != nil {
		return ""
	}
	return fmt.Sprintf("%016x", xxhash.Sum64(data))
}
