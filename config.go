// SPDX-FileCopyrightText: 2026 The Pion community <https://pion.ly>
// SPDX-License-Identifier: MIT

package abrcc

import (
	"errors"
	"fmt"
	"io"

	"github.com/pion/abrcc/pkg/abr"
	"gopkg.in/yaml.v3"
)

var errUnknownAlgorithm = errors.New("unknown algorithm")

// Config selects the strategy of an Engine and tunes every strategy.
type Config struct {
	Algorithm   abr.Kind              `yaml:"algorithm"`
	BufferBased abr.BufferBasedConfig `yaml:"buffer_based"`
	Worthed     abr.WorthedConfig     `yaml:"worthed"`
	Target      abr.TargetConfig      `yaml:"target"`
	State       abr.StateConfig       `yaml:"state"`
}

// DefaultConfig returns the buffer based strategy with default settings.
func DefaultConfig() Config {
	return Config{
		Algorithm:   abr.KindBufferBased,
		BufferBased: abr.DefaultBufferBasedConfig(),
		Worthed:     abr.DefaultWorthedConfig(),
		Target:      abr.DefaultTargetConfig(),
		State:       abr.DefaultStateConfig(),
	}
}

// LoadConfig decodes a YAML document over the defaults. Unknown keys are
// rejected.
func LoadConfig(r io.Reader) (Config, error) {
	config := DefaultConfig()

	decoder := yaml.NewDecoder(r)
	decoder.KnownFields(true)
	if err := decoder.Decode(&config); err != nil && !errors.Is(err, io.EOF) {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}

	return config, config.Validate()
}

// Validate reports every invalid setting.
func (c Config) Validate() error {
	var errs []error
	known := false
	for _, kind := range abr.Kinds() {
		known = known || kind == c.Algorithm
	}
	if !known {
		errs = append(errs, fmt.Errorf("%w: %q", errUnknownAlgorithm, c.Algorithm))
	}
	if err := c.BufferBased.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("buffer_based: %w", err))
	}
	if err := c.Worthed.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("worthed: %w", err))
	}
	if err := c.Target.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("target: %w", err))
	}
	if err := c.State.Validate(); err != nil {
		errs = append(errs, fmt.Errorf("state: %w", err))
	}

	return flattenErrs(errs)
}
