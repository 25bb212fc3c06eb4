// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config provides configuration loading, validation and
// watching for the framesync daemon.
package config

import (
	"bytes"
	"crypto/sha1"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/kortschak/framesync/config"
	"github.com/kortschak/framesync/timing"
)

// Load reads the configuration at path, validating it against
// config.Schema and checking each animation. Files with a .yaml or .yml
// extension are decoded as YAML, all others as TOML. Load returns the
// configuration and the SHA-1 sum of its canonical JSON encoding, so
// equivalent configurations have equal sums regardless of format.
func Load(path string) (*config.Config, config.Sum, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, config.Sum{}, err
	}
	switch filepath.Ext(path) {
	case ".yaml", ".yml":
		return ParseYAML(b)
	default:
		return Parse(b)
	}
}

// Parse decodes and validates the TOML configuration in b.
func Parse(b []byte) (*config.Config, config.Sum, error) {
	var cfg config.Config
	md, err := toml.Decode(string(b), &cfg)
	if err != nil {
		return nil, config.Sum{}, err
	}
	if undec := md.Undecoded(); len(undec) != 0 {
		keys := make([]string, len(undec))
		for i, k := range undec {
			keys[i] = k.String()
		}
		return nil, config.Sum{}, fmt.Errorf("unknown configuration keys: %s", strings.Join(keys, ", "))
	}
	return check(&cfg)
}

// ParseYAML decodes and validates the YAML configuration in b.
func ParseYAML(b []byte) (*config.Config, config.Sum, error) {
	var cfg config.Config
	dec := yaml.NewDecoder(bytes.NewReader(b))
	dec.KnownFields(true)
	err := dec.Decode(&cfg)
	if err != nil && err != io.EOF {
		return nil, config.Sum{}, err
	}
	return check(&cfg)
}

func check(cfg *config.Config) (*config.Config, config.Sum, error) {
	var sum config.Sum
	_, err := Validate(config.Schema, cfg)
	if err != nil {
		return nil, sum, err
	}
	var errs []error
	for _, name := range cfg.Names() {
		err = cfg.Animations[name].Check()
		if err != nil {
			errs = append(errs, fmt.Errorf("animation.%s: %w", name, err))
		}
	}
	if err = errors.Join(errs...); err != nil {
		return nil, sum, err
	}

	h := sha1.New()
	err = json.NewEncoder(h).Encode(cfg)
	if err != nil {
		return nil, sum, err
	}
	sum = config.Sum(h.Sum(nil))
	return cfg, sum, nil
}

// Players returns the players described by cfg keyed by animation name.
// Relative animation file paths are resolved against the directory
// containing path. Animations that cannot be constructed are reported
// in the returned error and omitted from the result.
func Players(cfg *config.Config, path string) (map[string]timing.Player, error) {
	dir := filepath.Dir(path)
	players := make(map[string]timing.Player, len(cfg.Animations))
	var errs []error
	for _, name := range cfg.Names() {
		p, err := cfg.Animations[name].Player(dir)
		if err != nil {
			errs = append(errs, fmt.Errorf("animation.%s: %w", name, err))
			continue
		}
		players[name] = p
	}
	return players, errors.Join(errs...)
}
