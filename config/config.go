// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package config provides framesync configuration types and schemas.
package config

import (
	"crypto/sha1"
	"encoding/hex"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/kortschak/framesync/internal/animation"
	"github.com/kortschak/framesync/timing"
)

// Config is a complete configuration.
type Config struct {
	// Network is the network the frame server listens on,
	// "unix" or "tcp".
	Network string `json:"network,omitempty" toml:"network" yaml:"network"`
	// Addr is the listen address. For unix networks it
	// is the socket path.
	Addr      string      `json:"addr,omitempty" toml:"addr" yaml:"addr"`
	LogLevel  *slog.Level `json:"log_level,omitempty" toml:"log_level" yaml:"log_level"`
	AddSource *bool       `json:"log_add_source,omitempty" toml:"log_add_source" yaml:"log_add_source"`

	// Animations is the set of served animations keyed by name.
	Animations map[string]*Animation `json:"animation,omitempty" toml:"animation" yaml:"animation"`
}

// Animation is the configuration of a single animation. Exactly one of
// File, Delays or Frames must be set.
type Animation struct {
	// File is the path to a GIF file. Relative paths are
	// resolved against the configuration's directory.
	File string `json:"file,omitempty" toml:"file" yaml:"file"`
	// Delays is the list of per-frame display durations.
	Delays []Duration `json:"delays,omitempty" toml:"delays" yaml:"delays"`
	// Frames and Duration describe a constant frame rate
	// animation of Frames frames over Duration.
	Frames   int       `json:"frames,omitempty" toml:"frames" yaml:"frames"`
	Duration *Duration `json:"duration,omitempty" toml:"duration" yaml:"duration"`

	// Start is the anchor of the animation's first loop.
	// If it is nil, the Unix epoch is used so that
	// independent hosts agree on the frame to display.
	Start *time.Time `json:"start,omitempty" toml:"start" yaml:"start"`
	// Loops is the number of loops to play. If Loops is
	// zero, the loop count of the source is used; GIF files
	// carry their own loop count, other sources loop forever.
	Loops int `json:"loops,omitempty" toml:"loops" yaml:"loops"`
	// Paused suspends frame change scheduling.
	Paused bool `json:"paused,omitempty" toml:"paused" yaml:"paused"`
}

// Check returns an error if the animation does not have exactly one frame
// source.
func (a *Animation) Check() error {
	var sources []string
	if a.File != "" {
		sources = append(sources, "file")
	}
	if a.Delays != nil {
		sources = append(sources, "delays")
	}
	if a.Frames != 0 || a.Duration != nil {
		if a.Frames == 0 || a.Duration == nil {
			return errors.New("frames and duration must be set together")
		}
		sources = append(sources, "frames")
	}
	switch len(sources) {
	case 0:
		return errors.New("no frame source")
	case 1:
		return nil
	default:
		return fmt.Errorf("multiple frame sources: %q", sources)
	}
}

// Timing returns the timing and loop count described by the animation.
// Relative file paths are resolved against dir.
func (a *Animation) Timing(dir string) (timing.Timing, int, error) {
	err := a.Check()
	if err != nil {
		return nil, 0, err
	}
	switch {
	case a.File != "":
		path := a.File
		if !filepath.IsAbs(path) {
			path = filepath.Join(dir, path)
		}
		f, err := os.Open(path)
		if err != nil {
			return nil, 0, err
		}
		defer f.Close()
		r := animation.AsReadPeeker(f)
		if !animation.IsGIF(r) {
			return nil, 0, fmt.Errorf("%s: not a gif", path)
		}
		anim, err := animation.DecodeGIF(r)
		if err != nil {
			return nil, 0, fmt.Errorf("%s: %w", path, err)
		}
		loops := anim.Loops
		if a.Loops != 0 {
			loops = a.Loops
		}
		return anim.Timing, loops, nil
	case a.Delays != nil:
		delays := make([]time.Duration, len(a.Delays))
		for i, d := range a.Delays {
			delays[i] = d.Duration
		}
		t, err := timing.New(delays)
		return t, a.Loops, err
	default:
		return timing.NewConstant(a.Frames, a.Duration.Duration), a.Loops, nil
	}
}

// Player returns the player described by the animation. Relative file
// paths are resolved against dir.
func (a *Animation) Player(dir string) (timing.Player, error) {
	t, loops, err := a.Timing(dir)
	if err != nil {
		return timing.Player{}, err
	}
	start := time.Unix(0, 0).UTC()
	if a.Start != nil {
		start = *a.Start
	}
	return timing.Player{Timing: t, Start: start, Loops: loops, Paused: a.Paused}, nil
}

// Names returns the sorted names of the configured animations.
func (c *Config) Names() []string {
	names := make([]string, 0, len(c.Animations))
	for n := range c.Animations {
		names = append(names, n)
	}
	slices.Sort(names)
	return names
}

// Duration is a helper for duration fields. It is encoded as a
// [time.Duration] string.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	var err error
	d.Duration, err = time.ParseDuration(string(text))
	return err
}

// Sum is a comparable optional SHA-1 sum.
type Sum [sha1.Size]byte

// Equal returns whether s is equal to other.
func (s *Sum) Equal(other *Sum) bool {
	switch {
	case s == other:
		return true
	case s != nil && other != nil:
		return *s == *other
	default:
		return false
	}
}

func (s *Sum) String() string {
	if s == nil {
		return ""
	}
	return hex.EncodeToString(s[:])
}

func (s *Sum) MarshalText() (text []byte, err error) {
	if s == nil {
		return nil, nil
	}
	text = make([]byte, hex.EncodedLen(len(s)))
	hex.Encode(text, s[:])
	return text, nil
}

// Schema is the CUE schema for validating configurations.
const Schema = `
#duration: =~"^([0-9]+(\\.[0-9]*)?(ns|us|µs|ms|s|m|h))+$"

#level: "DEBUG" | "INFO" | "WARN" | "ERROR" | =~"^(DEBUG|INFO|WARN|ERROR)[+-][0-9]+$"

network?:        "unix" | "tcp"
addr?:           string & !=""
log_level?:      #level
log_add_source?: bool

animation?: [string]: #animation

#animation: {
	file?:     string & !=""
	delays?:   [...#duration]
	frames?:   int & >=1
	duration?: #duration
	start?:    string
	loops?:    int & >=0
	paused?:   bool
}
`
