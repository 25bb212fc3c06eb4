// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package animation provides wall-clock synchronized animated image support.
package animation

import (
	"context"
	"errors"
	"fmt"
	"image"
	"time"

	"github.com/kortschak/framesync/timing"
)

// Animation is a sequence of completely rendered frames and the timing used
// to select between them.
//
// Animation values must not be mutated while they are being animated, but
// may be shared between goroutines otherwise.
type Animation struct {
	Frames []image.Image
	Timing timing.Timing

	// Loops is the number of times the animation is played
	// before holding the final frame. A Loops of zero or less
	// plays forever.
	Loops int
}

// New returns an Animation displaying each frame for the corresponding
// delay. All frames must have the same bounds.
func New(frames []image.Image, delays []time.Duration, loops int) (*Animation, error) {
	if len(frames) == 0 {
		return nil, errors.New("no frames")
	}
	if len(frames) != len(delays) {
		return nil, fmt.Errorf("mismatched frame count and delay count: %d != %d", len(frames), len(delays))
	}
	b := frames[0].Bounds()
	for i, f := range frames[1:] {
		if f.Bounds() != b {
			return nil, fmt.Errorf("mismatched bounds at %d: %v != %v", i+1, f.Bounds(), b)
		}
	}
	t, err := timing.New(delays)
	if err != nil {
		return nil, err
	}
	return &Animation{Frames: frames, Timing: t, Loops: loops}, nil
}

// Images returns an Animation displaying each frame for delay.
func Images(frames []image.Image, delay time.Duration, loops int) (*Animation, error) {
	delays := make([]time.Duration, len(frames))
	for i := range delays {
		delays[i] = delay
	}
	return New(frames, delays, loops)
}

// Player returns a player for the animation anchored at start.
func (a *Animation) Player(start time.Time) timing.Player {
	return timing.Player{Timing: a.Timing, Start: start, Loops: a.Loops}
}

// Image returns the frame displayed by p at now.
func (a *Animation) Image(p timing.Player, now time.Time) image.Image {
	return a.Frames[p.Frame(now)]
}

// Bounds returns the bounds of the animation's frames.
func (a *Animation) Bounds() image.Rectangle {
	if len(a.Frames) == 0 {
		return image.Rectangle{}
	}
	return a.Frames[0].Bounds()
}

// Animate calls fn with the frame displayed by p now and then with each
// subsequent frame at the time it becomes visible. Animate returns when p's
// schedule is exhausted, when fn returns a non-nil error or when ctx is
// cancelled. If fn is slow enough that frame changes are missed, the
// animation skips to the current frame.
func (a *Animation) Animate(ctx context.Context, p timing.Player, fn func(frame int, img image.Image) error) error {
	n := 1
	if p.Timing != nil {
		n = p.Timing.Frames()
	}
	if len(a.Frames) < n {
		return fmt.Errorf("timing requires %d frames but only %d available", n, len(a.Frames))
	}
	c := p.Cursor(time.Now())
	err := fn(c.Frame(), a.Frames[c.Frame()])
	if err != nil {
		return err
	}
	for {
		at, ok := c.Next()
		if !ok {
			return nil
		}
		delay := time.NewTimer(time.Until(at))
		select {
		case <-ctx.Done():
			delay.Stop()
			return ctx.Err()
		case <-delay.C:
		}
		now := time.Now()
		peek := *c
		if next, ok := peek.Next(); ok && !now.Before(next) {
			c = p.Cursor(now)
		}
		err = fn(c.Frame(), a.Frames[c.Frame()])
		if err != nil {
			return err
		}
	}
}
