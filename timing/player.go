// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package timing

import (
	"iter"
	"math"
	"time"
)

// Player drives a Timing from a fixed start time. Players with the same
// Timing and Start report the same frame for the same wall-clock time.
type Player struct {
	Timing Timing

	// Start is the anchor of the first loop.
	Start time.Time

	// Loops is the number of loops to play before holding
	// the final frame. A Loops of zero or less plays forever.
	Loops int

	// Paused stops the production of schedule entries.
	// It does not alter the frame reported by Frame.
	Paused bool
}

// CanAnimate returns whether the player's timing can animate.
func (p Player) CanAnimate() bool {
	return CanAnimate(p.Timing)
}

// End returns the time at which the player stops and the final frame is
// held. It returns the zero time if the player has no reachable end.
func (p Player) End() time.Time {
	if p.Loops <= 0 || !p.CanAnimate() {
		return time.Time{}
	}
	d := p.Timing.Duration()
	if time.Duration(p.Loops) > math.MaxInt64/d {
		// Unrepresentable ends are never reached.
		return time.Time{}
	}
	return p.Start.Add(d * time.Duration(p.Loops))
}

// Done returns whether a player with a bounded loop count has finished
// at now.
func (p Player) Done(now time.Time) bool {
	end := p.End()
	return !end.IsZero() && !now.Before(end)
}

// Frame returns the index of the frame to display at now.
func (p Player) Frame(now time.Time) int {
	switch {
	case !p.CanAnimate():
		return 0
	case p.Done(now):
		return p.Timing.Frames() - 1
	}
	_, elapsed := loop(p.Start, now, p.Timing.Duration())
	return p.Timing.FrameAt(elapsed)
}

// Schedule returns the player's schedule of frame changes.
func (p Player) Schedule() Schedule {
	if p.Timing == nil {
		return Schedule{paused: true}
	}
	s := p.Timing.Schedule(p.Start, p.Paused)
	s.end = p.End()
	return s
}

// Cursor returns a schedule cursor positioned at now.
func (p Player) Cursor(now time.Time) *Cursor {
	return p.Schedule().Cursor(now)
}

// Entries returns the frame changes strictly after now.
func (p Player) Entries(now time.Time) iter.Seq[time.Time] {
	return p.Schedule().Entries(now)
}
