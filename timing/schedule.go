// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package timing

import (
	"iter"
	"time"
)

// Schedule is the set of instants at which the frame of a timing anchored
// at a fixed time changes. A Schedule is immutable and may be shared; each
// consumer should obtain its own Cursor.
type Schedule struct {
	timing Timing
	anchor time.Time
	paused bool

	// end, if not zero, is the instant after which the
	// final frame is held.
	end time.Time
}

// Anchor returns the start of the schedule's first loop.
func (s Schedule) Anchor() time.Time { return s.anchor }

// Cursor returns a cursor positioned at from. The first call to Next
// returns the first frame change strictly after from.
func (s Schedule) Cursor(from time.Time) *Cursor {
	c := &Cursor{timing: s.timing, end: s.end}
	if !CanAnimate(s.timing) {
		c.done = true
		return c
	}
	if !s.end.IsZero() && !from.Before(s.end) {
		c.frame = s.timing.Frames() - 1
		c.done = true
		return c
	}
	d := s.timing.Duration()
	start, elapsed := loop(s.anchor, from, d)
	c.start = start
	c.frame = s.timing.FrameAt(elapsed)
	if s.paused {
		c.done = true
		return c
	}
	// A timing whose first and last visible frames are the
	// same never changes frame within a loop.
	c.static = s.timing.FrameAt(0) == s.timing.FrameAt(d-1)
	return c
}

// Entries returns the frame changes strictly after from, in order. The
// sequence is infinite unless the schedule is paused, cannot animate or is
// bounded by a loop count.
func (s Schedule) Entries(from time.Time) iter.Seq[time.Time] {
	return func(yield func(time.Time) bool) {
		c := s.Cursor(from)
		for {
			t, ok := c.Next()
			if !ok || !yield(t) {
				return
			}
		}
	}
}

// Cursor is a position in a Schedule. A Cursor must not be used
// concurrently.
type Cursor struct {
	timing Timing
	end    time.Time

	start time.Time // start of the current loop
	frame int       // frame displayed at the current position

	static bool
	done   bool
}

// Frame returns the frame displayed at the cursor's current position.
func (c *Cursor) Frame() int { return c.frame }

// Next advances the cursor to the next frame change and returns its time.
// It returns false when there are no more changes.
func (c *Cursor) Next() (time.Time, bool) {
	if c.done {
		return time.Time{}, false
	}
	if c.static {
		return c.hold()
	}
	d := c.timing.Duration()
	start := c.start
	var offset time.Duration
	next := c.frame + 1
	if next < c.timing.Frames() {
		offset = c.timing.Offset(next)
	}
	if next >= c.timing.Frames() || offset >= d {
		// Frames starting at the end of the loop are never
		// displayed, so wrap to the next loop.
		start = start.Add(d)
		offset = 0
	}
	t := start.Add(offset)
	if !c.end.IsZero() && !t.Before(c.end) {
		return c.hold()
	}
	c.start = start
	c.frame = c.timing.FrameAt(offset)
	return t, true
}

// hold terminates the cursor, returning the end time if holding the
// final frame from the end is a frame change.
func (c *Cursor) hold() (time.Time, bool) {
	c.done = true
	last := c.timing.Frames() - 1
	if c.end.IsZero() || c.frame == last {
		return time.Time{}, false
	}
	c.frame = last
	return c.end, true
}
