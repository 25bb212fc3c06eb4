// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package timing

import (
	"slices"
	"sort"
	"time"
)

// Quantum is the resolution of Variable frame offsets and of the elapsed
// times used to select a Variable frame.
const Quantum = time.Millisecond

// Variable is a frame timing with a per-frame display duration.
//
// Frame offsets and the loop duration are held at millisecond resolution.
// Elapsed times are truncated to the millisecond before lookup so that
// frame boundaries fall exactly on schedule instants.
type Variable struct {
	offsets  []time.Duration
	duration time.Duration
}

// NewVariable returns a Variable timing for frames displayed for the
// provided delays in order. Each running sum of the delays is rounded to
// the nearest Quantum to give the frame offsets; the rounded total is the
// loop duration. Negative delays and totals that overflow are rejected
// with an *InvalidDelayError.
func NewVariable(delays []time.Duration) (Variable, error) {
	v := Variable{offsets: make([]time.Duration, len(delays))}
	var sum time.Duration
	for i, d := range delays {
		if d < 0 || sum+d < sum {
			return Variable{}, &InvalidDelayError{Index: i, Value: d.Seconds()}
		}
		v.offsets[i] = sum.Round(Quantum)
		sum += d
	}
	v.duration = sum.Round(Quantum)
	return v, nil
}

// Duration returns the duration of a single loop.
func (v Variable) Duration() time.Duration { return v.duration }

// Frames returns the number of frames in a loop.
func (v Variable) Frames() int { return max(len(v.offsets), 1) }

// Offsets returns a copy of the frame start offsets.
func (v Variable) Offsets() []time.Duration { return slices.Clone(v.offsets) }

// FrameAt returns the index of the last frame whose offset is not after
// elapsed, reduced modulo the loop duration.
func (v Variable) FrameAt(elapsed time.Duration) int {
	if v.duration <= 0 {
		return 0
	}
	within := mod(elapsed-mod(elapsed, Quantum), v.duration)
	i := sort.Search(len(v.offsets), func(i int) bool {
		return v.offsets[i] > within
	})
	if i == 0 {
		return 0
	}
	return i - 1
}

// Offset returns the first instant within a loop at which frame is
// displayed.
func (v Variable) Offset(frame int) time.Duration {
	switch {
	case frame <= 0 || len(v.offsets) == 0:
		return 0
	case frame >= len(v.offsets):
		return v.duration
	}
	return v.offsets[frame]
}

// Schedule returns the schedule of frame changes for loops anchored at
// anchor.
func (v Variable) Schedule(anchor time.Time, paused bool) Schedule {
	return Schedule{timing: v, anchor: anchor, paused: paused}
}
