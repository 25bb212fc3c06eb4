// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package timing

import "time"

// Constant is a frame timing with frames of equal duration.
//
// Frame boundaries are computed exactly in integer nanoseconds, so when
// the loop duration is not a multiple of the frame count, individual frame
// durations differ by at most one nanosecond.
type Constant struct {
	frames   int
	duration time.Duration
}

// NewConstant returns a Constant timing for the given number of frames
// displayed over a loop of duration d. A frame count below one is treated
// as one and a negative duration as zero; either prevents animation.
func NewConstant(frames int, d time.Duration) Constant {
	return Constant{frames: max(frames, 1), duration: max(d, 0)}
}

// Duration returns the duration of a single loop.
func (c Constant) Duration() time.Duration { return c.duration }

// Frames returns the number of frames in a loop.
func (c Constant) Frames() int { return max(c.frames, 1) }

// FrameDuration returns the nominal duration of each frame, or zero if
// the timing cannot animate.
func (c Constant) FrameDuration() time.Duration {
	if !c.animates() {
		return 0
	}
	return c.duration / time.Duration(c.frames)
}

func (c Constant) animates() bool {
	return c.frames > 1 && c.duration > 0
}

// FrameAt returns the index of the frame to display at elapsed time after
// the start of a loop.
func (c Constant) FrameAt(elapsed time.Duration) int {
	if !c.animates() {
		return 0
	}
	within := mod(elapsed, c.duration)
	return int(mulDiv(uint64(within), uint64(c.frames), uint64(c.duration)))
}

// Offset returns the first instant within a loop at which frame is
// displayed.
func (c Constant) Offset(frame int) time.Duration {
	switch {
	case !c.animates(), frame <= 0:
		return 0
	case frame >= c.frames:
		return c.duration
	}
	return time.Duration(mulDivCeil(uint64(frame), uint64(c.duration), uint64(c.frames)))
}

// Schedule returns the schedule of frame changes for loops anchored at
// anchor.
func (c Constant) Schedule(anchor time.Time, paused bool) Schedule {
	return Schedule{timing: c, anchor: anchor, paused: paused}
}
