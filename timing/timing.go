// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package timing provides wall-clock synchronized frame timing for
// frame-based animations.
//
// A Timing maps time elapsed since an animation's anchor to the index of
// the frame that should be displayed, and produces the sequence of instants
// at which the displayed frame changes. Because frame selection depends only
// on the anchor and the current time, independent displays sharing an
// anchor show the same frame at the same time.
package timing

import (
	"fmt"
	"math"
	"math/bits"
	"time"
)

// Timing is a frame timing model.
//
// FrameAt is a step function of elapsed time with period Duration. Frame i
// is displayed on the half-open interval [Offset(i), Offset(i+1)) of each
// loop, and the final frame until the end of the loop.
type Timing interface {
	// Duration returns the duration of a single loop.
	Duration() time.Duration
	// Frames returns the number of frames in a loop. It is at least 1.
	Frames() int
	// FrameAt returns the index of the frame to display at the
	// given time after the start of a loop.
	FrameAt(elapsed time.Duration) int
	// Offset returns the start of frame within a loop. Offsets
	// outside [0, Frames) are clamped to 0 and Duration.
	Offset(frame int) time.Duration
	// Schedule returns the schedule of frame changes for loops
	// anchored at anchor.
	Schedule(anchor time.Time, paused bool) Schedule
}

// CanAnimate returns whether t has more than one frame and a non-zero
// loop duration.
func CanAnimate(t Timing) bool {
	return t != nil && t.Duration() > 0 && t.Frames() > 1
}

// New returns a Timing for frames with the provided display delays. If all
// the delays are equal, a Constant is returned, otherwise a Variable. An
// empty delay list returns a single frame Constant that cannot animate.
func New(delays []time.Duration) (Timing, error) {
	if len(delays) == 0 {
		return NewConstant(1, 0), nil
	}
	equal := true
	var sum time.Duration
	for i, d := range delays {
		if d < 0 || sum+d < sum {
			return nil, &InvalidDelayError{Index: i, Value: d.Seconds()}
		}
		if d != delays[0] {
			equal = false
		}
		sum += d
	}
	if equal {
		return NewConstant(len(delays), sum), nil
	}
	return NewVariable(delays)
}

// maxSeconds is the largest delay in seconds representable as a
// time.Duration.
const maxSeconds = float64(math.MaxInt64) / float64(time.Second)

// FromSeconds converts frame delays expressed in seconds, as reported by
// image decoders, to durations rounded to the nearest nanosecond.
func FromSeconds(delays []float64) ([]time.Duration, error) {
	d := make([]time.Duration, len(delays))
	for i, s := range delays {
		if math.IsNaN(s) || s < 0 || s >= maxSeconds {
			return nil, &InvalidDelayError{Index: i, Value: s}
		}
		d[i] = time.Duration(math.Round(s * float64(time.Second)))
	}
	return d, nil
}

// InvalidDelayError is returned when a frame delay is negative, not finite
// or would overflow the loop duration.
type InvalidDelayError struct {
	Index int     // Index is the frame index of the delay.
	Value float64 // Value is the delay in seconds.
}

func (e *InvalidDelayError) Error() string {
	return fmt.Sprintf("invalid frame delay at index %d: %vs", e.Index, e.Value)
}

// mod returns a modulo m in [0, m) for m > 0.
func mod(a, m time.Duration) time.Duration {
	r := a % m
	if r < 0 {
		r += m
	}
	return r
}

// loop returns the start of the loop of length d containing t for an
// animation anchored at anchor, and the time elapsed at t since an anchor
// in the same phase as anchor. When t is too far from anchor for the
// difference to be held in a time.Duration, the anchor is moved by whole
// loops toward t.
func loop(anchor, t time.Time, d time.Duration) (start time.Time, elapsed time.Duration) {
	const limit = math.MaxInt64 / 2
	step := d * max(1, limit/2/d)
	for {
		elapsed = t.Sub(anchor)
		switch {
		case elapsed > limit:
			anchor = anchor.Add(step)
		case elapsed < -limit:
			anchor = anchor.Add(-step)
		default:
			return anchor.Add(time.Duration(floorDiv(elapsed, d)) * d), elapsed
		}
	}
}

// floorDiv returns floor(a/m) for m > 0.
func floorDiv(a, m time.Duration) int64 {
	q := a / m
	if a%m < 0 {
		q--
	}
	return int64(q)
}

// mulDiv returns floor(a*b/c) without intermediate overflow. The
// quotient must fit in 64 bits.
func mulDiv(a, b, c uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	q, _ := bits.Div64(hi, lo, c)
	return q
}

// mulDivCeil returns ceil(a*b/c) without intermediate overflow. The
// quotient must fit in 64 bits.
func mulDivCeil(a, b, c uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	q, r := bits.Div64(hi, lo, c)
	if r != 0 {
		q++
	}
	return q
}
