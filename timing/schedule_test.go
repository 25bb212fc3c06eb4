// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package timing

import (
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

var epoch = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)

func mustVariable(t *testing.T, delays []time.Duration) Variable {
	t.Helper()
	v, err := NewVariable(delays)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return v
}

// take returns the first n schedule entries after from.
func take(s Schedule, from time.Time, n int) []time.Duration {
	var got []time.Duration
	for t := range s.Entries(from) {
		got = append(got, t.Sub(s.Anchor()))
		if len(got) == n {
			break
		}
	}
	return got
}

func TestScheduleEntries(t *testing.T) {
	v := mustVariable(t, seconds(1, 2, 3))
	tests := []struct {
		name   string
		timing Timing
		from   time.Duration
		paused bool
		n      int
		want   []time.Duration
	}{
		{
			name:   "constant_from_anchor",
			timing: NewConstant(3, 6*time.Second),
			n:      5,
			want:   seconds(2, 4, 6, 8, 10),
		},
		{
			name:   "constant_mid_frame",
			timing: NewConstant(3, 6*time.Second),
			from:   4500 * time.Millisecond,
			n:      3,
			want:   seconds(6, 8, 10),
		},
		{
			name:   "constant_on_boundary",
			timing: NewConstant(3, 6*time.Second),
			from:   4 * time.Second,
			n:      2,
			want:   seconds(6, 8),
		},
		{
			name:   "variable_from_anchor",
			timing: v,
			n:      7,
			want:   seconds(1, 3, 6, 7, 9, 12, 13),
		},
		{
			name:   "variable_mid_loop",
			timing: v,
			from:   14 * time.Second,
			n:      3,
			want:   seconds(15, 18, 19),
		},
		{
			name:   "variable_before_anchor",
			timing: v,
			from:   -2 * time.Second,
			n:      3,
			want:   seconds(0, 1, 3),
		},
		{
			name:   "trailing_zero_frame",
			timing: mustVariable(t, seconds(1, 1, 0)),
			n:      4,
			want:   seconds(1, 2, 3, 4),
		},
		{
			name:   "leading_zero_frame",
			timing: mustVariable(t, seconds(0, 1, 1)),
			n:      4,
			want:   seconds(1, 2, 3, 4),
		},
		{
			name:   "paused",
			timing: v,
			paused: true,
			n:      3,
			want:   nil,
		},
		{
			name:   "single_frame",
			timing: NewConstant(1, time.Second),
			n:      3,
			want:   nil,
		},
		{
			name:   "zero_duration",
			timing: NewConstant(4, 0),
			n:      3,
			want:   nil,
		},
		{
			name:   "single_visible_frame",
			timing: mustVariable(t, seconds(1, 0, 0)),
			n:      3,
			want:   nil,
		},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			s := test.timing.Schedule(epoch, test.paused)
			got := take(s, epoch.Add(test.from), test.n)
			if !cmp.Equal(got, test.want) {
				t.Errorf("unexpected entries:\n--- want:\n+++ got:\n%s", cmp.Diff(test.want, got))
			}
		})
	}
}

// checkSchedule confirms that the entries of tm's schedule after from are
// exactly the instants at which tm.FrameAt changes.
func checkSchedule(t *testing.T, tm Timing, anchor, from time.Time, n int) {
	t.Helper()
	c := tm.Schedule(anchor, false).Cursor(from)
	prev := tm.FrameAt(from.Sub(anchor))
	if c.Frame() != prev {
		t.Fatalf("unexpected initial cursor frame: got:%d want:%d", c.Frame(), prev)
	}
	last := from
	for i := 0; i < n; i++ {
		at, ok := c.Next()
		if !ok {
			t.Fatalf("unexpected end of schedule after %d entries", i)
		}
		if !at.After(last) {
			t.Fatalf("entry %d not after previous: %v <= %v", i, at, last)
		}
		for _, probe := range []time.Time{at.Add(-time.Nanosecond), last.Add(at.Sub(last) / 2)} {
			if got := tm.FrameAt(probe.Sub(anchor)); got != prev {
				t.Fatalf("frame changed before entry %d at %v: got:%d want:%d", i, probe.Sub(anchor), got, prev)
			}
		}
		got := tm.FrameAt(at.Sub(anchor))
		if got == prev {
			t.Fatalf("entry %d at %v is not a frame change: frame %d", i, at.Sub(anchor), got)
		}
		if got != c.Frame() {
			t.Fatalf("unexpected cursor frame at entry %d: got:%d want:%d", i, c.Frame(), got)
		}
		prev = got
		last = at
	}
}

func TestScheduleAgreement(t *testing.T) {
	rnd := rand.New(rand.NewPCG(3, 4))
	for n := 0; n < 100; n++ {
		delays := make([]time.Duration, 2+rnd.IntN(10))
		for i := range delays {
			switch rnd.IntN(5) {
			case 0:
				delays[i] = 0
			case 1:
				delays[i] = time.Duration(rnd.IntN(3000)) * time.Microsecond
			default:
				delays[i] = time.Duration(1+rnd.IntN(100)) * 10 * time.Millisecond
			}
		}
		tm, err := New(delays)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !CanAnimate(tm) || tm.FrameAt(0) == tm.FrameAt(tm.Duration()-1) {
			continue
		}
		anchor := epoch.Add(time.Duration(rnd.Int64N(int64(time.Hour))))
		from := anchor.Add(time.Duration(rnd.Int64N(int64(10*tm.Duration()))) - 5*tm.Duration())
		checkSchedule(t, tm, anchor, from, 3*tm.Frames())
	}
	for _, c := range []Constant{
		NewConstant(3, time.Second),
		NewConstant(12, 1001*time.Millisecond),
		NewConstant(2, time.Nanosecond*3),
	} {
		checkSchedule(t, c, epoch, epoch.Add(-time.Second/3), 3*c.Frames())
	}
}

func TestCursorIndependence(t *testing.T) {
	s := mustVariable(t, seconds(1, 2, 3)).Schedule(epoch, false)
	a := s.Cursor(epoch)
	b := s.Cursor(epoch)
	a.Next()
	a.Next()
	got, _ := b.Next()
	if want := epoch.Add(time.Second); !got.Equal(want) {
		t.Errorf("cursors share state: got:%v want:%v", got, want)
	}
}

func TestEntriesRestartable(t *testing.T) {
	s := NewConstant(4, 2*time.Second).Schedule(epoch, false)
	first := take(s, epoch, 5)
	second := take(s, epoch, 5)
	if !slices.Equal(first, second) {
		t.Errorf("entries not restartable: %v != %v", first, second)
	}
}

func TestScheduleDistantFrom(t *testing.T) {
	v := mustVariable(t, seconds(1, 2, 3))
	for _, years := range []int{400, -400, 1200} {
		// 400 Gregorian years is a whole number of days, and so a
		// whole number of 6s loops.
		aligned := epoch.AddDate(years, 0, 0)
		from := aligned.Add(500 * time.Millisecond)

		var got []time.Duration
		for t := range v.Schedule(epoch, false).Entries(from) {
			got = append(got, t.Sub(aligned))
			if len(got) == 4 {
				break
			}
		}
		want := seconds(1, 3, 6, 7)
		if !cmp.Equal(want, got) {
			t.Errorf("unexpected entries %d years from anchor:\n--- want:\n+++ got:\n%s", years, cmp.Diff(want, got))
		}

		p := Player{Timing: v, Start: epoch}
		for _, test := range []struct {
			at   time.Duration
			want int
		}{
			{at: 500 * time.Millisecond, want: 0},
			{at: 1500 * time.Millisecond, want: 1},
			{at: 4 * time.Second, want: 2},
			{at: -time.Millisecond, want: 2},
		} {
			if got := p.Frame(aligned.Add(test.at)); got != test.want {
				t.Errorf("unexpected frame %d years from anchor at %v: got:%d want:%d", years, test.at, got, test.want)
			}
		}
	}
}
