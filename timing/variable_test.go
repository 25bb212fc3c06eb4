// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package timing

import (
	"errors"
	"math/rand/v2"
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func seconds(s ...float64) []time.Duration {
	d, err := FromSeconds(s)
	if err != nil {
		panic(err)
	}
	return d
}

var newVariableTests = []struct {
	name         string
	delays       []time.Duration
	wantOffsets  []time.Duration
	wantDuration time.Duration
	wantErr      error
}{
	{
		name:         "one_two_three",
		delays:       seconds(1, 2, 3),
		wantOffsets:  seconds(0, 1, 3),
		wantDuration: 6 * time.Second,
	},
	{
		name:         "tenths",
		delays:       seconds(0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.1, 0.2),
		wantOffsets:  seconds(0, 0.1, 0.2, 0.3, 0.4, 0.5, 0.6, 0.7, 0.8, 0.9),
		wantDuration: 1100 * time.Millisecond,
	},
	{
		name:         "sub_quantum",
		delays:       []time.Duration{400 * time.Microsecond, 400 * time.Microsecond, 400 * time.Microsecond, time.Second},
		wantOffsets:  []time.Duration{0, 0, time.Millisecond, time.Millisecond},
		wantDuration: 1001 * time.Millisecond,
	},
	{
		name:         "zero_delays",
		delays:       []time.Duration{0, 0},
		wantOffsets:  []time.Duration{0, 0},
		wantDuration: 0,
	},
	{
		name:         "empty",
		delays:       nil,
		wantOffsets:  []time.Duration{},
		wantDuration: 0,
	},
	{
		name:    "negative",
		delays:  []time.Duration{time.Second, -time.Second},
		wantErr: &InvalidDelayError{Index: 1, Value: -1},
	},
}

func TestNewVariable(t *testing.T) {
	for _, test := range newVariableTests {
		t.Run(test.name, func(t *testing.T) {
			v, err := NewVariable(test.delays)
			if !sameError(err, test.wantErr) {
				t.Fatalf("unexpected error: got:%v want:%v", err, test.wantErr)
			}
			if err != nil {
				return
			}
			if !cmp.Equal(v.Offsets(), test.wantOffsets) {
				t.Errorf("unexpected offsets:\n--- want:\n+++ got:\n%s", cmp.Diff(test.wantOffsets, v.Offsets()))
			}
			if v.Duration() != test.wantDuration {
				t.Errorf("unexpected duration: got:%v want:%v", v.Duration(), test.wantDuration)
			}
			again, err := NewVariable(test.delays)
			if err != nil {
				t.Fatalf("unexpected error on reconstruction: %v", err)
			}
			if !cmp.Equal(again.Offsets(), v.Offsets()) || again.Duration() != v.Duration() {
				t.Errorf("construction not deterministic: %v != %v", again, v)
			}
		})
	}
}

func sameError(a, b error) bool {
	switch {
	case a == nil && b == nil:
		return true
	case a == nil || b == nil:
		return false
	}
	return a.Error() == b.Error()
}

var variableFrameAtTests = []struct {
	name    string
	delays  []time.Duration
	elapsed []time.Duration
	want    []int
}{
	{
		name:    "one_two_three",
		delays:  seconds(1, 2, 3),
		elapsed: seconds(0, 0.9, 1, 1.1, 2.9, 3, 4, 5.9, 6, 7.5),
		want:    []int{0, 0, 1, 1, 1, 2, 2, 2, 0, 1},
	},
	{
		name:    "negative_elapsed",
		delays:  seconds(1, 2, 3),
		elapsed: []time.Duration{-time.Nanosecond, -3 * time.Second, -5 * time.Second, -6 * time.Second},
		want:    []int{2, 2, 1, 0},
	},
	{
		name:    "truncated_to_quantum",
		delays:  seconds(1, 2, 3),
		elapsed: []time.Duration{time.Second - time.Nanosecond, time.Second - 500*time.Microsecond, time.Second + 999*time.Microsecond},
		want:    []int{0, 0, 1},
	},
	{
		name:    "sub_quantum",
		delays:  []time.Duration{400 * time.Microsecond, 400 * time.Microsecond, 400 * time.Microsecond, time.Second},
		elapsed: []time.Duration{0, 999 * time.Microsecond, time.Millisecond, 500 * time.Millisecond},
		want:    []int{1, 1, 3, 3},
	},
	{
		name:    "zero_duration",
		delays:  []time.Duration{0, 0, 0},
		elapsed: []time.Duration{0, time.Second},
		want:    []int{0, 0},
	},
}

func TestVariableFrameAt(t *testing.T) {
	for _, test := range variableFrameAtTests {
		t.Run(test.name, func(t *testing.T) {
			v, err := NewVariable(test.delays)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			for i, e := range test.elapsed {
				got := v.FrameAt(e)
				if got != test.want[i] {
					t.Errorf("unexpected frame at %v: got:%d want:%d", e, got, test.want[i])
				}
			}
		})
	}
}

// linearFrameAt is the reference last-match scan for Variable.FrameAt.
func linearFrameAt(v Variable, elapsed time.Duration) int {
	if v.duration <= 0 {
		return 0
	}
	ms := elapsed / Quantum
	if elapsed%Quantum < 0 {
		ms--
	}
	within := mod(ms*Quantum, v.duration)
	for i := len(v.offsets) - 1; i >= 0; i-- {
		if v.offsets[i] <= within {
			return i
		}
	}
	return 0
}

func TestVariableProperties(t *testing.T) {
	rnd := rand.New(rand.NewPCG(1, 2))
	for n := 0; n < 200; n++ {
		delays := make([]time.Duration, 1+rnd.IntN(20))
		for i := range delays {
			switch rnd.IntN(4) {
			case 0:
				delays[i] = time.Duration(rnd.IntN(2000)) * time.Microsecond
			default:
				delays[i] = time.Duration(rnd.IntN(500)) * 10 * time.Millisecond
			}
		}
		v, err := NewVariable(delays)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		off := v.Offsets()
		if off[0] != 0 {
			t.Errorf("first offset not zero for %v: %v", delays, off[0])
		}
		if !slices.IsSorted(off) {
			t.Errorf("offsets not sorted for %v: %v", delays, off)
		}
		if off[len(off)-1] > v.Duration() {
			t.Errorf("offset after end for %v: %v > %v", delays, off[len(off)-1], v.Duration())
		}
		if v.Duration() == 0 {
			continue
		}
		for k := 0; k < 50; k++ {
			e := time.Duration(rnd.Int64N(int64(4*v.Duration()))) - 2*v.Duration()
			got := v.FrameAt(e)
			if want := linearFrameAt(v, e); got != want {
				t.Errorf("unexpected frame for %v at %v: got:%d want:%d", delays, e, got, want)
			}
			if periodic := v.FrameAt(e + v.Duration()); periodic != got {
				t.Errorf("non-periodic frame for %v at %v: got:%d want:%d", delays, e, periodic, got)
			}
		}
	}
}

func TestInvalidDelayError(t *testing.T) {
	_, err := NewVariable([]time.Duration{time.Second, 0, -time.Millisecond})
	var e *InvalidDelayError
	if !errors.As(err, &e) {
		t.Fatalf("unexpected error type: %T", err)
	}
	if e.Index != 2 {
		t.Errorf("unexpected index: got:%d want:2", e.Index)
	}
}
