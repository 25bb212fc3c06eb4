// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package timing

import (
	"math"
	"testing"
	"time"
)

func TestNew(t *testing.T) {
	tests := []struct {
		name       string
		delays     []time.Duration
		wantType   string
		wantFrames int
		wantDur    time.Duration
		wantAnim   bool
	}{
		{name: "empty", delays: nil, wantType: "constant", wantFrames: 1, wantDur: 0},
		{name: "single", delays: seconds(0.5), wantType: "constant", wantFrames: 1, wantDur: 500 * time.Millisecond},
		{name: "equal", delays: seconds(0.1, 0.1, 0.1), wantType: "constant", wantFrames: 3, wantDur: 300 * time.Millisecond, wantAnim: true},
		{name: "unequal", delays: seconds(0.1, 0.2), wantType: "variable", wantFrames: 2, wantDur: 300 * time.Millisecond, wantAnim: true},
		{name: "zero", delays: []time.Duration{0, 0}, wantType: "constant", wantFrames: 2, wantDur: 0},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			tm, err := New(test.delays)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			var typ string
			switch tm.(type) {
			case Constant:
				typ = "constant"
			case Variable:
				typ = "variable"
			}
			if typ != test.wantType {
				t.Errorf("unexpected timing type: got:%s want:%s", typ, test.wantType)
			}
			if tm.Frames() != test.wantFrames {
				t.Errorf("unexpected frame count: got:%d want:%d", tm.Frames(), test.wantFrames)
			}
			if tm.Duration() != test.wantDur {
				t.Errorf("unexpected duration: got:%v want:%v", tm.Duration(), test.wantDur)
			}
			if CanAnimate(tm) != test.wantAnim {
				t.Errorf("unexpected animate state: got:%t want:%t", CanAnimate(tm), test.wantAnim)
			}
		})
	}
}

func TestNewInvalid(t *testing.T) {
	_, err := New([]time.Duration{time.Second, -1})
	if err == nil {
		t.Error("expected error for negative delay")
	}
	_, err = New([]time.Duration{math.MaxInt64, 1})
	if err == nil {
		t.Error("expected error for overflowing delays")
	}
}

func TestFromSeconds(t *testing.T) {
	got, err := FromSeconds([]float64{0.1, 1.5, 0})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	want := []time.Duration{100 * time.Millisecond, 1500 * time.Millisecond, 0}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("unexpected delay at %d: got:%v want:%v", i, got[i], want[i])
		}
	}

	for _, bad := range []float64{math.NaN(), math.Inf(1), math.Inf(-1), -0.1, 1e12} {
		_, err := FromSeconds([]float64{0.1, bad})
		if err == nil {
			t.Errorf("expected error for %v", bad)
			continue
		}
		if e, ok := err.(*InvalidDelayError); !ok || e.Index != 1 {
			t.Errorf("unexpected error for %v: %#v", bad, err)
		}
	}
}
