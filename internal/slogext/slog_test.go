// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package slogext

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestJSONHandler(t *testing.T) {
	var buf bytes.Buffer
	addSource := NewAtomicBool(false)
	log := slog.New(GoID{NewJSONHandler(&buf, &HandlerOptions{
		Level:     slog.LevelInfo,
		AddSource: addSource,
	})}).With(slog.String("component", "test"))

	log.Debug("hidden")
	log.Info("without source", slog.Any("times", Times{time.Date(2024, time.January, 1, 0, 0, 0, 5, time.UTC)}))
	addSource.Store(true)
	log.Info("with source")

	dec := json.NewDecoder(&buf)
	var got []map[string]any
	for dec.More() {
		var m map[string]any
		err := dec.Decode(&m)
		if err != nil {
			t.Fatalf("unexpected error decoding log: %v", err)
		}
		got = append(got, m)
	}
	if len(got) != 2 {
		t.Fatalf("unexpected number of log lines: got:%d want:2", len(got))
	}

	for i, wantSource := range []bool{false, true} {
		_, hasSource := got[i][slog.SourceKey]
		if hasSource != wantSource {
			t.Errorf("unexpected source presence for line %d: got:%t want:%t", i, hasSource, wantSource)
		}
		if _, ok := got[i]["goid"]; !ok {
			t.Errorf("missing goid for line %d", i)
		}
		if got[i]["component"] != "test" {
			t.Errorf("unexpected component for line %d: %v", i, got[i]["component"])
		}
	}
	wantTimes := []any{"2024-01-01T00:00:00.000000005Z"}
	if !cmp.Equal(wantTimes, got[0]["times"]) {
		t.Errorf("unexpected times:\n--- want:\n+++ got:\n%s", cmp.Diff(wantTimes, got[0]["times"]))
	}
}

func TestNewHandler(t *testing.T) {
	for _, test := range []struct {
		format  string
		want    string
		wantErr bool
	}{
		{format: "", want: `"msg":"message"`},
		{format: "json", want: `"msg":"message"`},
		{format: "text", want: `msg=message`},
		{format: "xml", wantErr: true},
	} {
		t.Run(test.format, func(t *testing.T) {
			var buf bytes.Buffer
			h, err := NewHandler(&buf, test.format, nil)
			if (err != nil) != test.wantErr {
				t.Fatalf("unexpected error: %v", err)
			}
			if err != nil {
				return
			}
			slog.New(h).Info("message")
			if !strings.Contains(buf.String(), test.want) {
				t.Errorf("unexpected output: got:%q want substring:%q", buf.String(), test.want)
			}
			if strings.Contains(buf.String(), slog.SourceKey) {
				t.Errorf("unexpected source in output: %q", buf.String())
			}
		})
	}
}
