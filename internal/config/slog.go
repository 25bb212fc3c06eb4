// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package config

import (
	"log/slog"

	"github.com/kortschak/framesync/config"
)

type changeValue struct {
	Change
}

func (v changeValue) LogValue() slog.Value {
	events := make([]eventValue, len(v.Event))
	for i, e := range v.Event {
		events[i] = eventValue{
			Name: e.Name,
			Op:   e.Op.String(),
			Code: int(e.Op),
		}
	}
	var sum *config.Sum
	if v.Config != nil {
		sum = &v.Sum
	}
	return slog.AnyValue(struct {
		Event  []eventValue   `json:"event"`
		Config *config.Config `json:"config"`
		Sum    *config.Sum    `json:"sum,omitempty"`
		Err    error          `json:"err"`
	}{
		Event:  events,
		Config: v.Config,
		Sum:    sum,
		Err:    v.Err,
	})
}

type eventValue struct {
	Name string `json:"name"`
	Op   string `json:"op"`
	Code int    `json:"op_code"`
}
