// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package slogext provides slog helpers.
package slogext

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/kortschak/goroutine"
	"github.com/kortschak/jsonrpc2"
)

// GoID is a slog.Handler that adds the calling goroutine's goid.
type GoID struct {
	slog.Handler
}

func (h GoID) Handle(ctx context.Context, r slog.Record) error {
	r.AddAttrs(slog.Int64("goid", goroutine.ID()))
	return h.Handler.Handle(ctx, r)
}

func (h GoID) WithAttrs(attrs []slog.Attr) slog.Handler {
	return GoID{h.Handler.WithAttrs(attrs)}
}

func (h GoID) WithGroup(name string) slog.Handler {
	return GoID{h.Handler.WithGroup(name)}
}

// Stringer implements slog.LogValuer for [fmt.Stringer].
type Stringer struct {
	fmt.Stringer
}

func (v Stringer) LogValue() slog.Value {
	if v.Stringer == nil {
		return slog.StringValue("<nil>")
	}
	return slog.StringValue(v.String())
}

// Request implements slog.LogValuer for [jsonrpc2.Request].
type Request struct {
	*jsonrpc2.Request
}

func (v Request) LogValue() slog.Value {
	return slog.AnyValue(request{ID: v.Request.ID.Raw(), Method: v.Method, Params: v.Params})
}

// Times implements slog.LogValuer for a slice of times, rendering each
// in RFC 3339 format with nanoseconds.
type Times []time.Time

func (v Times) LogValue() slog.Value {
	s := make([]string, len(v))
	for i, t := range v {
		s[i] = t.Format(time.RFC3339Nano)
	}
	return slog.AnyValue(s)
}

type request struct {
	ID     any             `json:"id"`
	Method string          `json:"method"`
	Params json.RawMessage `json:"params"`
	Err    string          `json:"error,omitempty"`
}

// Handler is a slog.Handler that writes Records to an io.Writer in either
// JSON or text form. Unlike the standard library handlers, whether source
// positions are added may be changed after construction.
type Handler struct {
	addSource     *atomic.Bool
	withSource    slog.Handler
	withoutSource slog.Handler
}

// NewJSONHandler returns a Handler that writes line-delimited JSON objects
// to w. If opts is nil, the default options are used.
func NewJSONHandler(w io.Writer, opts *HandlerOptions) *Handler {
	return newHandler(opts, func(o *slog.HandlerOptions) slog.Handler {
		return slog.NewJSONHandler(w, o)
	})
}

// NewTextHandler returns a Handler that writes key=value records to w.
// If opts is nil, the default options are used.
func NewTextHandler(w io.Writer, opts *HandlerOptions) *Handler {
	return newHandler(opts, func(o *slog.HandlerOptions) slog.Handler {
		return slog.NewTextHandler(w, o)
	})
}

// NewHandler returns a JSON or text Handler depending on format, which
// must be "json" or "text".
func NewHandler(w io.Writer, format string, opts *HandlerOptions) (*Handler, error) {
	switch format {
	case "json", "":
		return NewJSONHandler(w, opts), nil
	case "text":
		return NewTextHandler(w, opts), nil
	default:
		return nil, fmt.Errorf("invalid log format: %q", format)
	}
}

func newHandler(opts *HandlerOptions, mk func(*slog.HandlerOptions) slog.Handler) *Handler {
	if opts == nil {
		opts = &HandlerOptions{}
	}
	addSource := opts.AddSource
	if addSource == nil {
		addSource = &atomic.Bool{}
	}
	return &Handler{
		addSource: addSource,
		withSource: mk(&slog.HandlerOptions{
			AddSource:   true,
			Level:       opts.Level,
			ReplaceAttr: opts.ReplaceAttr,
		}),
		withoutSource: mk(&slog.HandlerOptions{
			Level:       opts.Level,
			ReplaceAttr: opts.ReplaceAttr,
		}),
	}
}

func (h *Handler) Enabled(ctx context.Context, level slog.Level) bool {
	return h.withSource.Enabled(ctx, level)
}

func (h *Handler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &Handler{
		addSource:     h.addSource,
		withSource:    h.withSource.WithAttrs(attrs),
		withoutSource: h.withoutSource.WithAttrs(attrs),
	}
}

func (h *Handler) WithGroup(name string) slog.Handler {
	return &Handler{
		addSource:     h.addSource,
		withSource:    h.withSource.WithGroup(name),
		withoutSource: h.withoutSource.WithGroup(name),
	}
}

func (h *Handler) Handle(ctx context.Context, r slog.Record) error {
	if h.addSource.Load() {
		return h.withSource.Handle(ctx, r)
	}
	return h.withoutSource.Handle(ctx, r)
}

// HandlerOptions are the options for a Handler. They follow
// [slog.HandlerOptions], but AddSource may be toggled while running.
type HandlerOptions struct {
	// AddSource adds a SourceKey attribute when true. A nil
	// AddSource is false.
	AddSource *atomic.Bool

	// Level reports the minimum record level that will be logged.
	Level slog.Leveler

	ReplaceAttr func(groups []string, a slog.Attr) slog.Attr
}

// NewAtomicBool returns an atomic.Bool holding t.
func NewAtomicBool(t bool) *atomic.Bool {
	var x atomic.Bool
	x.Store(t)
	return &x
}
