// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rpc

import (
	"context"
	"fmt"
	"log/slog"
	"maps"
	"net"
	"slices"
	"time"

	"github.com/kortschak/jsonrpc2"

	"github.com/kortschak/framesync/internal/locked"
	"github.com/kortschak/framesync/internal/slogext"
	"github.com/kortschak/framesync/internal/version"
	"github.com/kortschak/framesync/timing"
)

// Server is a JSON RPC 2 frame query server. It reports the frames and
// frame change schedules of a set of named animations.
type Server struct {
	listener *listener
	server   *jsonrpc2.Server

	players locked.Value[map[string]timing.Player]

	// now is the server's clock.
	now func() time.Time

	log *slog.Logger
}

var serverUID = UID{Module: "framesync", Service: "rpc"}

// NewServer returns a new Server listening on the provided network, which
// may be either "unix" or "tcp", and address. If the address is empty for
// a tcp network, an ephemeral localhost port is used.
func NewServer(ctx context.Context, network, addr string, options jsonrpc2.NetListenOptions, log *slog.Logger) (*Server, error) {
	switch network {
	case "tcp":
		if addr == "" {
			addr = "localhost:0"
		}
	case "unix":
		if addr == "" {
			return nil, fmt.Errorf("missing unix socket path")
		}
	default:
		return nil, fmt.Errorf("invalid network: %q", network)
	}
	s := Server{
		now: time.Now,
		log: log.With(slog.String("component", serverUID.String())),
	}
	var err error
	s.listener, err = listen(ctx, network, addr, options, s.log)
	if err != nil {
		return nil, err
	}
	s.server = jsonrpc2.NewServer(ctx, s.listener, &s)

	s.log.LogAttrs(ctx, slog.LevelDebug, "new server", slog.String("network", network), slog.Any("addr", slogext.Stringer{Stringer: s.listener.Addr()}))
	return &s, nil
}

// Addr returns the listener address of the server.
func (s *Server) Addr() net.Addr {
	return s.listener.Addr()
}

// Connections returns the number of connections the server has accepted.
func (s *Server) Connections() int64 {
	return s.listener.accepted.Load()
}

// Configure replaces the set of served animations. Requests in flight
// complete against the set they started with.
func (s *Server) Configure(players map[string]timing.Player) {
	players = maps.Clone(players)
	s.players.Store(players)
	s.log.LogAttrs(context.Background(), slog.LevelInfo, "configure", slog.Any("animations", slices.Sorted(maps.Keys(players))))
}

// Bind binds the server's handler to a connection.
func (s *Server) Bind(ctx context.Context, conn *jsonrpc2.Connection) jsonrpc2.ConnectionOptions {
	s.log.LogAttrs(ctx, slog.LevelDebug, "binding")
	return jsonrpc2.ConnectionOptions{
		Handler: s,
	}
}

// Handle implements the jsonrpc2.Handler interface.
func (s *Server) Handle(ctx context.Context, req *jsonrpc2.Request) (any, error) {
	s.log.LogAttrs(ctx, slog.LevelDebug, "handle", slog.Any("req", slogext.Request{Request: req}))
	if !req.IsCall() {
		return nil, jsonrpc2.ErrNotHandled
	}

	switch req.Method {
	case Who:
		var m Message[None]
		err := UnmarshalMessage(req.Params, &m)
		if err != nil {
			s.log.LogAttrs(ctx, slog.LevelError, req.Method, slog.Any("error", err))
			return nil, err
		}
		v, err := version.String()
		if err != nil {
			v = err.Error()
		}
		return NewMessage(serverUID, v), nil

	case List:
		var m Message[None]
		err := UnmarshalMessage(req.Params, &m)
		if err != nil {
			s.log.LogAttrs(ctx, slog.LevelError, req.Method, slog.Any("error", err))
			return nil, err
		}
		return NewMessage(serverUID, s.list()), nil

	case Frame:
		var m Message[FrameRequest]
		err := UnmarshalMessage(req.Params, &m)
		if err != nil {
			s.log.LogAttrs(ctx, slog.LevelError, req.Method, slog.Any("error", err))
			return nil, err
		}
		state, err := s.frame(m.Body)
		if err != nil {
			s.log.LogAttrs(ctx, slog.LevelError, req.Method, slog.Any("error", err))
			return nil, err
		}
		return NewMessage(serverUID, state), nil

	case Schedule:
		var m Message[ScheduleRequest]
		err := UnmarshalMessage(req.Params, &m)
		if err != nil {
			s.log.LogAttrs(ctx, slog.LevelError, req.Method, slog.Any("error", err))
			return nil, err
		}
		changes, err := s.schedule(m.Body)
		if err != nil {
			s.log.LogAttrs(ctx, slog.LevelError, req.Method, slog.Any("error", err))
			return nil, err
		}
		return NewMessage(serverUID, changes), nil

	default:
		return nil, jsonrpc2.ErrNotHandled
	}
}

func (s *Server) list() []AnimationState {
	players := s.players.Load()
	states := make([]AnimationState, 0, len(players))
	for _, name := range slices.Sorted(maps.Keys(players)) {
		p := players[name]
		state := AnimationState{
			Name:   name,
			Frames: 1,
			Start:  p.Start,
			Loops:  p.Loops,
			Paused: p.Paused,
		}
		if p.Timing != nil {
			state.Frames = p.Timing.Frames()
			state.Duration = Duration{p.Timing.Duration()}
		}
		if end := p.End(); !end.IsZero() {
			state.End = &end
		}
		states = append(states, state)
	}
	return states
}

func (s *Server) player(name string) (timing.Player, error) {
	p, ok := s.players.Load()[name]
	if !ok {
		return p, NewError(ErrCodeNotFound, fmt.Sprintf("no animation %q", name), map[string]any{"name": name})
	}
	return p, nil
}

func (s *Server) frame(req FrameRequest) (FrameState, error) {
	p, err := s.player(req.Name)
	if err != nil {
		return FrameState{}, err
	}
	now := s.now()
	if req.Time != nil {
		now = *req.Time
	}
	state := FrameState{
		Name:   req.Name,
		Time:   now,
		Frame:  p.Frame(now),
		Frames: 1,
	}
	if p.Timing != nil {
		state.Frames = p.Timing.Frames()
	}
	if next, ok := p.Cursor(now).Next(); ok {
		state.Next = &next
	}
	return state, nil
}

func (s *Server) schedule(req ScheduleRequest) ([]Change, error) {
	p, err := s.player(req.Name)
	if err != nil {
		return nil, err
	}
	n := req.N
	switch {
	case n == 0:
		n = DefaultScheduleLength
	case n < 0, n > MaxScheduleLength:
		return nil, NewError(ErrCodeBounds, fmt.Sprintf("schedule length out of range: %d", n), map[string]any{"n": n, "max": MaxScheduleLength})
	}
	from := s.now()
	if req.From != nil {
		from = *req.From
	}
	var changes []Change
	c := p.Cursor(from)
	for len(changes) < n {
		t, ok := c.Next()
		if !ok {
			break
		}
		changes = append(changes, Change{Time: t, Frame: c.Frame()})
	}
	if s.log.Enabled(context.Background(), slog.LevelDebug) {
		times := make(slogext.Times, len(changes))
		for i, ch := range changes {
			times[i] = ch.Time
		}
		s.log.LogAttrs(context.Background(), slog.LevelDebug, "schedule", slog.String("name", req.Name), slog.Time("from", from), slog.Any("times", times))
	}
	return changes, nil
}

// Close stops the server and waits for active connections to complete.
func (s *Server) Close() error {
	s.log.LogAttrs(context.Background(), slog.LevelDebug, "close")
	s.server.Shutdown()
	return s.server.Wait()
}
