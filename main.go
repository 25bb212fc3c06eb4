// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The framesync executable serves wall-clock synchronized animation frame
// state over JSON RPC-2.0.
//
// Animations are described in a TOML configuration file. The file is
// watched and changes are applied while the server runs.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/kortschak/jsonrpc2"

	"github.com/kortschak/framesync/internal/config"
	"github.com/kortschak/framesync/internal/slogext"
	"github.com/kortschak/framesync/internal/version"
	"github.com/kortschak/framesync/internal/xdg"
	"github.com/kortschak/framesync/rpc"
)

// Exit status codes.
const (
	success       = 0
	internalError = 1 << (iota - 1)
	invocationError
)

// configName is the default configuration file name within the
// XDG configuration directories.
const configName = "framesync/framesync.toml"

func main() { os.Exit(Main()) }

func Main() int {
	cfgPath := flag.String("config", "", "path to configuration file (default $XDG_CONFIG_HOME/"+configName+")")
	network := flag.String("network", "", "network for communication (unix or tcp) overriding configuration")
	addr := flag.String("addr", "", "address for communication overriding configuration")
	check := flag.Bool("check", false, "check configuration and exit")
	logging := flag.String("log", "", "logging level (debug, info, warn or error) overriding configuration")
	lines := flag.Bool("lines", false, "display source line details in logs")
	format := flag.String("log_format", "json", "log output format (json or text)")
	v := flag.Bool("version", false, "print version and exit")
	flag.Parse()
	if *v {
		err := version.Print(os.Stdout)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return internalError
		}
		return success
	}

	if *cfgPath == "" {
		var err error
		*cfgPath, err = xdg.Config(configName)
		if err != nil {
			fmt.Fprintf(os.Stderr, "no configuration file: %v\n", err)
			return invocationError
		}
	}

	cfg, _, err := config.Load(*cfgPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		return invocationError
	}
	players, playersErr := config.Players(cfg, *cfgPath)
	if *check {
		if playersErr != nil {
			fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", playersErr)
			return invocationError
		}
		for _, name := range cfg.Names() {
			p := players[name]
			fmt.Printf("%s: frames=%d duration=%v loops=%d\n", name, p.Timing.Frames(), p.Timing.Duration(), p.Loops)
		}
		return success
	}

	var level slog.LevelVar
	switch {
	case *logging != "":
		err := level.UnmarshalText([]byte(*logging))
		if err != nil {
			flag.Usage()
			return invocationError
		}
	case cfg.LogLevel != nil:
		level.Set(*cfg.LogLevel)
	}
	addSource := slogext.NewAtomicBool(*lines || (cfg.AddSource != nil && *cfg.AddSource))
	h, err := slogext.NewHandler(os.Stderr, *format, &slogext.HandlerOptions{
		Level:     &level,
		AddSource: addSource,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		flag.Usage()
		return invocationError
	}
	log := slog.New(slogext.GoID{Handler: h})
	mlog := log.With(slog.String("component", "framesync.main"))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt)
	go func() {
		<-c
		mlog.LogAttrs(ctx, slog.LevelInfo, "terminating")
		cancel()
	}()
	if playersErr != nil {
		mlog.LogAttrs(ctx, slog.LevelWarn, "animation configuration", slog.Any("error", playersErr))
	}

	if *network == "" {
		*network = cfg.Network
	}
	if *addr == "" {
		*addr = cfg.Addr
	}
	switch *network {
	case "":
		*network = "unix"
	case "unix", "tcp":
	default:
		flag.Usage()
		return invocationError
	}
	if *network == "unix" {
		if *addr == "" {
			dir, err := xdg.Runtime("framesync")
			if err != nil {
				fmt.Fprintf(os.Stderr, "no runtime directory: %v\n", err)
				return internalError
			}
			*addr = filepath.Join(dir, "sock")
		}
		fl := flock.New(*addr + ".lock")
		ok, err := fl.TryLock()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return internalError
		}
		if !ok {
			fmt.Fprintf(os.Stderr, "framesync is already serving %s\n", *addr)
			return internalError
		}
		defer func() {
			fl.Unlock()
			os.Remove(*addr + ".lock")
		}()
		// Remove stale sockets left by an unclean exit.
		// Holding the lock guarantees no other server owns it.
		err = os.Remove(*addr)
		if err != nil && !errors.Is(err, os.ErrNotExist) {
			fmt.Fprintln(os.Stderr, err)
			return internalError
		}
	}

	srv, err := rpc.NewServer(ctx, *network, *addr, jsonrpc2.NetListenOptions{}, log)
	if err != nil {
		mlog.LogAttrs(ctx, slog.LevelError, "start server", slog.Any("error", err))
		return internalError
	}
	defer srv.Close()
	srv.Configure(players)
	mlog.LogAttrs(ctx, slog.LevelInfo, "serving", slog.String("network", *network), slog.Any("addr", slogext.Stringer{Stringer: srv.Addr()}))

	changes := make(chan config.Change)
	w, err := config.NewWatcher(*cfgPath, changes, -1, log)
	if err != nil {
		mlog.LogAttrs(ctx, slog.LevelError, "watch config", slog.Any("error", err))
		return internalError
	}
	go func() {
		err := w.Watch(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			mlog.LogAttrs(ctx, slog.LevelError, "config watcher", slog.Any("error", err))
		}
		cancel()
	}()

	for {
		select {
		case <-ctx.Done():
			mlog.LogAttrs(ctx, slog.LevelInfo, "exit")
			return success
		case change := <-changes:
			if change.Err != nil {
				mlog.LogAttrs(ctx, slog.LevelWarn, "config stream error", slog.Any("error", change.Err))
				continue
			}
			if change.Config == nil {
				continue
			}
			mlog.LogAttrs(ctx, slog.LevelDebug, "config stream element", slog.Any("sum", &change.Sum), slog.String("op", change.Op().String()), slog.Any("events", change.Event))
			if *logging == "" && change.Config.LogLevel != nil {
				level.Set(*change.Config.LogLevel)
			}
			addSource.Store(*lines || (change.Config.AddSource != nil && *change.Config.AddSource))
			players, err := config.Players(change.Config, w.Path())
			if err != nil {
				mlog.LogAttrs(ctx, slog.LevelWarn, "animation configuration", slog.Any("error", err))
			}
			srv.Configure(players)
		}
	}
}
