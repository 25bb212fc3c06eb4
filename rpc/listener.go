// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rpc

import (
	"context"
	"io"
	"log/slog"
	"net"
	"os"
	"sync/atomic"

	"github.com/kortschak/jsonrpc2"

	"github.com/kortschak/framesync/internal/slogext"
)

// listener is a jsonrpc2.Listener for frame query connections made
// using the net package. Unix sockets are restricted to the owner and
// are removed when the listener is closed.
type listener struct {
	net      net.Listener
	accepted atomic.Int64
	log      *slog.Logger
}

func listen(ctx context.Context, network, address string, options jsonrpc2.NetListenOptions, log *slog.Logger) (*listener, error) {
	ln, err := options.NetListenConfig.Listen(ctx, network, address)
	if err != nil {
		return nil, err
	}
	if network == "unix" {
		err = os.Chmod(address, 0o600)
		if err != nil {
			ln.Close()
			return nil, err
		}
	}
	return &listener{net: ln, log: log}, nil
}

func (l *listener) Addr() net.Addr {
	return l.net.Addr()
}

// Accept blocks waiting for an incoming connection to the listener.
func (l *listener) Accept(ctx context.Context) (io.ReadWriteCloser, error) {
	conn, err := l.net.Accept()
	if err != nil {
		return nil, err
	}
	n := l.accepted.Add(1)
	l.log.LogAttrs(ctx, slog.LevelDebug, "accept", slog.Int64("conn", n), slog.Any("remote", slogext.Stringer{Stringer: conn.RemoteAddr()}))
	return conn, nil
}

// Close stops listening. Connections already accepted are not closed.
func (l *listener) Close() error {
	addr := l.net.Addr()
	err := l.net.Close()
	if addr.Network() == "unix" {
		rerr := os.Remove(addr.String())
		if rerr != nil && !os.IsNotExist(rerr) && err == nil {
			err = rerr
		}
	}
	return err
}

// Dialer returns nil; frame query servers never dial out.
func (l *listener) Dialer() jsonrpc2.Dialer {
	return nil
}
