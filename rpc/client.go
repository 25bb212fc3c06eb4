// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package rpc

import (
	"context"
	"net"

	"github.com/kortschak/jsonrpc2"
)

// Client is a frame query client.
type Client struct {
	uid  UID
	conn *jsonrpc2.Connection
}

// Dial returns a new Client connected to the server at the given network
// and address. The uid is used to identify the client's messages.
func Dial(ctx context.Context, network, addr string, uid UID, dialer net.Dialer) (*Client, error) {
	conn, err := jsonrpc2.Dial(ctx, jsonrpc2.NetDialer(network, addr, dialer), jsonrpc2.ConnectionOptions{})
	if err != nil {
		return nil, err
	}
	return &Client{uid: uid, conn: conn}, nil
}

// Who returns the server's version.
func (c *Client) Who(ctx context.Context) (string, error) {
	var resp Message[string]
	err := c.conn.Call(ctx, Who, NewMessage(c.uid, None{})).Await(ctx, &resp)
	return resp.Body, err
}

// List returns the server's animations sorted by name.
func (c *Client) List(ctx context.Context) ([]AnimationState, error) {
	var resp Message[[]AnimationState]
	err := c.conn.Call(ctx, List, NewMessage(c.uid, None{})).Await(ctx, &resp)
	return resp.Body, err
}

// Frame returns the frame state of the requested animation.
func (c *Client) Frame(ctx context.Context, req FrameRequest) (FrameState, error) {
	var resp Message[FrameState]
	err := c.conn.Call(ctx, Frame, NewMessage(c.uid, req)).Await(ctx, &resp)
	return resp.Body, err
}

// Schedule returns the frame changes of the requested animation.
func (c *Client) Schedule(ctx context.Context, req ScheduleRequest) ([]Change, error) {
	var resp Message[[]Change]
	err := c.conn.Call(ctx, Schedule, NewMessage(c.uid, req)).Await(ctx, &resp)
	return resp.Body, err
}

// Close closes the client's connection.
// See [jsonrpc2.Connection.Close].
func (c *Client) Close() error {
	return c.conn.Close()
}
