// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package rpc provides the framesync JSON RPC 2 frame query service.
package rpc

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/kortschak/jsonrpc2"
)

// Server methods.
const (
	Who      = "who"      // call Message[None] → Message[string] (version)
	List     = "list"     // call Message[None] → Message[[]AnimationState]
	Frame    = "frame"    // call Message[FrameRequest] → Message[FrameState]
	Schedule = "schedule" // call Message[ScheduleRequest] → Message[[]Change]
)

// JSON RPC error codes.
const (
	ErrCodeInvalidMessage = 1 // an RPC message is invalid
	// Invalid message sub-codes:
	ErrCodeMessageSyntax       = 11 // syntax
	ErrCodeMessageUnknownField = 12 // unknown field
	ErrCodeShortMessage        = 13 // truncation
	ErrCodeMessageType         = 14 // type mismatch
	ErrCodeMethod              = 15 // method mismatch
	ErrCodeParameters          = 16 // invalid parameters

	ErrCodeInvalidData = 3  // data sent in a call was invalid
	ErrCodeBounds      = 35 // out of bounds

	ErrCodeNotFound = 5 // a named animation was not present
)

// Message is the message passing container.
type Message[T any] struct {
	Time time.Time `json:"time"`
	UID  UID       `json:"uid,omitempty"`
	Body T         `json:"body,omitempty"`
}

// UID is a component's UID.
type UID struct {
	Module  string `json:"module,omitempty"`
	Service string `json:"service,omitempty"`
}

func (u UID) String() string {
	if u.Service == "" {
		return u.Module
	}
	return u.Module + "." + u.Service
}

func (u UID) IsZero() bool {
	return u == UID{}
}

// NewMessage is a convenience Message constructor. It populates the Time
// field and the sender's UID.
func NewMessage[T any](uid UID, body T) *Message[T] {
	return &Message[T]{
		Time: time.Now(),
		UID:  uid,
		Body: body,
	}
}

// AnimationState describes a configured animation.
type AnimationState struct {
	Name     string    `json:"name"`
	Frames   int       `json:"frames"`
	Duration Duration  `json:"duration"`
	Start    time.Time `json:"start"`
	Loops    int       `json:"loops,omitempty"`
	Paused   bool      `json:"paused,omitempty"`
	// End is the time the final frame is held from.
	// It is nil for animations that loop forever.
	End *time.Time `json:"end,omitempty"`
}

// FrameRequest is the body of a frame call. If Time is nil, the server's
// current time is used.
type FrameRequest struct {
	Name string     `json:"name"`
	Time *time.Time `json:"time,omitempty"`
}

// FrameState is the body of a frame call response.
type FrameState struct {
	Name   string    `json:"name"`
	Time   time.Time `json:"time"`
	Frame  int       `json:"frame"`
	Frames int       `json:"frames"`
	// Next is the time of the next frame change. It is nil
	// if the frame will not change.
	Next *time.Time `json:"next,omitempty"`
}

// ScheduleRequest is the body of a schedule call. If From is nil, the
// server's current time is used. At most N changes are returned. If N is
// zero, DefaultScheduleLength is used.
type ScheduleRequest struct {
	Name string     `json:"name"`
	From *time.Time `json:"from,omitempty"`
	N    int        `json:"n,omitempty"`
}

const (
	// DefaultScheduleLength is the number of changes returned by
	// a schedule call with a zero N.
	DefaultScheduleLength = 16
	// MaxScheduleLength is the largest N accepted by a schedule call.
	MaxScheduleLength = 4096
)

// Change is a frame change.
type Change struct {
	Time  time.Time `json:"time"`
	Frame int       `json:"frame"`
}

// UnmarshalMessage is a strict equivalent of [json.Unmarshal].
func UnmarshalMessage[T any](data []byte, v *Message[T]) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	err := dec.Decode(v)
	if err != nil {
		return &jsonrpc2.WireError{
			Code:    ErrCodeInvalidMessage,
			Message: err.Error(),
			Data:    encodeErrData(err, data),
		}
	}
	if dec.More() {
		off := dec.InputOffset()
		return &jsonrpc2.WireError{
			Code:    ErrCodeInvalidMessage,
			Message: fmt.Sprintf("invalid character "+quoteChar(data[off])+" after top-level value at offset %d", off),
			Data:    encodeErrData(&json.SyntaxError{Offset: off}, data),
		}
	}
	return nil
}

// encodeErrData return the JSON encoding for an error's extra data.
func encodeErrData(err error, data []byte) json.RawMessage {
	type extra struct {
		Type    int    `json:"type,omitempty"`
		Offset  int64  `json:"offset,omitempty"`
		Message []byte `json:"msg"`
	}
	e := extra{
		Message: data,
	}
	switch err := err.(type) {
	case nil:
		return nil
	case *json.SyntaxError:
		e.Type = ErrCodeMessageSyntax
		e.Offset = err.Offset
	case *json.UnmarshalTypeError:
		e.Type = ErrCodeMessageType
		e.Offset = err.Offset
	default:
		switch {
		case err == io.EOF, err == io.ErrUnexpectedEOF:
			e.Type = ErrCodeShortMessage
		case strings.HasPrefix(err.Error(), "json: unknown field"):
			e.Type = ErrCodeMessageUnknownField
		}
	}
	var buf bytes.Buffer
	dec := json.NewEncoder(&buf)
	dec.SetEscapeHTML(false)
	dec.Encode(e)
	return bytes.TrimSpace(buf.Bytes())
}

// NewError returns an error that will be encoded correctly in the RPC protocol.
func NewError(code int64, message string, data any) error {
	e := &jsonrpc2.WireError{
		Code:    code,
		Message: message,
	}
	e.Data = wireErrorData(data)
	return e
}

func wireErrorData(data any) json.RawMessage {
	if data == nil {
		return nil
	}
	var buf bytes.Buffer
	dec := json.NewEncoder(&buf)
	dec.SetEscapeHTML(false)
	err := dec.Encode(data)
	if err != nil {
		b, _ := json.Marshal("!" + err.Error())
		return b
	}
	return bytes.TrimSpace(buf.Bytes())
}

// quoteChar formats c as a quoted character literal.
func quoteChar(c byte) string {
	// special cases - different from quoted strings
	if c == '\'' {
		return `'\''`
	}
	if c == '"' {
		return `'"'`
	}

	// use quoted string with different quotation marks
	s := strconv.Quote(string(c))
	return "'" + s[1:len(s)-1] + "'"
}

// None is an empty parameter or response slot.
type None struct{}

// Duration is a helper for duration fields.
type Duration struct {
	time.Duration
}

func (d Duration) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Duration) UnmarshalJSON(data []byte) error {
	var text string
	err := json.Unmarshal(data, &text)
	if err != nil {
		return err
	}
	d.Duration, err = time.ParseDuration(text)
	return err
}
