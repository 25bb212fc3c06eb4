// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// The frames executable reports the wall-clock synchronized frame and
// upcoming frame changes of an animation without a running server.
//
// The animation source is one of a GIF file, a list of per-frame delays,
// a constant frame rate or a scrolling text string. The result is written
// to stdout as JSON.
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/lucasb-eyer/go-colorful"

	"github.com/kortschak/framesync/internal/animation"
	"github.com/kortschak/framesync/internal/version"
	"github.com/kortschak/framesync/rpc"
	"github.com/kortschak/framesync/timing"
)

// Exit status codes.
const (
	success       = 0
	internalError = 1 << (iota - 1)
	invocationError
)

func main() { os.Exit(Main()) }

func Main() int {
	gifPath := flag.String("gif", "", "GIF file source")
	delays := flag.String("delays", "", "comma-separated frame duration source (e.g. 100ms,250ms)")
	seconds := flag.String("seconds", "", "comma-separated frame duration source in seconds (e.g. 0.1,0.25)")
	frames := flag.Int("frames", 0, "constant rate source frame count (requires -duration)")
	duration := flag.Duration("duration", 0, "constant rate source loop duration (requires -frames)")
	txt := flag.String("text", "", "scrolling text source")
	size := flag.String("size", "72x13", "text source frame size (WxH)")
	delay := flag.Duration("delay", 200*time.Millisecond, "text source frame delay")
	fg := flag.String("fg", "#ffffff", "text source foreground hex color")
	bg := flag.String("bg", "#000000", "text source background hex color")
	start := flag.String("start", "", "RFC 3339 start of the first loop (default Unix epoch)")
	now := flag.String("now", "", "RFC 3339 query time (default current time)")
	loops := flag.Int("loops", 0, "number of loops to play, overriding the source (0 uses source loop count)")
	paused := flag.Bool("paused", false, "report a paused schedule")
	n := flag.Int("n", 8, "maximum number of frame changes to report")
	pngPath := flag.String("png", "", "write the current frame to this PNG file (gif and text sources only)")
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

	var sources int
	for _, set := range []bool{*gifPath != "", *delays != "", *seconds != "", *frames != 0 || *duration != 0, *txt != ""} {
		if set {
			sources++
		}
	}
	if sources != 1 {
		fmt.Fprintln(os.Stderr, "exactly one animation source must be specified")
		flag.Usage()
		return invocationError
	}
	if *n < 0 {
		fmt.Fprintln(os.Stderr, "invalid schedule length")
		return invocationError
	}

	startTime := time.Unix(0, 0).UTC()
	if *start != "" {
		var err error
		startTime, err = time.Parse(time.RFC3339Nano, *start)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid start: %v\n", err)
			return invocationError
		}
	}
	nowTime := time.Now()
	if *now != "" {
		var err error
		nowTime, err = time.Parse(time.RFC3339Nano, *now)
		if err != nil {
			fmt.Fprintf(os.Stderr, "invalid now: %v\n", err)
			return invocationError
		}
	}

	var (
		anim *animation.Animation
		t    timing.Timing
		err  error
	)
	switch {
	case *gifPath != "":
		anim, err = decodeGIF(*gifPath)
	case *delays != "":
		var d []time.Duration
		d, err = parseList(*delays, time.ParseDuration)
		if err == nil {
			t, err = timing.New(d)
		}
	case *seconds != "":
		var s []float64
		s, err = parseList(*seconds, func(s string) (float64, error) {
			return strconv.ParseFloat(s, 64)
		})
		if err == nil {
			var d []time.Duration
			d, err = timing.FromSeconds(s)
			if err == nil {
				t, err = timing.New(d)
			}
		}
	case *frames != 0 || *duration != 0:
		if *frames <= 0 || *duration <= 0 {
			err = errors.New("-frames and -duration must both be positive")
			break
		}
		t = timing.NewConstant(*frames, *duration)
	case *txt != "":
		var (
			bound image.Rectangle
			pal   color.Palette
		)
		bound, err = parseSize(*size)
		if err == nil {
			pal, err = palette(*bg, *fg)
		}
		if err == nil {
			anim, err = animation.Text(*txt).Animation(bound, pal, 1, 0, *delay)
		}
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return invocationError
	}

	var p timing.Player
	if anim != nil {
		p = anim.Player(startTime)
	} else {
		p = timing.Player{Timing: t, Start: startTime}
	}
	if *loops != 0 {
		p.Loops = *loops
	}
	p.Paused = *paused

	res := report(p, nowTime, *n)
	if *pngPath != "" {
		if anim == nil {
			fmt.Fprintln(os.Stderr, "-png requires an image source")
			return invocationError
		}
		err = writePNG(*pngPath, anim.Image(p, nowTime))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return internalError
		}
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "\t")
	err = enc.Encode(res)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return internalError
	}
	return success
}

// result is the JSON report of an animation's state.
type result struct {
	Time     time.Time    `json:"time"`
	Frame    int          `json:"frame"`
	Frames   int          `json:"frames"`
	Duration rpc.Duration `json:"duration"`
	Loops    int          `json:"loops,omitempty"`
	End      *time.Time   `json:"end,omitempty"`
	Schedule []rpc.Change `json:"schedule"`
}

func report(p timing.Player, now time.Time, n int) result {
	res := result{
		Time:     now,
		Frame:    p.Frame(now),
		Frames:   p.Timing.Frames(),
		Duration: rpc.Duration{Duration: p.Timing.Duration()},
		Loops:    p.Loops,
		Schedule: []rpc.Change{},
	}
	if end := p.End(); !end.IsZero() {
		res.End = &end
	}
	c := p.Cursor(now)
	for len(res.Schedule) < n {
		t, ok := c.Next()
		if !ok {
			break
		}
		res.Schedule = append(res.Schedule, rpc.Change{Time: t, Frame: c.Frame()})
	}
	return res
}

func decodeGIF(path string) (*animation.Animation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	r := animation.AsReadPeeker(f)
	if !animation.IsGIF(r) {
		return nil, fmt.Errorf("%s: not a gif", path)
	}
	return animation.DecodeGIF(r)
}

func parseList[T any](list string, parse func(string) (T, error)) ([]T, error) {
	fields := strings.Split(list, ",")
	vals := make([]T, len(fields))
	for i, f := range fields {
		v, err := parse(strings.TrimSpace(f))
		if err != nil {
			return nil, fmt.Errorf("invalid list element %d: %w", i, err)
		}
		vals[i] = v
	}
	return vals, nil
}

func parseSize(s string) (image.Rectangle, error) {
	w, h, ok := strings.Cut(s, "x")
	if !ok {
		return image.Rectangle{}, fmt.Errorf("invalid size: %q", s)
	}
	dx, err := strconv.Atoi(w)
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("invalid size width: %w", err)
	}
	dy, err := strconv.Atoi(h)
	if err != nil {
		return image.Rectangle{}, fmt.Errorf("invalid size height: %w", err)
	}
	if dx <= 0 || dy <= 0 {
		return image.Rectangle{}, fmt.Errorf("invalid size: %q", s)
	}
	return image.Rect(0, 0, dx, dy), nil
}

// palette returns a palette of the provided hex colors.
func palette(hex ...string) (color.Palette, error) {
	pal := make(color.Palette, len(hex))
	for i, h := range hex {
		c, err := colorful.Hex(h)
		if err != nil {
			return nil, fmt.Errorf("invalid color: %w", err)
		}
		pal[i] = c
	}
	return pal, nil
}

func writePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	err = png.Encode(f, img)
	if err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
