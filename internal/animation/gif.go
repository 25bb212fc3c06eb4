// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package animation

import (
	"bufio"
	"fmt"
	"image"
	"image/color"
	"image/gif"
	"io"
	"time"

	"golang.org/x/image/draw"

	"github.com/kortschak/framesync/timing"
)

// IsGIF returns whether the data held by r is a GIF image.
func IsGIF(r ReadPeeker) bool {
	return hasMagic("GIF8?a", r)
}

// ReadPeeker is an io.Reader that can also peek n bytes ahead.
type ReadPeeker interface {
	io.Reader
	Peek(n int) ([]byte, error)
}

// AsReadPeeker converts an io.Reader to a ReadPeeker.
func AsReadPeeker(r io.Reader) ReadPeeker {
	if r, ok := r.(ReadPeeker); ok {
		return r
	}
	return bufio.NewReader(r)
}

// hasMagic returns whether r starts with the provided magic bytes.
func hasMagic(magic string, r ReadPeeker) bool {
	b, err := r.Peek(len(magic))
	if err != nil || len(b) != len(magic) {
		return false
	}
	for i, c := range b {
		if magic[i] != c && magic[i] != '?' {
			return false
		}
	}
	return true
}

// DecodeGIF returns an Animation decoded from the provided io.Reader.
// Frames are composited onto the GIF's logical screen according to their
// disposal methods so that each frame of the result is complete. GIF delay,
// disposal and global background index values are checked for validity.
func DecodeGIF(r io.Reader) (*Animation, error) {
	g, err := gif.DecodeAll(r)
	if err != nil {
		return nil, err
	}
	if len(g.Image) != len(g.Delay) && g.Delay != nil {
		return nil, fmt.Errorf("mismatched image count and delay count: %d != %d", len(g.Image), len(g.Delay))
	}
	if len(g.Image) != len(g.Disposal) && g.Disposal != nil {
		return nil, fmt.Errorf("mismatched image count and disposal count: %d != %d", len(g.Image), len(g.Disposal))
	}
	pal, ok := g.Config.ColorModel.(color.Palette)
	if idx := int(g.BackgroundIndex); ok && len(pal) != 0 && idx >= len(pal) {
		return nil, fmt.Errorf("global background colour index not in palette: %d", idx)
	}

	delays := make([]time.Duration, len(g.Image))
	for i := range delays {
		var cs int
		if g.Delay != nil {
			cs = g.Delay[i]
		}
		delays[i] = GIFDelay(cs)
	}
	t, err := timing.New(delays)
	if err != nil {
		return nil, err
	}
	return &Animation{
		Frames: composite(g),
		Timing: t,
		Loops:  GIFLoops(g.LoopCount),
	}, nil
}

// GIFDelay returns the display duration for a GIF frame delay in
// hundredths of a second. Delays of 10ms or less are displayed for 100ms,
// matching the behaviour of common web browsers.
func GIFDelay(cs int) time.Duration {
	if cs <= 1 {
		cs = 10
	}
	return time.Duration(cs) * 10 * time.Millisecond
}

// GIFLoops returns the number of loops played for a GIF loop count.
// A loop count of zero loops forever, a negative loop count plays once
// and otherwise the animation is played LoopCount+1 times.
func GIFLoops(n int) int {
	switch {
	case n == 0:
		return 0
	case n < 0:
		return 1
	}
	return n + 1
}

// composite renders each of g's frames onto a canvas the size of the
// logical screen, returning a complete image for each frame.
func composite(g *gif.GIF) []image.Image {
	const (
		restoreBackground = 2
		restorePrevious   = 3
	)
	screen := image.Rect(0, 0, g.Config.Width, g.Config.Height)
	if screen.Empty() {
		for _, f := range g.Image {
			screen = screen.Union(f.Bounds())
		}
	}
	canvas := image.NewRGBA(screen)

	frames := make([]image.Image, len(g.Image))
	for i, f := range g.Image {
		disposal := byte(0)
		if g.Disposal != nil {
			disposal = g.Disposal[i]
		}
		var restore *image.RGBA
		if disposal == restorePrevious {
			restore = image.NewRGBA(f.Bounds())
			draw.Copy(restore, f.Bounds().Min, canvas, f.Bounds(), draw.Src, nil)
		}
		draw.Copy(canvas, f.Bounds().Min, f, f.Bounds(), draw.Over, nil)

		frame := image.NewRGBA(screen)
		copy(frame.Pix, canvas.Pix)
		frames[i] = frame

		switch disposal {
		case restoreBackground:
			draw.Draw(canvas, f.Bounds(), image.Transparent, image.Point{}, draw.Src)
		case restorePrevious:
			draw.Copy(canvas, f.Bounds().Min, restore, restore.Bounds(), draw.Src, nil)
		}
	}
	return frames
}
