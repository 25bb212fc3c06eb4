// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package animation

import (
	"errors"
	"image"
	"image/color"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/image/draw"
	"golang.org/x/image/font/basicfont"

	"github.com/kortschak/framesync/internal/text"
)

// Text is a scrolling text animator.
type Text string

// Animation returns an Animation presenting the full length of the receiver
// within the given bounds using [basicfont.Face7x13]. Text that fits within
// the bounds is rendered as a single centered frame, otherwise the text
// scrolls through the bounds one character per frame, with each frame
// displayed for delay. The provided palette must include the fg and bg
// indexes which provide the foreground and background colors.
func (t Text) Animation(bound image.Rectangle, pal color.Palette, fg, bg byte, delay time.Duration) (*Animation, error) {
	if int(fg) >= len(pal) || int(bg) >= len(pal) {
		return nil, errors.New("color index not in palette")
	}
	fnt := basicfont.Face7x13
	rows, cols := text.Grid(bound, fnt)
	s := string(t)

	background := &image.Uniform{pal[bg]}
	render := func(lines []string, center bool) image.Image {
		dst := image.NewPaletted(bound, pal)
		draw.Draw(dst, dst.Bounds(), background, image.Point{}, draw.Src)
		text.Draw(dst, lines, pal[fg], fnt, center)
		return dst
	}

	if utf8.RuneCountInString(s) <= rows*cols {
		lines := text.Lines(s, cols, true)
		if len(lines) <= rows {
			return New([]image.Image{render(lines, true)}, []time.Duration{delay}, 1)
		}
	}
	if rows*cols < 4 {
		return nil, errors.New("bound too small")
	}

	// Lead in with blank space so the text enters from the
	// bottom right of the bounds.
	r := []rune(strings.Repeat(" ", rows*cols-4) + s)
	frames := make([]image.Image, len(r))
	for i := range r {
		frames[i] = render(text.Lines(string(r[i:min(i+rows*cols, len(r))]), cols, false), false)
	}
	return Images(frames, delay, 0)
}
