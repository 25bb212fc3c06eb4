// Copyright ©2026 Dan Kortschak. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package text provides functions for laying out and rendering fixed-width
// [basicfont.Face] text to an image.
package text

import (
	"image"
	"image/color"
	"strings"

	"github.com/bbrks/wrap/v2"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// Grid returns the number of text rows and columns of fnt that fit within
// bound.
func Grid(bound image.Rectangle, fnt *basicfont.Face) (rows, cols int) {
	return bound.Dy() / fnt.Height, bound.Dx() / fnt.Advance
}

// Lines breaks s into lines of at most cols runes. If words is true, lines
// are broken at word boundaries where possible and trimmed of surrounding
// space.
func Lines(s string, cols int, words bool) []string {
	if cols < 1 {
		return nil
	}
	if words {
		w := wrap.NewWrapper()
		w.StripTrailingNewline = true
		w.CutLongWords = true
		lines := strings.Split(w.Wrap(s, cols), "\n")
		for i, l := range lines {
			lines[i] = strings.TrimSpace(l)
		}
		return lines
	}
	var lines []string
	for r := []rune(s); len(r) != 0; {
		n := min(cols, len(r))
		lines = append(lines, string(r[:n]))
		r = r[n:]
	}
	return lines
}

// Draw renders lines onto dst in col using fnt. If center is true, the
// block of text is centered in dst, otherwise it is drawn from the top
// left corner.
func Draw(dst draw.Image, lines []string, col color.Color, fnt *basicfont.Face, center bool) {
	b := dst.Bounds()
	origin := b.Min
	if center {
		var width fixed.Int26_6
		for _, l := range lines {
			width = max(width, font.MeasureString(fnt, l))
		}
		height := fnt.Height * len(lines)
		origin.X += (b.Dx() - width.Ceil()) / 2
		origin.Y += (b.Dy() - height) / 2
	}
	d := font.Drawer{Dst: dst, Src: image.NewUniform(col), Face: fnt}
	for i, l := range lines {
		d.Dot = fixed.P(origin.X, origin.Y+fnt.Ascent+fnt.Height*i)
		d.DrawString(l)
	}
}
