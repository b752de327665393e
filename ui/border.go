package ui

import (
	"errors"
	"fmt"
)

const (
	hLine          = '─'
	vLine          = '│'
	cornerTopLeft  = '┌'
	cornerTopRight = '┐'
	cornerBotLeft  = '└'
	cornerBotRight = '┘'
)

// ErrSurfaceTooSmall is returned when a frame does not fit the surface.
var ErrSurfaceTooSmall = errors.New("ui: surface too small for frame")

// DecorationError reports a failed border or shadow paint. It aborts
// whatever dialog was being built.
type DecorationError struct {
	Op  string
	Err error
}

func (e *DecorationError) Error() string { return "ui: decorate " + e.Op + ": " + e.Err.Error() }
func (e *DecorationError) Unwrap() error { return e.Err }

// frameBounds returns the column and row of the frame's right and bottom
// edges. With a shadow the last two columns and last row stay free.
func frameBounds(w, h int, shadow bool) (fx, fy int) {
	if shadow {
		return w - 3, h - 2
	}
	return w - 1, h - 1
}

// DrawBorder paints a box around the edge of s and, if asked, an L-shaped
// drop shadow along its right and bottom sides. The shadow leaves glyphs
// beneath intact and only darkens their background.
func DrawBorder(s *Surface, shadow bool, p Palette) error {
	if !s.Valid() {
		return &DecorationError{Op: "frame", Err: ErrInvalidSurface}
	}
	w, h := s.Size()
	fx, fy := frameBounds(w, h, shadow)
	if fx < 1 || fy < 1 {
		return &DecorationError{Op: "frame", Err: fmt.Errorf("%w: %dx%d", ErrSurfaceTooSmall, w, h)}
	}

	saved := s.Channels()
	defer s.SetChannels(saved)

	b := borderPen{s: s}
	s.SetChannels(p.Frame)

	// top edge
	b.put(0, 0, cornerTopLeft)
	for x := 1; x < fx; x++ {
		b.put(x, 0, hLine)
	}
	// left edge
	for y := 1; y < fy; y++ {
		b.put(0, y, vLine)
	}
	// bottom edge
	b.put(0, fy, cornerBotLeft)
	for x := 1; x < fx; x++ {
		b.put(x, fy, hLine)
	}
	b.put(fx, fy, cornerBotRight)
	// right edge
	for y := 1; y < fy; y++ {
		b.put(fx, y, vLine)
	}
	b.put(fx, 0, cornerTopRight)
	if b.err != nil {
		return &DecorationError{Op: "frame", Err: b.err}
	}

	if !shadow {
		return nil
	}

	// gap between the frame corners and the offset shadow
	s.SetChannels(Channels{FG: TransparentChannel, BG: TransparentChannel})
	b.put(fx+1, 0, ' ')
	b.put(fx+2, 0, ' ')
	b.put(0, fy+1, ' ')
	b.put(1, fy+1, ' ')

	s.SetChannels(Channels{FG: TransparentChannel, BG: p.Shadow})
	for x := 2; x < w; x++ {
		b.put(x, fy+1, ' ')
	}
	for y := 1; y < h; y++ {
		b.put(fx+1, y, ' ')
		b.put(fx+2, y, ' ')
	}
	if b.err != nil {
		return &DecorationError{Op: "shadow", Err: b.err}
	}
	return nil
}

// borderPen writes single glyphs and keeps the first error.
type borderPen struct {
	s   *Surface
	err error
}

func (b *borderPen) put(x, y int, r rune) {
	if b.err != nil {
		return
	}
	_, b.err = b.s.PutStrYX(y, x, string(r))
}
