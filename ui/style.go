// Package ui is a small character-cell compositor built on top of tcell.
// Surfaces are buffered independently and composited into one frame on
// Render, so transparent cells let lower surfaces show through.
package ui

import (
	"strconv"
	"strings"

	"github.com/gdamore/tcell/v2"
)

// Channel packs a 24-bit RGB color, a flag telling whether the color is
// set at all (unset means the terminal default) and an alpha bit.
type Channel uint32

const (
	channelRGBMask     Channel = 0x00ffffff
	channelSet         Channel = 1 << 24
	channelTransparent Channel = 1 << 25
)

// Alpha is the opacity of a Channel.
type Alpha uint8

const (
	AlphaOpaque Alpha = iota
	AlphaTransparent
)

var (
	// DefaultChannel is the opaque terminal default color.
	DefaultChannel Channel
	// TransparentChannel lets whatever is beneath show through.
	TransparentChannel = channelTransparent
)

// RGB returns an opaque channel with the given color.
func RGB(r, g, b uint8) Channel {
	return channelSet | Channel(r)<<16 | Channel(g)<<8 | Channel(b)
}

// Hex parses "#rrggbb" or "rrggbb". Anything else yields DefaultChannel.
func Hex(s string) Channel {
	s = strings.TrimPrefix(s, "#")
	if len(s) != 6 {
		return DefaultChannel
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return DefaultChannel
	}
	return channelSet | Channel(v)
}

func (c Channel) Transparent() bool { return c&channelTransparent != 0 }

// IsDefault reports whether the channel uses the terminal default color.
func (c Channel) IsDefault() bool { return c&channelSet == 0 }

func (c Channel) RGB() (r, g, b uint8) {
	v := c & channelRGBMask
	return uint8(v >> 16), uint8(v >> 8), uint8(v)
}

func (c Channel) WithAlpha(a Alpha) Channel {
	if a == AlphaTransparent {
		return c | channelTransparent
	}
	return c &^ channelTransparent
}

// Color converts the channel to a tcell color, ignoring alpha.
func (c Channel) Color() tcell.Color {
	if c.IsDefault() {
		return tcell.ColorDefault
	}
	return tcell.NewHexColor(int32(c & channelRGBMask))
}

// Channels is a foreground/background pair.
type Channels struct {
	FG, BG Channel
}

// Style is what gets stamped on a cell when it is written.
type Style struct {
	Channels
	Bold bool
}

// Apply converts s to the style a screen cell is drawn with.
func (s Style) Apply() tcell.Style {
	return tcell.StyleDefault.
		Foreground(s.FG.Color()).
		Background(s.BG.Color()).
		Bold(s.Bold)
}
