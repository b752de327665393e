package ui

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
)

func TestChannel(t *testing.T) {
	c := RGB(0x12, 0x34, 0x56)
	r, g, b := c.RGB()
	assert.Equal(t, [3]uint8{0x12, 0x34, 0x56}, [3]uint8{r, g, b})
	assert.False(t, c.IsDefault())
	assert.False(t, c.Transparent())
	assert.Equal(t, tcell.NewHexColor(0x123456), c.Color())

	assert.Equal(t, c, Hex("#123456"))
	assert.Equal(t, c, Hex("123456"))
	assert.Equal(t, DefaultChannel, Hex("#12345"))
	assert.Equal(t, DefaultChannel, Hex("#zzzzzz"))

	// black is still a set color
	assert.False(t, RGB(0, 0, 0).IsDefault())
	assert.True(t, DefaultChannel.IsDefault())
	assert.Equal(t, tcell.ColorDefault, DefaultChannel.Color())
}

func TestChannel_WithAlpha(t *testing.T) {
	c := RGB(1, 2, 3)
	tc := c.WithAlpha(AlphaTransparent)
	assert.True(t, tc.Transparent())
	assert.Equal(t, c.Color(), tc.Color())
	assert.Equal(t, c, tc.WithAlpha(AlphaOpaque))
	assert.True(t, TransparentChannel.Transparent())
}

func TestStyle_Apply(t *testing.T) {
	st := Style{Channels: Channels{FG: RGB(255, 0, 0), BG: DefaultChannel}, Bold: true}
	fg, bg, attr := st.Apply().Decompose()
	assert.Equal(t, tcell.NewHexColor(0xff0000), fg)
	assert.Equal(t, tcell.ColorDefault, bg)
	assert.NotZero(t, attr&tcell.AttrBold)
}
