package ui

import (
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSurface_PutStr(t *testing.T) {
	tests := []struct {
		name      string
		w, h      int
		scrolling bool
		input     string
		wantN     int
		wantRows  []string
	}{
		{"clipped at right edge", 5, 2, false, "hello world", 5, []string{"hello", "....."}},
		{"wraps onto next row", 5, 2, true, "abcdefg", 7, []string{"abcde", "fg..."}},
		{"scrolls when full", 3, 2, true, "abcdefghi", 9, []string{"def", "ghi"}},
		{"newline with scrolling", 4, 2, true, "ab\ncd", 4, []string{"ab..", "cd.."}},
		{"newline without scrolling stops", 4, 2, false, "ab\ncd", 2, []string{"ab..", "...."}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c, _ := newTestCompositor(t, 20, 5)
			s, err := c.Root().NewChild(0, 0, tt.w, tt.h)
			require.NoError(t, err)
			s.SetScrolling(tt.scrolling)

			n, err := s.PutStr(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.wantN, n)
			for y, want := range tt.wantRows {
				assert.Equal(t, want, rowText(s, y), "row %d", y)
			}
		})
	}
}

func TestSurface_WideRunes(t *testing.T) {
	c, _ := newTestCompositor(t, 20, 5)
	s, err := c.Root().NewChild(0, 0, 4, 1)
	require.NoError(t, err)

	n, err := s.PutStr("日本語")
	require.NoError(t, err)
	assert.Equal(t, 4, n)

	r, _ := s.Cell(0, 0)
	assert.Equal(t, '日', r)
	r, _ = s.Cell(1, 0)
	assert.Equal(t, rune(0), r)
	r, _ = s.Cell(2, 0)
	assert.Equal(t, '本', r)
}

func TestSurface_CursorAndStyle(t *testing.T) {
	c, _ := newTestCompositor(t, 20, 5)
	s, err := c.Root().NewChild(2, 1, 6, 3)
	require.NoError(t, err)

	x, y := s.Position()
	assert.Equal(t, [2]int{2, 1}, [2]int{x, y})
	w, h := s.Size()
	assert.Equal(t, [2]int{6, 3}, [2]int{w, h})

	require.NoError(t, s.CursorMove(2, 3))
	cy, cx := s.Cursor()
	assert.Equal(t, [2]int{2, 3}, [2]int{cy, cx})

	assert.ErrorIs(t, s.CursorMove(3, 0), ErrOutOfBounds)
	assert.ErrorIs(t, s.CursorMove(0, -1), ErrOutOfBounds)

	red := RGB(255, 0, 0)
	s.SetFG(red)
	s.SetBG(Hex("#000080"))
	s.SetBold(true)
	assert.Equal(t, red, s.FG())
	assert.Equal(t, Hex("#000080"), s.BG())
	assert.True(t, s.Bold())

	_, err = s.PutStrYX(0, 0, "x")
	require.NoError(t, err)
	r, st := s.Cell(0, 0)
	assert.Equal(t, 'x', r)
	assert.Equal(t, Style{Channels: Channels{FG: red, BG: Hex("#000080")}, Bold: true}, st)
}

func TestSurface_EraseRestoresBase(t *testing.T) {
	c, _ := newTestCompositor(t, 20, 5)
	s, err := c.Root().NewChild(0, 0, 4, 1)
	require.NoError(t, err)
	base := Style{Channels: Channels{FG: RGB(1, 2, 3), BG: RGB(4, 5, 6)}}
	require.NoError(t, s.SetBase('-', base))

	_, err = s.PutStr("ab")
	require.NoError(t, err)
	assert.Equal(t, "ab--", rowText(s, 0))

	require.NoError(t, s.Erase())
	assert.Equal(t, "----", rowText(s, 0))
	_, st := s.Cell(0, 0)
	assert.Equal(t, base, st)
	cy, cx := s.Cursor()
	assert.Zero(t, cy)
	assert.Zero(t, cx)
}

func TestSurface_Destroy(t *testing.T) {
	c, _ := newTestCompositor(t, 20, 5)
	parent, err := c.Root().NewChild(0, 0, 10, 4)
	require.NoError(t, err)
	child, err := parent.NewChild(1, 1, 3, 1)
	require.NoError(t, err)
	sibling, err := c.Root().NewChild(0, 0, 1, 1)
	require.NoError(t, err)

	assert.Equal(t, parent.ID(), child.Parent().ID())
	assert.Nil(t, c.Root().Parent())

	require.NoError(t, parent.Destroy())
	assert.False(t, parent.Valid())
	assert.False(t, child.Valid())
	assert.True(t, sibling.Valid())

	_, err = child.PutStr("x")
	assert.ErrorIs(t, err, ErrInvalidSurface)
	assert.ErrorIs(t, parent.Destroy(), ErrInvalidSurface)
	_, err = parent.NewChild(0, 0, 1, 1)
	assert.ErrorIs(t, err, ErrInvalidSurface)
	assert.ErrorIs(t, c.Root().Destroy(), ErrInvalidSurface)

	_, err = c.Root().NewChild(0, 0, 0, 1)
	assert.Error(t, err)
}

func TestCompositor_RenderNested(t *testing.T) {
	c, screen := newTestCompositor(t, 20, 5)
	outer, err := c.Root().NewChild(2, 1, 10, 3)
	require.NoError(t, err)
	inner, err := outer.NewChild(3, 1, 4, 1)
	require.NoError(t, err)
	_, err = inner.PutStr("abcd")
	require.NoError(t, err)

	require.NoError(t, c.Render())
	assert.Equal(t, "abcd", screenText(screen, 2, 5, 9))
	assert.Equal(t, "    ", screenText(screen, 1, 5, 9))
}

func TestCompositor_Transparency(t *testing.T) {
	c, screen := newTestCompositor(t, 10, 2)
	under, err := c.Root().NewChild(0, 0, 6, 1)
	require.NoError(t, err)
	under.SetChannels(Channels{FG: RGB(200, 200, 200), BG: RGB(0, 0, 0)})
	_, err = under.PutStr("XYZXYZ")
	require.NoError(t, err)

	shade := RGB(50, 50, 50)
	over, err := c.Root().NewChild(1, 0, 5, 1)
	require.NoError(t, err)
	// first two cells tint, last two are fully see-through
	over.SetChannels(Channels{FG: TransparentChannel, BG: shade})
	_, err = over.PutStr("  ")
	require.NoError(t, err)
	over.SetChannels(Channels{FG: TransparentChannel, BG: TransparentChannel})
	_, err = over.PutStr("  ")
	require.NoError(t, err)

	require.NoError(t, c.Render())
	assert.Equal(t, "XYZXYZ", screenText(screen, 0, 0, 6))

	fg, bg, _ := screenColors(screen, 1, 0)
	assert.Equal(t, RGB(200, 200, 200).Color(), fg)
	assert.Equal(t, shade.Color(), bg)

	_, bg, _ = screenColors(screen, 3, 0)
	assert.Equal(t, RGB(0, 0, 0).Color(), bg)

	// unwritten cells of a surface without a base stay see-through too
	_, bg, _ = screenColors(screen, 5, 0)
	assert.Equal(t, RGB(0, 0, 0).Color(), bg)
}

func TestCompositor_OpaqueOverwrites(t *testing.T) {
	c, screen := newTestCompositor(t, 10, 1)
	a, err := c.Root().NewChild(0, 0, 5, 1)
	require.NoError(t, err)
	_, err = a.PutStr("aaaaa")
	require.NoError(t, err)
	b, err := c.Root().NewChild(1, 0, 3, 1)
	require.NoError(t, err)
	require.NoError(t, b.SetBase(' ', Style{Channels: Channels{FG: RGB(1, 1, 1), BG: RGB(9, 9, 9)}}))
	b.SetBold(true)
	_, err = b.PutStr("b")
	require.NoError(t, err)

	require.NoError(t, c.Render())
	assert.Equal(t, "ab  a", screenText(screen, 0, 0, 5))
	_, _, attr := screenColors(screen, 1, 0)
	assert.NotZero(t, attr&tcell.AttrBold)
	_, bg, _ := screenColors(screen, 2, 0)
	assert.Equal(t, RGB(9, 9, 9).Color(), bg)
	_, _, st, _ := screen.GetContent(2, 0)
	assert.Equal(t, Style{Channels: Channels{FG: RGB(1, 1, 1), BG: RGB(9, 9, 9)}}.Apply(), st)
}

func TestCompositor_RenderWithoutScreen(t *testing.T) {
	c, _ := newTestCompositor(t, 10, 1)
	c.Detach()
	assert.ErrorIs(t, c.Render(), ErrScreenClosed)
}
