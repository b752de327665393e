package ui

import (
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
	"github.com/stretchr/testify/require"
)

// newTestCompositor also pins ambiguous-width runes (box drawing, the
// running marker) to one column, whatever the locale running the tests.
func newTestCompositor(t *testing.T, w, h int) (*Compositor, tcell.SimulationScreen) {
	t.Helper()
	setEastAsianWidth(t, false)
	screen := tcell.NewSimulationScreen("UTF-8")
	require.NoError(t, screen.Init())
	screen.SetSize(w, h)
	t.Cleanup(screen.Fini)
	return NewCompositor(screen), screen
}

// setEastAsianWidth sets how ambiguous-width runes are measured for the
// rest of the test.
func setEastAsianWidth(t *testing.T, on bool) {
	t.Helper()
	prev := runewidth.DefaultCondition.EastAsianWidth
	runewidth.DefaultCondition.EastAsianWidth = on
	t.Cleanup(func() { runewidth.DefaultCondition.EastAsianWidth = prev })
}

// rowText reads row y of s from its buffer; unwritten cells without a
// base glyph read as '.'.
func rowText(s *Surface, y int) string {
	w, _ := s.Size()
	var b strings.Builder
	for x := range w {
		r, _ := s.Cell(x, y)
		if r == 0 {
			r = '.'
		}
		b.WriteRune(r)
	}
	return b.String()
}

func screenText(screen tcell.Screen, y, x0, x1 int) string {
	var b strings.Builder
	for x := x0; x < x1; x++ {
		r, _, _, _ := screen.GetContent(x, y)
		b.WriteRune(r)
	}
	return b.String()
}

func screenColors(screen tcell.Screen, x, y int) (fg, bg tcell.Color, attr tcell.AttrMask) {
	_, _, st, _ := screen.GetContent(x, y)
	return st.Decompose()
}
