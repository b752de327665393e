package ui

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cansyan/machview/machine"
	"github.com/mattn/go-runewidth"
)

const (
	// columns after the name: ' ' + mode(2) + ' ' + size(5)
	detailCols = 9
	sizeCols   = 5

	runningMarker = "● "
	ellipsis      = ".."
	// SizeOverflow is shown for sizes beyond the largest unit.
	SizeOverflow = "huge"
)

var sizeUnits = []string{"", "k", "M", "G", "T"}

// FormatSize renders n in the largest binary unit whose power of 1024
// does not exceed n, truncating the value.
func FormatSize(n uint64) string {
	order := 0
	for order+1 < len(sizeUnits) && n>>(10*(order+1)) > 0 {
		order++
	}
	if order == len(sizeUnits)-1 && n>>(10*len(sizeUnits)) > 0 {
		return SizeOverflow
	}
	return strconv.FormatUint(n>>(10*order), 10) + sizeUnits[order]
}

// markerWidth is the width of the running marker. "●" is ambiguous
// width, so it takes two columns in East Asian locales.
func markerWidth() int { return runewidth.StringWidth(runningMarker) }

// NameWidth is the column budget for image names on a surface w wide.
// With a two column marker this is w-11.
func NameWidth(w int) int { return max(w-markerWidth()-detailCols, 0) }

// TruncateName fits name into width columns, replacing the tail with ".."
// when it does not fit.
func TruncateName(name string, width int) string {
	if runewidth.StringWidth(name) <= width {
		return name
	}
	if width < len(ellipsis) {
		return runewidth.Truncate(name, width, "")
	}
	return runewidth.Truncate(name, width, ellipsis)
}

// FirstVisible returns the index of the top row so the cursor row stays
// on a surface h rows tall.
func FirstVisible(cursor, h int) int {
	return max(cursor-h+1, 0)
}

// DrawImageList erases s and paints one row per image, highlighting the
// row at cursor. Running images get a marker and a bold row.
// The caller keeps cursor within [0, snap.Len()).
func DrawImageList(s *Surface, snap machine.Snapshot, cursor int, p Palette) error {
	if err := s.Erase(); err != nil {
		return err
	}
	w, h := s.Size()
	nameW := NameWidth(w)
	top := FirstVisible(cursor, h)

	for i := top; i < snap.Len() && i-top < h; i++ {
		if err := drawRow(s, i-top, snap.At(i), i == cursor, nameW, p); err != nil {
			return fmt.Errorf("draw row %d: %w", i, err)
		}
	}
	return nil
}

func drawRow(s *Surface, y int, img machine.Image, selected bool, nameW int, p Palette) error {
	w, _ := s.Size()
	markerW := min(markerWidth(), w)
	if selected {
		bg := s.BG()
		s.SetBG(p.Selected)
		defer s.SetBG(bg)
	}
	if err := s.CursorMove(y, 0); err != nil {
		return err
	}

	bold := false
	if img.Running() {
		fg := s.FG()
		s.SetFG(p.Alert)
		if _, err := s.PutStr(runewidth.Truncate(runningMarker, markerW, "")); err != nil {
			return err
		}
		s.SetFG(fg)
		s.SetBold(true)
		bold = true
	} else if _, err := s.PutStr(strings.Repeat(" ", markerW)); err != nil {
		return err
	}

	name := runewidth.FillRight(TruncateName(img.Name, nameW), nameW)
	line := fmt.Sprintf("%s %s %*s", name, img.Mode(), sizeCols, FormatSize(img.Size))
	// narrow surfaces must not wrap into the next row
	line = runewidth.Truncate(line, w-markerW, "")
	_, err := s.PutStr(line)

	if bold {
		s.SetBold(false)
	}
	return err
}
