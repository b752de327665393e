package ui

import (
	"errors"
	"fmt"
	"slices"

	"github.com/gdamore/tcell/v2"
	"github.com/mattn/go-runewidth"
)

var (
	ErrInvalidSurface = errors.New("ui: invalid surface")
	ErrScreenClosed   = errors.New("ui: no screen attached")
	ErrOutOfBounds    = errors.New("ui: position outside surface")
)

// SurfaceID indexes a plane in the compositor arena. The root is always 0.
type SurfaceID int

const rootID SurfaceID = 0

type cell struct {
	r     rune // 0 means never written, the base cell shows instead
	cont  bool // right half of a wide rune
	style Style
}

// plane is the buffered state behind a Surface handle.
type plane struct {
	parent   SurfaceID
	children []SurfaceID
	x, y     int // relative to the parent
	w, h     int
	base     cell
	cells    []cell

	cx, cy    int
	style     Style
	scrolling bool
}

func newPlane(parent SurfaceID, x, y, w, h int) *plane {
	return &plane{
		parent: parent,
		x:      x,
		y:      y,
		w:      w,
		h:      h,
		cells:  make([]cell, w*h),
		// unbased surfaces are see-through
		base: cell{style: Style{Channels: Channels{FG: TransparentChannel, BG: TransparentChannel}}},
	}
}

func (p *plane) at(x, y int) cell {
	c := p.cells[y*p.w+x]
	if c.r == 0 && !c.cont {
		return p.base
	}
	return c
}

func (p *plane) scrollUp() {
	copy(p.cells, p.cells[p.w:])
	clear(p.cells[len(p.cells)-p.w:])
	p.cy = p.h - 1
}

// Compositor owns every surface and paints them onto a tcell screen.
type Compositor struct {
	screen tcell.Screen
	planes []*plane
	frame  []frameCell
}

// NewCompositor creates the root surface sized to the screen.
// The screen must already be initialized.
func NewCompositor(screen tcell.Screen) *Compositor {
	w, h := screen.Size()
	root := newPlane(-1, 0, 0, w, h)
	root.base = cell{r: ' '}
	return &Compositor{
		screen: screen,
		planes: []*plane{root},
	}
}

func (c *Compositor) Root() *Surface { return &Surface{c: c, id: rootID} }

// Detach forgets the screen; Render fails afterwards.
func (c *Compositor) Detach() { c.screen = nil }

func (c *Compositor) plane(id SurfaceID) (*plane, error) {
	if id < 0 || int(id) >= len(c.planes) || c.planes[id] == nil {
		return nil, ErrInvalidSurface
	}
	return c.planes[id], nil
}

func (c *Compositor) origin(id SurfaceID) (x, y int) {
	for id >= 0 {
		p := c.planes[id]
		x += p.x
		y += p.y
		id = p.parent
	}
	return x, y
}

type frameCell struct {
	r      rune
	cont   bool
	fg, bg Channel
	bold   bool
}

// Render composites the surface tree and flushes it in one paint.
// Children draw over their parents, siblings in creation order.
func (c *Compositor) Render() error {
	if c.screen == nil {
		return ErrScreenClosed
	}
	w, h := c.screen.Size()
	if cap(c.frame) < w*h {
		c.frame = make([]frameCell, w*h)
	}
	c.frame = c.frame[:w*h]
	for i := range c.frame {
		c.frame[i] = frameCell{r: ' '}
	}

	c.composite(rootID, w, h)

	for y := range h {
		for x := range w {
			fc := c.frame[y*w+x]
			if fc.cont {
				continue
			}
			st := Style{Channels: Channels{FG: fc.fg, BG: fc.bg}, Bold: fc.bold}
			c.screen.SetContent(x, y, fc.r, nil, st.Apply())
		}
	}
	c.screen.Show()
	return nil
}

func (c *Compositor) composite(id SurfaceID, fw, fh int) {
	p := c.planes[id]
	ox, oy := c.origin(id)
	for y := range p.h {
		fy := oy + y
		if fy < 0 || fy >= fh {
			continue
		}
		for x := range p.w {
			fx := ox + x
			if fx < 0 || fx >= fw {
				continue
			}
			src := p.at(x, y)
			if src.cont {
				continue
			}
			c.blend(fx, fy, fw, src)
		}
	}
	for _, child := range p.children {
		c.composite(child, fw, fh)
	}
}

// blend lays src over the frame cell at (x, y). A transparent background
// keeps the background beneath; a transparent foreground keeps the glyph
// and foreground beneath.
func (c *Compositor) blend(x, y, fw int, src cell) {
	i := y*fw + x
	dst := &c.frame[i]
	if !src.style.BG.Transparent() {
		dst.bg = src.style.BG
		if runewidth.RuneWidth(dst.r) == 2 && x+1 < fw {
			c.frame[i+1].bg = src.style.BG
		}
	}
	if src.style.FG.Transparent() || src.r == 0 {
		return
	}
	// break up a wide rune we are landing on
	if dst.cont && x > 0 {
		c.frame[i-1].r = ' '
	}
	if runewidth.RuneWidth(dst.r) == 2 && x+1 < fw {
		c.frame[i+1] = frameCell{r: ' ', fg: dst.fg, bg: c.frame[i+1].bg}
	}
	dst.r = src.r
	dst.cont = false
	dst.fg = src.style.FG
	dst.bold = src.style.Bold
	if runewidth.RuneWidth(src.r) == 2 && x+1 < fw {
		next := &c.frame[i+1]
		next.cont = true
		next.fg = src.style.FG
		if !src.style.BG.Transparent() {
			next.bg = src.style.BG
		}
	}
}

// Surface is a handle to a rectangular cell buffer owned by a Compositor.
// Handles stay cheap to copy; the state lives in the compositor arena.
type Surface struct {
	c  *Compositor
	id SurfaceID
}

func (s *Surface) ID() SurfaceID { return s.id }

func (s *Surface) plane() (*plane, error) {
	if s == nil || s.c == nil {
		return nil, ErrInvalidSurface
	}
	return s.c.plane(s.id)
}

// Valid reports whether the surface still exists.
func (s *Surface) Valid() bool {
	_, err := s.plane()
	return err == nil
}

// NewChild creates a surface at (x, y) relative to s.
func (s *Surface) NewChild(x, y, w, h int) (*Surface, error) {
	p, err := s.plane()
	if err != nil {
		return nil, err
	}
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("ui: invalid surface size %dx%d", w, h)
	}
	id := SurfaceID(len(s.c.planes))
	s.c.planes = append(s.c.planes, newPlane(s.id, x, y, w, h))
	p.children = append(p.children, id)
	return &Surface{c: s.c, id: id}, nil
}

// Parent returns the parent surface, or nil for the root.
func (s *Surface) Parent() *Surface {
	p, err := s.plane()
	if err != nil || p.parent < 0 {
		return nil
	}
	return &Surface{c: s.c, id: p.parent}
}

// Destroy releases s and all of its descendants.
func (s *Surface) Destroy() error {
	p, err := s.plane()
	if err != nil {
		return err
	}
	if s.id == rootID {
		return fmt.Errorf("ui: cannot destroy root: %w", ErrInvalidSurface)
	}
	for _, child := range slices.Clone(p.children) {
		_ = (&Surface{c: s.c, id: child}).Destroy()
	}
	if parent := s.c.planes[p.parent]; parent != nil {
		for i, id := range parent.children {
			if id == s.id {
				parent.children = slices.Delete(parent.children, i, i+1)
				break
			}
		}
	}
	s.c.planes[s.id] = nil
	return nil
}

// SetBase sets the glyph and style shown in cells that were never written.
func (s *Surface) SetBase(glyph rune, st Style) error {
	p, err := s.plane()
	if err != nil {
		return err
	}
	p.base = cell{r: glyph, style: st}
	return nil
}

func (s *Surface) Size() (w, h int) {
	p, err := s.plane()
	if err != nil {
		return 0, 0
	}
	return p.w, p.h
}

// Position returns the origin of s relative to its parent.
func (s *Surface) Position() (x, y int) {
	p, err := s.plane()
	if err != nil {
		return 0, 0
	}
	return p.x, p.y
}

func (s *Surface) Cursor() (y, x int) {
	p, err := s.plane()
	if err != nil {
		return 0, 0
	}
	return p.cy, p.cx
}

func (s *Surface) CursorMove(y, x int) error {
	p, err := s.plane()
	if err != nil {
		return err
	}
	if y < 0 || x < 0 || y >= p.h || x >= p.w {
		return fmt.Errorf("%w: (%d,%d) in %dx%d", ErrOutOfBounds, x, y, p.w, p.h)
	}
	p.cy, p.cx = y, x
	return nil
}

// SetScrolling makes writes past the right edge continue on the next
// row, scrolling the surface up once the last row is full.
func (s *Surface) SetScrolling(on bool) {
	if p, err := s.plane(); err == nil {
		p.scrolling = on
	}
}

func (s *Surface) Channels() Channels {
	p, err := s.plane()
	if err != nil {
		return Channels{}
	}
	return p.style.Channels
}

func (s *Surface) SetChannels(ch Channels) {
	if p, err := s.plane(); err == nil {
		p.style.Channels = ch
	}
}

func (s *Surface) FG() Channel { return s.Channels().FG }
func (s *Surface) BG() Channel { return s.Channels().BG }

func (s *Surface) SetFG(c Channel) {
	if p, err := s.plane(); err == nil {
		p.style.FG = c
	}
}

func (s *Surface) SetBG(c Channel) {
	if p, err := s.plane(); err == nil {
		p.style.BG = c
	}
}

func (s *Surface) Bold() bool {
	p, err := s.plane()
	return err == nil && p.style.Bold
}

func (s *Surface) SetBold(on bool) {
	if p, err := s.plane(); err == nil {
		p.style.Bold = on
	}
}

// Erase resets every cell to the base cell and homes the cursor.
func (s *Surface) Erase() error {
	p, err := s.plane()
	if err != nil {
		return err
	}
	clear(p.cells)
	p.cx, p.cy = 0, 0
	return nil
}

// PutStr writes str at the cursor with the current style and returns
// the number of columns written. Without scrolling, text past the right
// edge is dropped.
func (s *Surface) PutStr(str string) (int, error) {
	p, err := s.plane()
	if err != nil {
		return 0, err
	}
	n := 0
	for _, r := range str {
		if r == '\n' {
			if !p.scrolling {
				break
			}
			p.cx = 0
			p.cy++
			if p.cy >= p.h {
				p.scrollUp()
			}
			continue
		}
		rw := runewidth.RuneWidth(r)
		if rw == 0 || rw > p.w {
			continue
		}
		if p.cx+rw > p.w {
			if !p.scrolling {
				break
			}
			p.cx = 0
			p.cy++
		}
		if p.cy >= p.h {
			if !p.scrolling {
				break
			}
			p.scrollUp()
		}
		i := p.cy*p.w + p.cx
		p.cells[i] = cell{r: r, style: p.style}
		if rw == 2 {
			p.cells[i+1] = cell{cont: true, style: p.style}
		}
		p.cx += rw
		n += rw
	}
	return n, nil
}

// PutStrYX moves the cursor to (y, x) and writes str.
func (s *Surface) PutStrYX(y, x int, str string) (int, error) {
	if err := s.CursorMove(y, x); err != nil {
		return 0, err
	}
	return s.PutStr(str)
}

// Cell returns the glyph and style s shows at (x, y), base included.
func (s *Surface) Cell(x, y int) (rune, Style) {
	p, err := s.plane()
	if err != nil || x < 0 || y < 0 || x >= p.w || y >= p.h {
		return 0, Style{}
	}
	c := p.at(x, y)
	return c.r, c.style
}
