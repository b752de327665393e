package ui

import (
	"github.com/mattn/go-runewidth"
)

// Dialog is a decorated border surface with an inset content surface.
// Both are children of the same parent.
type Dialog struct {
	border  *Surface
	content *Surface
	shadow  bool
}

func (d *Dialog) Border() *Surface  { return d.border }
func (d *Dialog) Content() *Surface { return d.content }
func (d *Dialog) Shadow() bool      { return d.shadow }

// NewDialog places a w×h dialog at (x, y) in parent. The content surface
// sits one cell inside the frame, kept clear of the shadow, and wraps
// long writes.
func NewDialog(parent *Surface, w, h, x, y int, shadow bool, p Palette) (*Dialog, error) {
	cw, ch := w-3, h-3
	if shadow {
		cw = w - 4
	}
	d, err := newDialog(parent, w, h, x, y, x+1, y+1, cw, ch, shadow, p.Panel, p)
	if err != nil {
		return nil, err
	}
	d.content.SetScrolling(true)
	if err := d.content.SetBase(' ', p.Content); err != nil {
		d.Destroy()
		return nil, err
	}
	d.content.SetChannels(p.Content.Channels)
	return d, nil
}

// NewMessageDialog shows a single line of text centered in parent.
func NewMessageDialog(parent *Surface, text string, shadow bool, p Palette) (*Dialog, error) {
	pw, ph := parent.Size()
	tw := max(runewidth.StringWidth(text), 1)
	tx := pw/2 - tw/2
	ty := ph / 2

	w, h := tw+2, 3
	if shadow {
		w, h = tw+4, 4
	}
	d, err := newDialog(parent, w, h, tx-1, ty-1, tx, ty, tw, 1, shadow, p.Message, p)
	if err != nil {
		return nil, err
	}
	if err := d.content.SetBase(' ', p.Message); err != nil {
		d.Destroy()
		return nil, err
	}
	d.content.SetChannels(p.Message.Channels)
	if _, err := d.content.PutStr(text); err != nil {
		d.Destroy()
		return nil, err
	}
	return d, nil
}

func newDialog(parent *Surface, w, h, x, y, cx, cy, cw, ch int, shadow bool, base Style, p Palette) (*Dialog, error) {
	border, err := parent.NewChild(x, y, w, h)
	if err != nil {
		return nil, err
	}
	d := &Dialog{border: border, shadow: shadow}
	if err := border.SetBase(' ', base); err != nil {
		d.Destroy()
		return nil, err
	}
	if err := DrawBorder(border, shadow, p); err != nil {
		d.Destroy()
		return nil, err
	}
	d.content, err = parent.NewChild(cx, cy, cw, ch)
	if err != nil {
		d.Destroy()
		return nil, err
	}
	return d, nil
}

// Destroy removes both surfaces. It is safe to call more than once.
func (d *Dialog) Destroy() {
	if d.content != nil && d.content.Valid() {
		_ = d.content.Destroy()
	}
	if d.border != nil && d.border.Valid() {
		_ = d.border.Destroy()
	}
}
