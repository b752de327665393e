package main

import (
	"errors"
	"fmt"
	"log/slog"

	"golang.design/x/clipboard"
)

var errClipboardUnavailable = errors.New("clipboard unavailable")

// Clipboard receives text copied from the dashboard.
type Clipboard interface {
	Copy(text string) error
}

type systemClipboard struct {
	err error
}

// newSystemClipboard initializes the system clipboard. Without a display,
// or in a build without cgo, every Copy fails and the caller skips it.
func newSystemClipboard(log *slog.Logger) *systemClipboard {
	if err := clipboard.Init(); err != nil {
		log.Warn("clipboard disabled", "err", err)
		return &systemClipboard{err: fmt.Errorf("%w: %w", errClipboardUnavailable, err)}
	}
	return &systemClipboard{}
}

func (c *systemClipboard) Copy(text string) error {
	if c.err != nil {
		return c.err
	}
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}
