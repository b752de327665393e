package ui

import (
	"os"
	"strings"
)

// Palette is the fixed color table handed to the decorator, the list
// renderer and dialogs. It is a value; nothing mutates it after creation.
type Palette struct {
	Frame    Channels // border glyphs
	Shadow   Channel  // drop shadow background
	Panel    Style    // base of border surfaces
	Content  Style    // base of list content surfaces
	Message  Style    // base of transient message dialogs
	Selected Channel  // background of the cursor row
	Alert    Channel  // running marker
}

// SelectPalette picks a palette matching the terminal background.
func SelectPalette() Palette {
	if detectLightTerminal() {
		return NewBreakersPalette()
	}
	return NewMarianaPalette()
}

// detectLightTerminal detects if terminal has a light background via COLORFGBG.
// iTerm2 and other terminals set this as "foreground;background".
// Background 7 or 15 indicates light, 0-6 and 8 indicate dark.
func detectLightTerminal() bool {
	colorfgbg := os.Getenv("COLORFGBG")
	if colorfgbg == "" {
		return false
	}
	parts := strings.Split(colorfgbg, ";")
	if len(parts) != 2 {
		return false
	}
	bg := parts[1]
	return bg == "7" || bg == "15"
}

func NewBreakersPalette() Palette {
	bg := Hex("#fbffff") // white5
	return Palette{
		Frame:    Channels{FG: Hex("#5fb3b3"), BG: bg}, // blue2
		Shadow:   Hex("#999999"),                       // grey2
		Panel:    Style{Channels: Channels{FG: Hex("#333333"), BG: bg}},
		Content:  Style{Channels: Channels{FG: Hex("#333333"), BG: bg}},
		Message:  Style{Channels: Channels{FG: Hex("#333333"), BG: Hex("#dae0e2")}},
		Selected: Hex("#dae0e2"), // white3
		Alert:    Hex("#89bd82"), // green
	}
}

func NewMarianaPalette() Palette {
	bg := Hex("#303841") // blue3
	return Palette{
		Frame:    Channels{FG: Hex("#fac863"), BG: bg}, // orange
		Shadow:   Hex("#101418"),
		Panel:    Style{Channels: Channels{FG: Hex("#d8dee9"), BG: bg}},
		Content:  Style{Channels: Channels{FG: Hex("#d8dee9"), BG: bg}},
		Message:  Style{Channels: Channels{FG: Hex("#d8dee9"), BG: Hex("#4e5a65")}},
		Selected: Hex("#4e5a65"),
		Alert:    Hex("#99c794"), // green
	}
}
