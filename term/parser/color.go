// Copyright © 2025 YATE contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: term/parser/color.go
// Summary: Symbolic color slots and the resolved palette consumed by the parser.

package parser

// Slot identifies one of the symbolic color positions a stream can select:
// the 8 base ANSI colors, their bright variants, and the default foreground.
type Slot uint8

const (
	SlotBlack Slot = iota
	SlotRed
	SlotGreen
	SlotYellow
	SlotBlue
	SlotMagenta
	SlotCyan
	SlotWhite
	SlotBrightBlack
	SlotBrightRed
	SlotBrightGreen
	SlotBrightYellow
	SlotBrightBlue
	SlotBrightMagenta
	SlotBrightCyan
	SlotBrightWhite
	SlotDefault

	SlotCount = 17
)

// String returns the config-file name of the slot.
func (s Slot) String() string {
	if int(s) < len(slotNames) {
		return slotNames[s]
	}
	return "unknown"
}

var slotNames = [SlotCount]string{
	"black", "red", "green", "yellow", "blue", "magenta", "cyan", "white",
	"bright_black", "bright_red", "bright_green", "bright_yellow",
	"bright_blue", "bright_magenta", "bright_cyan", "bright_white",
	"default",
}

// SlotByName maps a config-file name back to its slot.
func SlotByName(name string) (Slot, bool) {
	for i, n := range slotNames {
		if n == name {
			return Slot(i), true
		}
	}
	return 0, false
}

// RGBA is a resolved, concrete color value. The parser never interprets
// channels; it only stamps the value onto runs.
type RGBA struct {
	R, G, B, A uint8
}

// Palette maps every slot to a concrete color. It is resolved once at
// startup from the color configuration and never changes mid-stream.
type Palette [SlotCount]RGBA

// DefaultPalette returns the standard xterm values for the 16 ANSI slots,
// with white as the default foreground.
func DefaultPalette() Palette {
	p := Palette{
		SlotBlack:         {0, 0, 0, 255},
		SlotRed:           {128, 0, 0, 255},
		SlotGreen:         {0, 128, 0, 255},
		SlotYellow:        {128, 128, 0, 255},
		SlotBlue:          {0, 0, 128, 255},
		SlotMagenta:       {128, 0, 128, 255},
		SlotCyan:          {0, 128, 128, 255},
		SlotWhite:         {192, 192, 192, 255},
		SlotBrightBlack:   {128, 128, 128, 255},
		SlotBrightRed:     {255, 0, 0, 255},
		SlotBrightGreen:   {0, 255, 0, 255},
		SlotBrightYellow:  {255, 255, 0, 255},
		SlotBrightBlue:    {0, 0, 255, 255},
		SlotBrightMagenta: {255, 0, 255, 255},
		SlotBrightCyan:    {0, 255, 255, 255},
		SlotBrightWhite:   {255, 255, 255, 255},
	}
	p[SlotDefault] = p[SlotBrightWhite]
	return p
}

// slotForSGR maps an SGR parameter to a color slot. ok is false for
// parameters that do not select a supported foreground color.
func slotForSGR(code int) (Slot, bool) {
	switch {
	case code >= 30 && code <= 37:
		return Slot(code - 30), true
	case code >= 90 && code <= 97:
		return Slot(code - 90 + 8), true
	}
	return 0, false
}
