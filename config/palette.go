// Copyright © 2025 YATE contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/palette.go
// Summary: Named-color palette persistence.
// Notes: The parser consumes the resolved palette once at startup and
// never re-reads it mid-stream.

package config

import (
	"fmt"
	"log"
	"strconv"
	"strings"

	"github.com/YetAnotherMechanicusEnjoyer/YATE/term/parser"
)

// Palette resolves the configured color slots into a concrete palette.
// Slots that are missing or unparsable fall back to the default value,
// with a log line so a typo in the config file is discoverable.
func Palette(cfg Config) parser.Palette {
	p := parser.DefaultPalette()
	section := cfg.GetSection(SectionPalette)
	if section == nil {
		return p
	}
	for name, raw := range section {
		slot, ok := parser.SlotByName(name)
		if !ok {
			log.Printf("Config: unknown palette slot %q ignored", name)
			continue
		}
		hex, ok := raw.(string)
		if !ok {
			log.Printf("Config: palette slot %q is not a string", name)
			continue
		}
		color, err := parseHexColor(hex)
		if err != nil {
			log.Printf("Config: palette slot %q: %v", name, err)
			continue
		}
		p[slot] = color
	}
	return p
}

// SavePalette stores a palette into the config and writes it to disk.
func SavePalette(cfg Config, p parser.Palette) error {
	cfg[SectionPalette] = paletteSection(p)
	return Save(cfg)
}

func paletteSection(p parser.Palette) Section {
	section := make(Section, parser.SlotCount)
	for slot := parser.Slot(0); slot < parser.SlotCount; slot++ {
		section[slot.String()] = formatHexColor(p[slot])
	}
	return section
}

// parseHexColor accepts #RRGGBB and #RRGGBBAA.
func parseHexColor(s string) (parser.RGBA, error) {
	hex := strings.TrimPrefix(s, "#")
	if len(hex) != 6 && len(hex) != 8 {
		return parser.RGBA{}, fmt.Errorf("bad color %q", s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return parser.RGBA{}, fmt.Errorf("bad color %q: %v", s, err)
	}
	if len(hex) == 6 {
		v = v<<8 | 0xff
	}
	return parser.RGBA{
		R: uint8(v >> 24),
		G: uint8(v >> 16),
		B: uint8(v >> 8),
		A: uint8(v),
	}, nil
}

func formatHexColor(c parser.RGBA) string {
	if c.A == 0xff {
		return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
	}
	return fmt.Sprintf("#%02x%02x%02x%02x", c.R, c.G, c.B, c.A)
}
