// Copyright © 2025 YATE contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: config/defaults.go
// Summary: Built-in configuration defaults.

package config

import "github.com/YetAnotherMechanicusEnjoyer/YATE/term/parser"

// Setting keys.
const (
	KeyShell      = "shell"
	KeyScrollback = "scrollback_runs"
	KeyHighlight  = "highlight"
	KeyHistory    = "history"

	SectionPalette = "palette"
)

func defaultConfig() Config {
	return Config{
		KeyShell:       "",
		KeyScrollback:  20000,
		KeyHighlight:   true,
		KeyHistory:     true,
		SectionPalette: paletteSection(parser.DefaultPalette()),
	}
}
