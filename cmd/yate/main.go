// Copyright © 2025 YATE contributors
// SPDX-License-Identifier: AGPL-3.0-or-later
//
// File: cmd/yate/main.go
// Summary: YATE entry point: wires the PTY pipeline to the tcell UI.

package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	xterm "golang.org/x/term"

	"github.com/YetAnotherMechanicusEnjoyer/YATE/config"
	"github.com/YetAnotherMechanicusEnjoyer/YATE/highlight"
	"github.com/YetAnotherMechanicusEnjoyer/YATE/history"
	"github.com/YetAnotherMechanicusEnjoyer/YATE/term"
	"github.com/YetAnotherMechanicusEnjoyer/YATE/term/parser"
	"github.com/YetAnotherMechanicusEnjoyer/YATE/tui"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "yate: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	if !xterm.IsTerminal(int(os.Stdin.Fd())) {
		return fmt.Errorf("must be run on a terminal")
	}

	setupLogging()
	log.Println("Starting up")

	cfg, err := config.Load()
	if err != nil {
		log.Printf("Config: falling back to defaults: %v", err)
	}
	pal := config.Palette(cfg)

	// Initial size from the controlling terminal; the first resize event
	// corrects it anyway.
	rows, cols := 24, 80
	if w, h, err := xterm.GetSize(int(os.Stdout.Fd())); err == nil {
		cols, rows = w, h
	}

	sess, err := term.Start(cfg.GetString(config.KeyShell, ""), rows, cols)
	if err != nil {
		return fmt.Errorf("start shell: %w", err)
	}
	defer sess.Close()

	out := &term.Buffer{}
	refresh := make(chan struct{}, 1)
	go term.ReadLoop(sess.Reader(), out, refresh)

	runs := parser.NewRunLog(
		parser.Format{Fg: pal[parser.SlotDefault]},
		cfg.GetInt(config.KeyScrollback, 20000),
	)
	par := parser.NewParser(pal, runs)

	var colorizer *highlight.Colorizer
	if cfg.GetBool(config.KeyHighlight, true) {
		colorizer = highlight.New()
	}

	var hist *history.Index
	if cfg.GetBool(config.KeyHistory, true) {
		if path, err := config.HistoryDBPath(); err == nil {
			hist, err = history.Open(history.DefaultConfig(path))
			if err != nil {
				log.Printf("History: disabled: %v", err)
				hist = nil
			}
		}
	}
	if hist != nil {
		defer hist.Close()
	}

	runs.OnLineCommit(func(text string, plain bool) {
		if hist != nil {
			hist.IndexLine(time.Now(), text)
		}
		if colorizer != nil && plain {
			colorizer.Observe(text)
		}
	})

	ui, err := tui.New(sess, out, par, runs, pal, colorizer, hist, refresh)
	if err != nil {
		return fmt.Errorf("init screen: %w", err)
	}
	defer ui.Close()

	err = ui.Run()
	log.Println("Stopped")
	return err
}

// setupLogging sends the log to a file so it does not fight the display
// for the terminal.
func setupLogging() {
	path, err := config.LogPath()
	if err != nil {
		log.SetOutput(os.Stderr)
		return
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		log.SetOutput(os.Stderr)
		return
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.SetOutput(os.Stderr)
		return
	}
	log.SetOutput(f)
}
