package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

const (
	rule      = "═══════════════════════════════════════════════════════════════"
	thinRule  = "───────────────────────────────────────────────────────────────"
	bannerLen = 59
)

// header prints a centered title between double rules.
func header(title string) {
	pad := (utf8.RuneCountInString(rule) - utf8.RuneCountInString(title)) / 2
	fmt.Println()
	fmt.Println(rule)
	fmt.Printf("%s%s\n", strings.Repeat(" ", max(pad, 0)), title)
	fmt.Println(rule)
	fmt.Println()
}

// heading prints a block label underlined with a thin rule.
func heading(title string) {
	fmt.Println(title)
	fmt.Println(thinRule)
}

// bannerLine frames text inside the welcome banner.
func bannerLine(text string) string {
	if text != "" {
		text = "   " + text
	}
	pad := bannerLen - utf8.RuneCountInString(text)
	return "  ║" + text + strings.Repeat(" ", max(pad, 0)) + "║"
}

// terminalWidth returns the width of stdout, or 80 when it is not a terminal.
func terminalWidth() int {
	fd := int(os.Stdout.Fd())
	if term.IsTerminal(fd) {
		if w, _, err := term.GetSize(fd); err == nil && w > 0 {
			return w
		}
	}
	return 80
}

// encode writes v as json or yaml.
func encode(w io.Writer, format string, v any) error {
	switch format {
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	}
	return fmt.Errorf("unknown output format %q (use table, json or yaml)", format)
}

// writeFile creates path and its directory and streams render into it.
func writeFile(path string, render func(io.Writer) error) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
