package main

import (
	"strings"

	"github.com/fatih/color"
	"github.com/sergi/go-diff/diffmatchpatch"
)

// paint returns a color that honors the --no-color flag.
func (a *App) paint(attr color.Attribute) *color.Color {
	c := color.New(attr)
	if a.color {
		c.EnableColor()
	} else {
		c.DisableColor()
	}
	return c
}

// lineDiff renders a unified-style line diff of want against got.
func lineDiff(want, got string, colored bool) string {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(want, got)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	del := color.New(color.FgRed)
	ins := color.New(color.FgGreen)
	if colored {
		del.EnableColor()
		ins.EnableColor()
	} else {
		del.DisableColor()
		ins.DisableColor()
	}

	var sb strings.Builder
	sb.WriteString("--- normalized\n+++ round-tripped\n")
	for _, d := range diffs {
		for _, line := range splitLines(d.Text) {
			switch d.Type {
			case diffmatchpatch.DiffDelete:
				sb.WriteString(del.Sprint("-"+line) + "\n")
			case diffmatchpatch.DiffInsert:
				sb.WriteString(ins.Sprint("+"+line) + "\n")
			default:
				sb.WriteString(" " + line + "\n")
			}
		}
	}
	return sb.String()
}

func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return []string{""}
	}
	return strings.Split(s, "\n")
}
