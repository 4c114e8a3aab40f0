package main

import (
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/xraph/beanforge/internal/configclass"
)

var (
	green    = color.New(color.FgGreen).SprintFunc()
	yellow   = color.New(color.FgYellow).SprintFunc()
	gray     = color.New(color.FgHiBlack).SprintFunc()
	red      = color.New(color.FgRed).SprintFunc()
	bold     = color.New(color.Bold).SprintFunc()
	boldBlue = color.New(color.FgBlue, color.Bold).SprintFunc()
)

// colorConfig controls color output behavior.
type colorConfig struct {
	Enabled    bool
	ForceColor bool
	NoColor    bool
}

func defaultColorConfig(out io.Writer) colorConfig {
	return colorConfig{
		Enabled:    isTerminal(out),
		ForceColor: os.Getenv("FORCE_COLOR") != "" || os.Getenv("CLICOLOR_FORCE") != "",
		NoColor:    os.Getenv("NO_COLOR") != "" || os.Getenv("CLICOLOR") == "0",
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	stat, err := f.Stat()
	if err != nil {
		return false
	}
	return (stat.Mode() & os.ModeCharDevice) != 0
}

func configureColors(config colorConfig) {
	switch {
	case config.NoColor:
		color.NoColor = true
	case config.ForceColor:
		color.NoColor = false
	default:
		color.NoColor = !config.Enabled
	}
}

func colorize(colorFunc func(...any) string, s string) string {
	if color.NoColor {
		return s
	}
	return colorFunc(s)
}

func tagColor(tag configclass.Tag) func(...any) string {
	switch tag {
	case configclass.Full:
		return green
	case configclass.Lite:
		return yellow
	default:
		return gray
	}
}
