package term

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"golang.org/x/term"
)

// Level describes how many colors a terminal stream supports.
type Level int

const (
	LevelNone Level = iota
	Level256
	Level16M
)

var (
	// StderrLevel is the color level detected for os.Stderr at process start.
	StderrLevel Level
	// StdoutLevel is the color level detected for os.Stdout at process start.
	StdoutLevel Level
)

func detectLevel() Level {
	if strings.EqualFold(os.Getenv("NO_COLOR"), "1") || os.Getenv("NO_COLOR") != "" {
		return LevelNone
	}
	colorTermEnv := os.Getenv("COLORTERM")
	termEnv := os.Getenv("TERM")
	if strings.Contains(colorTermEnv, "truecolor") || strings.Contains(colorTermEnv, "24bit") {
		return Level16M
	}
	if strings.Contains(termEnv, "256color") {
		return Level256
	}
	if termEnv == "" || termEnv == "dumb" {
		return LevelNone
	}
	return Level256
}

func init() {
	level := detectLevel()
	if IsTerminal(os.Stderr.Fd()) {
		StderrLevel = level
	}
	if IsTerminal(os.Stdout.Fd()) {
		StdoutLevel = level
	}
}

// IsTerminal reports whether fd is a terminal, including cygwin/msys2 ptys on Windows.
func IsTerminal(fd uintptr) bool {
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

// GetSize returns the visible dimensions of the terminal referenced by fd.
func GetSize(fd int) (width, height int, err error) {
	return term.GetSize(fd)
}
