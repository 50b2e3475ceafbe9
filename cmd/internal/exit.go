package internal

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/fatih/color"
)

var (
	errColor  = color.New(color.FgRed, color.Bold)
	warnColor = color.New(color.FgYellow)
	okColor   = color.New(color.FgGreen)
)

// Fatal will print the message in red and os.Exit with code 1.
func Fatal(msg string, args ...any) {
	_, _ = errColor.Fprint(os.Stderr, line(msg, args...))
	os.Exit(1)
}

// Warn writes a highlighted warning to w.
func Warn(w io.Writer, msg string, args ...any) {
	_, _ = warnColor.Fprint(w, line(msg, args...))
}

// Success writes a highlighted confirmation to w.
func Success(w io.Writer, msg string, args ...any) {
	_, _ = okColor.Fprint(w, line(msg, args...))
}

func line(msg string, args ...any) string {
	if !strings.HasSuffix(msg, "\n") {
		msg += "\n"
	}
	return fmt.Sprintf(msg, args...)
}
