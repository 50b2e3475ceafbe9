package output

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/atotto/clipboard"
	"github.com/saylorsolutions/novault/pkg/novault"
)

// Deliverer hands a site password to the user.
type Deliverer interface {
	Deliver(ctx context.Context, pass *novault.SitePassword) error
}

// Stdout prints passwords to a writer, one per line.
type Stdout struct {
	W io.Writer
}

func (s Stdout) Deliver(_ context.Context, pass *novault.SitePassword) error {
	_, err := fmt.Fprintln(s.W, pass.Reveal())
	return err
}

// Clipboard copies passwords to the system clipboard, and clears them after ClearAfter.
type Clipboard struct {
	ClearAfter time.Duration
	// Wait blocks Deliver until the clipboard is cleared. Otherwise clearing happens in the background.
	Wait bool

	write func(string) error
	read  func() (string, error)
}

// NewClipboard creates a Clipboard using the system clipboard.
func NewClipboard(clearAfter time.Duration, wait bool) *Clipboard {
	return &Clipboard{
		ClearAfter: clearAfter,
		Wait:       wait,
		write:      clipboard.WriteAll,
		read:       clipboard.ReadAll,
	}
}

var clipboardUnsupported = func() bool { return clipboard.Unsupported }

// Available reports whether a clipboard utility was found.
func Available() bool {
	return !clipboardUnsupported()
}

// Select returns a Stdout writing to w if useStdout is set or no clipboard is Available, and a Clipboard otherwise.
// copied reports whether the Clipboard was chosen.
func Select(useStdout bool, w io.Writer, clearAfter time.Duration, wait bool) (d Deliverer, copied bool) {
	if useStdout || !Available() {
		return Stdout{W: w}, false
	}
	return NewClipboard(clearAfter, wait), true
}

func (c *Clipboard) Deliver(ctx context.Context, pass *novault.SitePassword) error {
	text := pass.Reveal()
	if err := c.write(text); err != nil {
		return fmt.Errorf("failed to copy to clipboard: %w", err)
	}
	if c.ClearAfter <= 0 {
		return nil
	}
	if !c.Wait {
		go func() {
			_ = c.clearAfter(context.WithoutCancel(ctx), text)
		}()
		return nil
	}
	return c.clearAfter(ctx, text)
}

// clearAfter empties the clipboard once the delay passes or ctx is done, unless it has been overwritten since.
func (c *Clipboard) clearAfter(ctx context.Context, text string) error {
	timer := time.NewTimer(c.ClearAfter)
	defer timer.Stop()
	select {
	case <-timer.C:
	case <-ctx.Done():
	}
	current, err := c.read()
	if err != nil {
		return err
	}
	if current != text {
		return nil
	}
	return c.write("")
}
