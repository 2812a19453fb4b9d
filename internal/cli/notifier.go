package cli

import (
	"fmt"
	"io"
)

// consoleNotifier renders store notifications as terminal lines: success and
// info on stdout, errors on stderr. In JSON mode the store messages are
// suppressed entirely so stdout stays machine-readable; commands surface the
// outcome through the formatter instead.
type consoleNotifier struct {
	out    io.Writer
	errOut io.Writer
	quiet  bool
}

func newConsoleNotifier(out, errOut io.Writer, quiet bool) *consoleNotifier {
	return &consoleNotifier{out: out, errOut: errOut, quiet: quiet}
}

func (n *consoleNotifier) ShowSuccess(text string) {
	if n.quiet {
		return
	}
	fmt.Fprintln(n.out, text)
}

func (n *consoleNotifier) ShowError(text string) {
	if n.quiet {
		return
	}
	fmt.Fprintln(n.errOut, text)
}

func (n *consoleNotifier) ShowInfo(text string) {
	if n.quiet {
		return
	}
	fmt.Fprintln(n.out, text)
}
