// Package notify shows notices and alerts on the terminal.
//
// On a terminal a notice is a pterm spinner that is updated in place and
// removed when hidden. Elsewhere each notice text is printed as an info
// line. Alerts are printed as warnings and stay in the output.
package notify

import (
	"io"
	"os"
	"sync"

	"github.com/arthur-debert/dodex/pkg/logging"
	"github.com/arthur-debert/dodex/pkg/types"
	"github.com/mattn/go-isatty"
	"github.com/pterm/pterm"
)

// Terminal is a types.Notifier writing to a terminal or a plain stream.
type Terminal struct {
	mu          sync.Mutex
	out         io.Writer
	interactive bool
}

// New returns a notifier writing to f, animated when f is a terminal.
func New(f *os.File) *Terminal {
	interactive := isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	return NewWriter(f, interactive)
}

// NewWriter returns a notifier writing to w.
func NewWriter(w io.Writer, interactive bool) *Terminal {
	return &Terminal{out: w, interactive: interactive}
}

func (t *Terminal) Notice(msg string) types.NoticeHandle {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.interactive {
		sp, err := pterm.DefaultSpinner.WithWriter(t.out).WithRemoveWhenDone(true).Start(msg)
		if err == nil {
			return &spinnerNotice{sp: sp}
		}
		logger := logging.GetLogger("notify.notice")
		logger.Debug().Err(err).Msg("Spinner unavailable, printing instead")
	}
	n := &lineNotice{t: t}
	n.print(msg)
	return n
}

func (t *Terminal) Alert(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	pterm.Warning.WithWriter(t.out).Println(msg)
}

type spinnerNotice struct {
	mu     sync.Mutex
	sp     *pterm.SpinnerPrinter
	hidden bool
}

func (n *spinnerNotice) Update(msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if !n.hidden {
		n.sp.UpdateText(msg)
	}
}

func (n *spinnerNotice) Hide() {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.hidden {
		return
	}
	n.hidden = true
	_ = n.sp.Stop()
}

type lineNotice struct {
	t    *Terminal
	last string
}

// print skips repeats of the current text. Callers hold t.mu.
func (n *lineNotice) print(msg string) {
	if msg == n.last {
		return
	}
	n.last = msg
	pterm.Info.WithWriter(n.t.out).Println(msg)
}

func (n *lineNotice) Update(msg string) {
	n.t.mu.Lock()
	defer n.t.mu.Unlock()
	n.print(msg)
}

func (n *lineNotice) Hide() {}

// Func is a types.Notifier that hands every text to a function, used to
// route messages into an interactive program.
type Func func(msg string)

func (f Func) Notice(msg string) types.NoticeHandle {
	f(msg)
	return funcNotice(f)
}

func (f Func) Alert(msg string) {
	f(msg)
}

type funcNotice Func

func (n funcNotice) Update(msg string) { n(msg) }

func (n funcNotice) Hide() {}
