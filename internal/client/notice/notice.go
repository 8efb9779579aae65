// Package notice shows short-lived messages to the user, the terminal
// counterpart of a toast. Notices can be immediate or scheduled once after a
// delay; pending ones are dropped on Close.
package notice

import (
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
)

type Kind string

const (
	KindInfo    Kind = "info"
	KindSuccess Kind = "success"
	KindWarning Kind = "warning"
	KindError   Kind = "error"
)

// Notice is one message as it was shown.
type Notice struct {
	Kind Kind
	Text string
	At   time.Time
}

var styles = map[Kind]lipgloss.Style{
	KindInfo:    lipgloss.NewStyle().Foreground(lipgloss.Color("39")),
	KindSuccess: lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true),
	KindWarning: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
	KindError:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
}

var icons = map[Kind]string{
	KindInfo:    "i",
	KindSuccess: "✓",
	KindWarning: "!",
	KindError:   "✗",
}

// Render formats n for the terminal.
func Render(n Notice) string {
	st, ok := styles[n.Kind]
	if !ok {
		st = styles[KindInfo]
	}
	return st.Render(fmt.Sprintf("[%s] %s", icons[n.Kind], n.Text))
}

// Notifier writes notices to out and keeps the ones it has shown.
type Notifier struct {
	mu      sync.Mutex
	out     io.Writer
	shown   []Notice
	pending map[*time.Timer]struct{}
	closed  bool
	now     func() time.Time
}

func New(out io.Writer) *Notifier {
	return &Notifier{
		out:     out,
		pending: make(map[*time.Timer]struct{}),
		now:     time.Now,
	}
}

func (n *Notifier) Info(msg string)    { n.show(KindInfo, msg) }
func (n *Notifier) Success(msg string) { n.show(KindSuccess, msg) }
func (n *Notifier) Warn(msg string)    { n.show(KindWarning, msg) }
func (n *Notifier) Error(msg string)   { n.show(KindError, msg) }

// After shows msg once, d from now, unless the notifier is closed first.
func (n *Notifier) After(d time.Duration, kind Kind, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.closed {
		return
	}

	var t *time.Timer
	t = time.AfterFunc(d, func() {
		n.mu.Lock()
		_, live := n.pending[t]
		delete(n.pending, t)
		n.mu.Unlock()
		if live {
			n.show(kind, msg)
		}
	})
	n.pending[t] = struct{}{}
}

// Pending reports how many scheduled notices have not fired yet.
func (n *Notifier) Pending() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return len(n.pending)
}

// Shown returns a copy of every notice displayed so far.
func (n *Notifier) Shown() []Notice {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Notice(nil), n.shown...)
}

// Close cancels pending notices. Immediate notices are still shown.
func (n *Notifier) Close() {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.closed = true
	for t := range n.pending {
		t.Stop()
		delete(n.pending, t)
	}
}

func (n *Notifier) show(kind Kind, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	nt := Notice{Kind: kind, Text: msg, At: n.now()}
	n.shown = append(n.shown, nt)
	if n.out != nil {
		fmt.Fprintln(n.out, Render(nt))
	}
}

// InfoAfter is After with KindInfo.
func (n *Notifier) InfoAfter(d time.Duration, msg string) { n.After(d, KindInfo, msg) }
