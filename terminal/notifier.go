package terminal

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/charmbracelet/huh"
	"golang.org/x/term"

	"github.com/lgc202/apikit/request"
)

// ConfirmFunc asks the user a yes/no question. It is swappable for tests and for
// frontends other than huh.
type ConfirmFunc func(ctx context.Context, d request.Dialog) (bool, error)

// Notifier prints messages to a terminal and asks questions through huh.
type Notifier struct {
	mu      sync.Mutex
	out     io.Writer
	confirm ConfirmFunc
}

type NotifierOption func(*Notifier)

// WithOutput redirects messages (default os.Stderr).
func WithOutput(w io.Writer) NotifierOption {
	return func(n *Notifier) { n.out = w }
}

// WithConfirm replaces the prompt implementation.
func WithConfirm(f ConfirmFunc) NotifierOption {
	return func(n *Notifier) { n.confirm = f }
}

// NewNotifier returns a Notifier. Prompts are only shown when stdin is a
// terminal; otherwise Confirm answers no.
func NewNotifier(opts ...NotifierOption) *Notifier {
	n := &Notifier{out: os.Stderr}
	if term.IsTerminal(int(os.Stdin.Fd())) {
		n.confirm = HuhConfirm
	}
	for _, o := range opts {
		if o != nil {
			o(n)
		}
	}
	return n
}

var _ request.Notifier = (*Notifier)(nil)

func (n *Notifier) Error(_ context.Context, msg string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	fmt.Fprintln(n.out, RenderError(msg))
}

// Confirm serializes prompts so concurrent calls never draw over each other.
func (n *Notifier) Confirm(ctx context.Context, d request.Dialog) (bool, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.confirm == nil {
		fmt.Fprintln(n.out, render(d))
		return false, nil
	}
	return n.confirm(ctx, d)
}

func render(d request.Dialog) string {
	text := d.Message
	if d.Title != "" {
		text = d.Title + ": " + d.Message
	}
	switch d.Level {
	case request.LevelError:
		return RenderError(text)
	case request.LevelWarning:
		return RenderWarn(text)
	default:
		return RenderInfo(text)
	}
}

// HuhConfirm shows d as a huh confirm form.
func HuhConfirm(ctx context.Context, d request.Dialog) (bool, error) {
	var ok bool
	affirmative := d.ConfirmText
	if affirmative == "" {
		affirmative = "Yes"
	}
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(d.Title).
				Description(d.Message).
				Affirmative(affirmative).
				Negative("取消").
				Value(&ok),
		),
	)
	if err := form.RunWithContext(ctx); err != nil {
		return false, err
	}
	return ok, nil
}
