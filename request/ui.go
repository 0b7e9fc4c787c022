package request

import (
	"context"
	"log/slog"
)

// Level hints how a dialog should be styled.
type Level string

const (
	LevelInfo    Level = "info"
	LevelWarning Level = "warning"
	LevelError   Level = "error"
)

// Dialog describes a blocking confirmation prompt.
type Dialog struct {
	Title       string
	Message     string
	ConfirmText string
	Level       Level
}

// Notifier shows messages to the user.
type Notifier interface {
	// Error shows a dismissible error message.
	Error(ctx context.Context, msg string)
	// Confirm blocks until the user answers. It reports true on confirmation.
	Confirm(ctx context.Context, d Dialog) (bool, error)
}

// Navigator moves the user around the application.
type Navigator interface {
	// ClearLocalData removes every locally persisted piece of session state.
	ClearLocalData(ctx context.Context) error
	// Redirect sends the user to path, replacing the current page.
	Redirect(ctx context.Context, path string) error
}

// logNotifier is used when no Notifier is configured. It never confirms.
type logNotifier struct{ logger *slog.Logger }

func (n logNotifier) Error(_ context.Context, msg string) {
	n.logger.Error(msg)
}

func (n logNotifier) Confirm(_ context.Context, d Dialog) (bool, error) {
	n.logger.Warn(d.Message, "title", d.Title)
	return false, nil
}

type nopNavigator struct{}

func (nopNavigator) ClearLocalData(context.Context) error { return nil }

func (nopNavigator) Redirect(context.Context, string) error { return nil }
