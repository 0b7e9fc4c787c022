package terminal

import (
	"bytes"
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lgc202/apikit/request"
	"github.com/lgc202/apikit/session"
)

func TestNotifier_Error(t *testing.T) {
	var buf bytes.Buffer
	n := NewNotifier(WithOutput(&buf))

	n.Error(context.Background(), "bad input")
	assert.Contains(t, buf.String(), "bad input")
	assert.Contains(t, buf.String(), symbolError)
}

func TestNotifier_ConfirmWithoutPrompt(t *testing.T) {
	var buf bytes.Buffer
	n := NewNotifier(WithOutput(&buf), WithConfirm(nil))

	ok, err := n.Confirm(context.Background(), request.SessionExpiredDialog)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Contains(t, buf.String(), request.SessionExpiredDialog.Message)
	assert.Contains(t, buf.String(), request.SessionExpiredDialog.Title)
}

func TestNotifier_ConfirmDelegates(t *testing.T) {
	var seen request.Dialog
	n := NewNotifier(WithOutput(&bytes.Buffer{}), WithConfirm(func(_ context.Context, d request.Dialog) (bool, error) {
		seen = d
		return true, nil
	}))

	ok, err := n.Confirm(context.Background(), request.SessionExpiredDialog)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, request.SessionExpiredDialog, seen)
}

func TestRender_Levels(t *testing.T) {
	d := request.Dialog{Title: "提示", Message: "msg"}
	for level, sym := range map[request.Level]string{
		request.LevelError:   symbolError,
		request.LevelWarning: symbolWarn,
		request.LevelInfo:    symbolInfo,
	} {
		d.Level = level
		out := render(d)
		assert.Contains(t, out, sym, level)
		assert.Contains(t, out, "提示: msg", level)
	}
}

func TestNavigator_ClearAndRedirect(t *testing.T) {
	ctx := context.Background()
	sess := session.NewManager(nil)
	require.NoError(t, sess.Login(ctx, "abc123"))

	var buf bytes.Buffer
	nav := NewNavigator(sess, &buf)

	require.NoError(t, nav.ClearLocalData(ctx))
	assert.Equal(t, "", sess.Token())

	require.NoError(t, nav.Redirect(ctx, request.RootPath))
	assert.Equal(t, "/", nav.LastRedirect())
	assert.Contains(t, buf.String(), "apikit login")
}

func TestNavigator_OnRedirect(t *testing.T) {
	var got string
	nav := NewNavigator(nil, &bytes.Buffer{})
	nav.OnRedirect = func(path string) { got = path }

	require.NoError(t, nav.ClearLocalData(context.Background()))
	require.NoError(t, nav.Redirect(context.Background(), "/login"))
	assert.Equal(t, "/login", got)
}
