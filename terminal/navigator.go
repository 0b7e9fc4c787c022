package terminal

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/lgc202/apikit/request"
	"github.com/lgc202/apikit/session"
)

// Navigator maps browser-style navigation onto a CLI session: clearing local data
// signs the user out, and a redirect to the root tells them how to sign in again.
type Navigator struct {
	sess *session.Manager
	out  io.Writer

	// OnRedirect, if set, replaces the default hint printed on Redirect.
	OnRedirect func(path string)

	mu   sync.Mutex
	last string
}

func NewNavigator(sess *session.Manager, out io.Writer) *Navigator {
	if out == nil {
		out = os.Stderr
	}
	return &Navigator{sess: sess, out: out}
}

var _ request.Navigator = (*Navigator)(nil)

func (n *Navigator) ClearLocalData(ctx context.Context) error {
	if n.sess == nil {
		return nil
	}
	return n.sess.Clear(ctx)
}

func (n *Navigator) Redirect(_ context.Context, path string) error {
	n.mu.Lock()
	n.last = path
	n.mu.Unlock()
	if n.OnRedirect != nil {
		n.OnRedirect(path)
		return nil
	}
	if path == request.RootPath {
		fmt.Fprintln(n.out, RenderInfo("已退出登录，请执行 `apikit login` 重新登录"))
		return nil
	}
	fmt.Fprintln(n.out, RenderInfo("请前往 "+path))
	return nil
}

// LastRedirect returns the most recent redirect target, or "".
func (n *Navigator) LastRedirect() string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.last
}
