package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/lgc202/apikit/request"
	"github.com/lgc202/apikit/terminal"
)

// HandleExitError reports err and exits with status 1.
func HandleExitError(err error) {
	reportError(os.Stderr, err)
	os.Exit(1)
}

// reportError prints err unless the notifier already showed it to the user.
func reportError(w io.Writer, err error) {
	if err == nil || alreadyNotified(err) {
		return
	}
	fmt.Fprintln(w, terminal.RenderError("Error: "+err.Error()))
}

func alreadyNotified(err error) bool {
	re, ok := request.AsError(err)
	if !ok {
		return false
	}
	return re.Kind == request.KindBusiness || re.Kind == request.KindSessionExpired
}
