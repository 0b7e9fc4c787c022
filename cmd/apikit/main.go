// Command apikit calls the admin backend API from a terminal.
package main

import (
	"github.com/lgc202/apikit/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		cli.HandleExitError(err)
	}
}
