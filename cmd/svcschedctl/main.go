// Command svcschedctl is the control CLI for a running svcschedd daemon.
package main

import (
	"fmt"
	"os"

	"github.com/InitWare/Neo-InitWare/internal/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
