// Command qdemo runs the quantum computing demonstrations, serves the
// local backends over HTTP and hosts the interactive ZX explorer.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd(os.Stdout).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
