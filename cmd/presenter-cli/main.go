// Command presenter-cli renders records through decorators declared in a
// manifest, lists registrations and exports OpenAPI schemas of the output.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
