// Command bbconfig installs and configures beam-beam lenses for a pair of
// collider lines and keeps a history of the resulting encounter tables.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
