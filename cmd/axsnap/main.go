// Command axsnap inspects accessibility snapshots built from fixture files.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		report(err)
		os.Exit(1)
	}
}
