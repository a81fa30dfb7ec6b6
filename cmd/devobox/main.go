// Command devobox provisions, starts, monitors, and tears down the hub
// development container and its spoke services on a single Linux host
// using a rootless OCI container engine.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := Execute(); err != nil {
		fmt.Fprintln(os.Stderr, formatErr(err))
		os.Exit(1)
	}
}
