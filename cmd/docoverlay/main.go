// Command docoverlay renders offer letters and certificates onto PDF templates.
package main

import "os"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
