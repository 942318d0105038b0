// Command ecsdemo builds a small scene, mutates it, and prints what the ECS reports at each step.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
