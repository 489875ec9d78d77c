// Command gardenctl plays the garden from a terminal. It runs the client
// engine against a garden server: growth and rewards are predicted locally,
// balances are shown optimistically, and every change is settled remotely.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		printError(fmt.Sprintf("error: %v", err))
		os.Exit(1)
	}
}
