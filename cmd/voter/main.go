// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Command voter casts a vote-by-email ballot from the terminal.
//
//	voter https://condo.example.gr/vote-by-email/<token>
//	voter <token> --api https://condo.example.gr --vote 1=approve --accept-terms
package main

import (
	"errors"
	"fmt"
	"os"
)

func main() {
	cmd := newRootCmd(os.Stdin, os.Stdout, os.Stderr)
	if err := cmd.Execute(); err != nil {
		if !errors.Is(err, errReported) {
			fmt.Fprintln(os.Stderr, "voter:", err)
		}
		os.Exit(1)
	}
}
