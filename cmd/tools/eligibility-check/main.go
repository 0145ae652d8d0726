// cmd/tools/eligibility-check/main.go
package main

import (
	"context"
	"fmt"
	"os"
)

var version = "v0.0.1-default"

func main() {
	if err := newCommand().Run(context.Background(), os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
