package main

import (
	"fmt"
	"os"

	"github.com/garyjia/billed/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "billed: %v\n", err)
		os.Exit(1)
	}
}
