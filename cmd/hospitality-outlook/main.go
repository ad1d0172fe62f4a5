package main

import (
	"fmt"
	"os"

	"github.com/jamesaloy3/hospitality-outlook/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
