// Command besselx evaluates complex Bessel I, K and Hankel functions.
package main

import (
	"os"

	"github.com/roach88/besselx/internal/cli"
)

func main() {
	os.Exit(cli.Execute(os.Args[1:], os.Stdout, os.Stderr))
}
