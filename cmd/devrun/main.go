package main

import (
	"os"

	"github.com/runlabhq/devrun/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
