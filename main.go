package main

import (
	"os"

	"github.com/scrubbed/scrubbed/pkg/cli"
)

func main() {
	os.Exit(cli.Run())
}
