package main

import (
	"os"

	"github.com/dalemusser/audiencekit/internal/cli"
)

func main() {
	os.Exit(cli.Run("audiencekit", os.Args[1:]))
}
