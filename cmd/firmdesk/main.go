package main

import (
	"os"

	"github.com/celerix-dev/firmdesk/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
