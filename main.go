package main

import (
	"os"

	"github.com/thenoetrevino/tasknote/cmd"
	"github.com/thenoetrevino/tasknote/internal/cli"
)

func main() {
	os.Exit(cli.ExitCode(cmd.Execute()))
}
