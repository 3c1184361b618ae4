package main

import (
	"fmt"
	"os"

	"github.com/roach88/docket/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "docket:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
