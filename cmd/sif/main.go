package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/roach88/sif/internal/cli"
)

func main() {
	err := cli.NewRootCommand().Execute()
	if err != nil {
		// Commands report their own ExitErrors; anything else comes from
		// cobra (bad flags, unknown command).
		var exitErr *cli.ExitError
		if !errors.As(err, &exitErr) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
	}
	os.Exit(cli.GetExitCode(err))
}
