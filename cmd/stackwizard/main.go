package main

import (
	"errors"
	"fmt"
	"os"
)

// Version information (set by build)
var (
	Version   = "dev"
	BuildTime = "unknown"
)

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	root := newRootCmd()
	root.SetArgs(args)

	if err := root.Execute(); err != nil {
		var sErr *ServerError
		if errors.As(err, &sErr) {
			fmt.Fprintf(os.Stderr, "%s\n", formatError(sErr.Op, sErr.Err.Error()))
			return sErr.ExitCode
		}
		fmt.Fprintf(os.Stderr, "%s\n", formatError("stackwizard", err.Error()))
		return ExitConfigError
	}
	return ExitSuccess
}
