package main

import (
	"fmt"
	"os"

	"github.com/username/foliomap/src/cli"
	"github.com/username/foliomap/src/errs"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errs.FormatDiagnostic(err))
		os.Exit(1)
	}
}
