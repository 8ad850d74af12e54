// Command line utilities for the portfolio dashboard service.
package main

import (
	"os"

	"github.com/Credmatrix/portfolio-management-sub006/internal/interfaces/cli"
)

func main() {
	os.Exit(cli.Execute())
}
