// Command crossfit drives code coverage tools through one interface.
package main

import (
	"os"

	"github.com/jmgilman/crossfit/internal/cmd"
)

func main() {
	os.Exit(cmd.Main())
}
