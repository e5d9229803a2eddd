// Copyright © 2024 The dotlint authors

package main

import (
	"os"

	"github.com/luthersystems/dotlint/cmd"
)

func main() {
	os.Exit(cmd.Execute())
}
