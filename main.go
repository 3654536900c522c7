package main

import (
	"fmt"
	"os"

	"github.com/bz888/vox/cmd"
)

var build = "develop"

func main() {
	if err := cmd.Execute(build); err != nil {
		fmt.Fprintln(os.Stderr, "vox:", err)
		os.Exit(1)
	}
}
