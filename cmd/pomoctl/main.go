package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

func main() {
	root := newRootCmd(os.Stdout, os.Stderr)
	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("err:"), err)
		os.Exit(1)
	}
}
