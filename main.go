package main

import (
	"github.com/sw33tLie/supplyscope/cmd"
)

func main() {
	cmd.Execute()
}
