package cmd

import (
	"fmt"
	"os"

	"github.com/sw33tLie/supplyscope/internal/utils"
)

// cliNotifier shows user-facing messages on the terminal.
type cliNotifier struct{}

func (cliNotifier) Success(msg string) { fmt.Println(msg) }

func (cliNotifier) Warn(msg string) { utils.Log.Warn(msg) }

func (cliNotifier) Error(msg string) { fmt.Fprintln(os.Stderr, msg) }
