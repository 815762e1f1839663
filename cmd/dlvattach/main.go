package main

import (
	"os"

	"github.com/go-delve/dlvattach/cmd/dlvattach/cmds"
)

func main() {
	if err := cmds.New().Execute(); err != nil {
		os.Exit(1)
	}
}
