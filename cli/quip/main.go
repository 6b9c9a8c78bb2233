package main

import (
	"os"

	quipcmder "github.com/papercomputeco/quip/cmd/quip"
)

func main() {
	cmd := quipcmder.NewQuipCmd()
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
