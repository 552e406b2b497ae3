package main

import (
	"os"

	"github.com/silexio/zping/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
