package main

import (
	"os"

	"catalog-engine/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Stderr.WriteString("Error: " + err.Error() + "\n")
		os.Exit(1)
	}
}
