// cmd/txtconv/main.go
package main

import (
	"os"

	"txt-converter-service/internal/cli"
)

func main() {
	if err := cli.NewRootCommand(os.Stdout, os.Stderr).Execute(); err != nil {
		os.Exit(1)
	}
}
