package main

import (
	"os"

	"stayauth/cmd/authctl/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
