package main

import (
	"os"

	"github.com/evanhutnik/movesuggest-service/cmd/suggest/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
