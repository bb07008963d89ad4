package main

import (
	"context"
	"os"

	"capsule/cmd/capsule/commands"
)

func main() {
	if err := commands.Execute(context.Background()); err != nil {
		os.Exit(1)
	}
}
