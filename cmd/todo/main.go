package main

import (
	"context"
	"fmt"
	"os"

	"todo-sample/internal/cli"
	"todo-sample/internal/config"
)

var version = "dev"

func main() {
	cfg := config.LoadClient()

	if err := cli.NewRootCommand(cfg, version).Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
