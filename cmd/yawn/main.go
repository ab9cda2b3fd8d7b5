package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"

	"github.com/kevinwang15/yawn/internal/cli"
)

var version = "dev"

func main() {
	if err := fang.Execute(context.Background(), cli.NewRootCmd(),
		fang.WithVersion(version),
		fang.WithErrorHandler(cli.ErrorHandler),
	); err != nil {
		os.Exit(1)
	}
}
