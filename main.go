package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/aliasexpr/cli"
	"github.com/ardnew/aliasexpr/cli/cmd"
	"github.com/ardnew/aliasexpr/log"
)

func main() {
	err := cli.Run(context.Background(), os.Exit, os.Args[1:]...)
	if err != nil {
		log.Error("run failed", slog.Any("error", err))
		os.Exit(cmd.ExitCode(err))
	}
}
