package log_test

import (
	"context"
	"log/slog"
	"os"

	"github.com/ardnew/aliasexpr/log"
)

func Example_basic() {
	logger := log.Make(os.Stderr)
	logger.Info("alias resolved", slog.String("alias", "Zhejiang(2024年05月)"))
}

func Example_configuration() {
	logger := log.Make(os.Stderr,
		log.WithLevel(log.LevelTrace),
		log.WithFormat(log.FormatText),
		log.WithTimeLayout("RFC3339Nano"),
		log.WithCaller(true))

	logger.Trace("parse complete", slog.Int("statement_count", 4))
}

func Example_withContext() {
	logger := log.Make(os.Stderr).With(slog.String("field", "sales"))

	logger.WarnContext(context.Background(), "missing variable",
		slog.String("name", "province"))
}
