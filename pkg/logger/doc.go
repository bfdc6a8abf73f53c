// Package logger builds configured *slog.Logger instances and provides
// attribute helpers shared across the engine.
//
// Every component in this module accepts a logger through a functional option
// and falls back to slog.Default(), so hosts can wire their own handler or use
// this factory:
//
//	log := logger.New(
//		logger.WithLevel(slog.LevelDebug),
//		logger.WithTextFormatter(),
//		logger.WithAttr(slog.String("service", "storefront")),
//	)
//	slog.SetDefault(log)
package logger
