// Package logging provides structured logging for the validator.
//
// # Overview
//
// The package wraps log/slog with:
//   - JSON, text and console output formats
//   - Configurable levels (debug, info, warn, error)
//   - Context-aware logging that picks up run, request, row and column
//     identifiers stored in a context.Context
//
// # Usage
//
//	logger, err := logging.New(logging.Config{
//	    Level:  "info",
//	    Format: "json",
//	})
//	if err != nil {
//	    return err
//	}
//
//	ctx = logging.WithRunID(ctx, runID)
//	logger.InfoContext(ctx, "validation started", "rows", 120)
//	// {"level":"INFO","msg":"validation started","run_id":"...","rows":120}
//
// Libraries in this module accept a *slog.Logger; pass logger.Slog() to them
// so their records go through the same handler.
package logging
