// Package logging builds the slog loggers the api and worker processes
// share: JSON output in deployment, text for local runs, with helpers
// that carry request ids and extra fields through context.
//
//	logger := logging.NewLogger()
//	slog.SetDefault(logger)
//	logging.WithRequestID(ctx, logger).Info("ingest run finished")
package logging
