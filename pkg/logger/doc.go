// Package logger builds structured slog loggers for the service.
//
// New returns a JSON logger writing to stdout. Context extractors pull
// request-scoped attributes (request ID, tenant ID) into every record
// logged with a context:
//
//	log := logger.New(requestIDExtractor)
//	log.InfoContext(ctx, "domain verified") // carries request_id when present
//
// NewWithSentry additionally fans warn- and error-level records out to
// Sentry when a DSN is configured, degrading silently to stdout-only
// otherwise so local development needs no setup.
package logger
