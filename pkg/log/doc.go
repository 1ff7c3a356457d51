/*
Package log provides structured logging for the EcoAction client using
zerolog.

The package wraps zerolog to provide JSON-structured logging with
component-specific child loggers, configurable levels, and helpers for
common patterns. All logs include timestamps.

# Usage

Initializing the logger:

	log.Init(log.Config{
		Level:      log.InfoLevel,
		JSONOutput: true,
		Output:     os.Stderr,
	})

Simple logging:

	log.Info("cache initialized")
	log.Error("fetch failed")

Structured logging:

	log.Logger.Info().
		Str("key", "missions").
		Int("count", len(missions)).
		Msg("collection refreshed")

Component loggers:

	cacheLog := log.WithComponent("cache")
	cacheLog.Debug().Str("key", key).Msg("entry evicted")

# Integration Points

This package integrates with:

  - pkg/cache: fetch, retry, and eviction logging
  - pkg/coordinator: mutation lifecycle and rollback logging
  - pkg/gateway: request failure logging
  - pkg/mockapi: request logging for the mock backend
*/
package log
