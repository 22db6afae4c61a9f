// Package logger builds configured slog.Logger instances for the platform.
//
// Production gets JSON output at info level for log aggregation; development
// gets text output at debug level. Context extractors inject request-scoped
// attributes (user id, request id) into every record at log time.
//
// # Usage
//
//	log := logger.New(
//	    logger.WithProduction("blogkit"),
//	    logger.WithContextValue("request_id", requestIDKey{}),
//	)
//	logger.SetAsDefault(log)
package logger
