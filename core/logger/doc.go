// Package logger builds the zap logger shared by every command.
//
// Level "debug" selects zap's development configuration; any other level uses
// the production configuration at that level. Format selects json or console
// encoding. Logs go to stderr so that stdout only carries command results.
//
// WithRayID attaches the request's ray_id (set by the rayid middleware) to a logger:
//
//	l := logger.WithRayID(log, c)
//	l.Error("Handler failed", zap.Error(err))
package logger
