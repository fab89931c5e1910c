// Package server holds the HTTP front end configuration.
//
// The Config struct defines the listen port, the API key protecting every
// route, and request limits. It is embedded in core/config and consumed by the
// start command.
package server
