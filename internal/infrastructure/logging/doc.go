// Package logging provides structured logging for the WildTrace API.
//
// It wraps log/slog so every entry carries the service name and build
// version. Output is JSON by default and text when configured:
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr, discard
//
// Never log bearer tokens or the JWT secret.
package logging
