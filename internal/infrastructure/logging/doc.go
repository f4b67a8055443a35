// Package logging builds the service's structured logger on log/slog.
//
// Entries carry service=linkstatus and the build version. Output is JSON
// unless logging.format is "text":
//
//	logging:
//	  level: "info"      # debug, info, warn, error
//	  format: "json"     # json, text
//	  output: "stdout"   # stdout, stderr
//
// Attribute values whose key mentions a password, token, secret or
// authorization header are replaced with "[redacted]". String values are cut
// at 2 KiB so an upstream error body cannot flood the log.
//
// Components get their own tag:
//
//	log := logging.New(cfg.Logging, version)
//	log.Component("reporter").Info("run complete", "online", 12)
package logging
