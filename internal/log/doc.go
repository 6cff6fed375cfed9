// Package log builds the slog loggers used by torfox.
//
// Every logger wraps its output handler in a RedactingHandler, which masks
// the values of attributes that can carry secrets: proxy credentials,
// cookies, tokens and the embedded daemon's control-port password.
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Debug("launching firefox", "proxy", addr)
//	logger.Debug("tor control", "control_password", pw) // control_password=***REDACTED***
//
// Verbose loggers emit debug records; otherwise only warnings and errors
// are written.
package log
