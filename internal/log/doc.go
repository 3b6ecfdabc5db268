// Package log builds the slog loggers used by emissary.
//
// Every logger is wrapped in a SecureHandler, which masks attribute values
// whose key names a secret (cookie, authorization, tokens, passwords) and
// string values that look like credentials (bearer or basic auth, JWTs,
// private keys). Masking applies at every level, so verbose output can be
// shared without leaking the headers configured on an action.
//
// Usage:
//
//	logger, closer, err := log.New(log.Options{
//	    Writer:  os.Stderr,
//	    Verbose: true,
//	    File:    "/var/log/emissary.log",
//	})
//	if err != nil {
//	    return err
//	}
//	defer closer.Close()
//	slog.SetDefault(logger)
//
// Request headers are logged as a group with RedactHeaders so each header
// is masked by name.
package log
