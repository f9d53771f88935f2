// Package telemetry is the ambient observability layer around the
// core: structured process logs, the two external JSON streams (issues
// and costs), and an optional live introspection server behind
// --write-html. The source compiler only has a log.Println call here
// and there, so the logging setup itself is grounded instead on
// theRebelliousNerd-codenerd's zap usage (cmd/nerd/main.go).
package telemetry

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// NewLogger builds the process-wide structured logger, matching
// theRebelliousNerd-codenerd's config.Build()/verbose-flag idiom: zap's
// production JSON encoder at info level normally, debug level when
// developerMode is set.
func NewLogger(developerMode bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if developerMode {
		cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		cfg.Development = true
		cfg.EncoderConfig.StacktraceKey = "stacktrace"
	} else {
		cfg.EncoderConfig.StacktraceKey = ""
	}
	return cfg.Build()
}

// NewNop returns a logger that discards everything, for callers (tests,
// library embedders) that don't want process-wide logging configured.
func NewNop() *zap.Logger { return zap.NewNop() }
