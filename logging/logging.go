// Package logging constructs the single structured logger shared across
// the process: leveled, field-carrying records instead of bare
// log.Println/log.Fatal calls.
package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// New builds a production-profile zap.Logger: JSON encoding, ISO8601
// timestamps. Pass debug=true in local/dev runs to lower the level to
// Debug; no component currently logs at Debug level.
func New(debug bool) (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if debug {
		cfg.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	return cfg.Build()
}
