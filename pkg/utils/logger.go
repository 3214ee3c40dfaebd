package utils

import "go.uber.org/zap"

// NewProductionLogger returns a JSON-encoded logger at info level.
func NewProductionLogger() (*zap.Logger, error) {
	return zap.NewProduction()
}

// NewLogger picks the logger for the process: console output at debug level
// when the config sets debug, JSON at info level otherwise.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
