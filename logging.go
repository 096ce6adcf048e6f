package martos

import "go.uber.org/zap"

// NewLogger builds the zap.Logger used by cmd/martosctl: zap's development
// logger when debug is set, otherwise the production JSON-encoded,
// leveled logger matching the teacher's default setup.
func NewLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}
