package logger

import "go.uber.org/zap"

// New creates a zap logger configured for the given environment.
// Production environments get JSON output; everything else gets the
// human-readable development encoder.
func New(appEnv string) (*zap.Logger, error) {
	if appEnv == "production" {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// NewNamed creates a named zap logger for a service component.
func NewNamed(appEnv, name string) (*zap.Logger, error) {
	log, err := New(appEnv)
	if err != nil {
		return nil, err
	}
	return log.Named(name), nil
}
