package logger

import (
	"go.uber.org/zap"
)

// New returns a JSON production logger for env "prod" and a console
// development logger otherwise.
func New(env string) *zap.SugaredLogger {
	var z *zap.Logger
	if env == "prod" {
		z, _ = zap.NewProduction()
	} else {
		z, _ = zap.NewDevelopment()
	}
	if z == nil {
		z = zap.NewNop()
	}
	return z.Sugar()
}
