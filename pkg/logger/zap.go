package logger

import (
	"go.uber.org/zap"
)

// New создаёт zap-логгер: для development читаемый консольный вывод, иначе JSON production
func New(env string) (*zap.Logger, error) {
	if env == "development" || env == "dev" {
		return zap.NewDevelopment()
	}
	cfg := zap.NewProductionConfig()
	cfg.DisableStacktrace = true
	return cfg.Build()
}

// Must как New, но паникует при ошибке; используется только в main
func Must(env string) *zap.Logger {
	l, err := New(env)
	if err != nil {
		panic(err)
	}
	return l
}
