package config

import "github.com/MonkyMars/gecho"

var logger *gecho.Logger

// InitializeLogger builds the process logger once, during startup.
func InitializeLogger() *gecho.Logger {
	logger = gecho.NewDefaultLogger()
	return logger
}

// GetLogger returns the process logger set up by InitializeLogger.
func GetLogger() *gecho.Logger {
	return logger
}
