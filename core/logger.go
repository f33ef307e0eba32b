package core

// Logger is implemented by services/logger.
// Args may contain errors, maps of extras and at most one user.User (the caller).
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
