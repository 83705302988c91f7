package core

// Logger is the minimal logging surface renderer components depend on
type Logger interface {
	Printf(format string, args ...interface{})
}
