package core

// Logger is the app-wide logging contract.
// Implementations may interpret extra args as structured context;
// an operator identity passed as an arg should be attached to error reports.
type Logger interface {
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
	Fatal(msg string, args ...interface{})
}
