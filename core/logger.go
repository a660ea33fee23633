package core

// Logger is any service that can report application events, optionally
// tagging them with the acting user (pass a user.User as one of the args).
type Logger interface {
	Enable(enabled bool)
	Debug(msg string, args ...interface{})
	Info(msg string, args ...interface{})
	Warn(msg string, args ...interface{})
	Error(msg string, args ...interface{})
}
