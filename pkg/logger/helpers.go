package logger

// LogComponentStart logs when a component starts
func LogComponentStart(log Logger, component string, settings map[string]interface{}) {
	l := log.WithField("component", component)
	if len(settings) > 0 {
		l = l.WithFields(settings)
	}
	l.Info("Component started")
}

// LogScanProgress logs interval scan progress for one account
func LogScanProgress(log Logger, handle string, done, total int, percent float64) {
	log.InfoWithFields("Interval scan progress", map[string]interface{}{
		"handle":     handle,
		"windows":    done,
		"total":      total,
		"percentage": percent,
	})
}

// NewNopLogger creates a no-operation logger for testing
func NewNopLogger() Logger {
	return nopLogger{}
}

type nopLogger struct{}

func (n nopLogger) Debug(string)                                    {}
func (n nopLogger) Info(string)                                     {}
func (n nopLogger) Warn(string)                                     {}
func (n nopLogger) Error(string)                                    {}
func (n nopLogger) WithField(string, interface{}) Logger            { return n }
func (n nopLogger) WithFields(map[string]interface{}) Logger        { return n }
func (n nopLogger) WithError(error) Logger                          { return n }
func (n nopLogger) DebugWithFields(string, map[string]interface{})  {}
func (n nopLogger) InfoWithFields(string, map[string]interface{})   {}
func (n nopLogger) WarnWithFields(string, map[string]interface{})   {}
func (n nopLogger) ErrorWithFields(string, map[string]interface{})  {}
