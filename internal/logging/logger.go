// File: internal/logging/logger.go
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Logger defines common logging interface for all services
type Logger interface {
	Info(msg string, keysAndValues ...interface{})
	Error(msg string, keysAndValues ...interface{})
	Debug(msg string, keysAndValues ...interface{})
	Warn(msg string, keysAndValues ...interface{})
}

// LogLevel represents different logging levels
type LogLevel int

const (
	LogLevelDebug LogLevel = iota
	LogLevelInfo
	LogLevelWarn
	LogLevelError
)

func (l LogLevel) String() string {
	switch l {
	case LogLevelDebug:
		return "DEBUG"
	case LogLevelInfo:
		return "INFO"
	case LogLevelWarn:
		return "WARN"
	case LogLevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// ParseLevel maps LOG_LEVEL values onto a LogLevel; unknown values mean INFO.
func ParseLevel(s string) LogLevel {
	switch strings.ToUpper(strings.TrimSpace(s)) {
	case "DEBUG":
		return LogLevelDebug
	case "WARN", "WARNING":
		return LogLevelWarn
	case "ERROR":
		return LogLevelError
	default:
		return LogLevelInfo
	}
}

// ProductionLogger writes one line per entry, JSON when structured.
type ProductionLogger struct {
	mu         sync.Mutex
	out        io.Writer
	level      LogLevel
	service    string
	structured bool
	now        func() time.Time
}

func NewProductionLogger(service string) *ProductionLogger {
	return NewProductionLoggerTo(os.Stdout, service, LogLevelInfo, true)
}

// NewProductionLoggerTo writes to out instead of stdout.
func NewProductionLoggerTo(out io.Writer, service string, level LogLevel, structured bool) *ProductionLogger {
	return &ProductionLogger{
		out:        out,
		level:      level,
		service:    service,
		structured: structured,
		now:        time.Now,
	}
}

func (p *ProductionLogger) Info(msg string, keysAndValues ...interface{}) {
	p.log(LogLevelInfo, msg, keysAndValues...)
}

func (p *ProductionLogger) Error(msg string, keysAndValues ...interface{}) {
	p.log(LogLevelError, msg, keysAndValues...)
}

func (p *ProductionLogger) Debug(msg string, keysAndValues ...interface{}) {
	p.log(LogLevelDebug, msg, keysAndValues...)
}

func (p *ProductionLogger) Warn(msg string, keysAndValues ...interface{}) {
	p.log(LogLevelWarn, msg, keysAndValues...)
}

func (p *ProductionLogger) log(level LogLevel, msg string, keysAndValues ...interface{}) {
	if level < p.level {
		return
	}
	timestamp := p.now().UTC().Format(time.RFC3339)

	var line string
	if p.structured {
		entry := map[string]interface{}{
			"timestamp": timestamp,
			"level":     level.String(),
			"service":   p.service,
			"message":   msg,
		}
		if fields := pairs(keysAndValues); len(fields) > 0 {
			entry["fields"] = fields
		}
		raw, err := json.Marshal(entry)
		if err != nil {
			raw, _ = json.Marshal(map[string]string{"level": level.String(), "service": p.service, "message": msg, "marshal_error": err.Error()})
		}
		line = string(raw)
	} else {
		var kv strings.Builder
		for i := 0; i < len(keysAndValues); i += 2 {
			kv.WriteString(" ")
			if i+1 < len(keysAndValues) {
				kv.WriteString(fmt.Sprintf("%v=%v", keysAndValues[i], render(keysAndValues[i+1])))
			} else {
				kv.WriteString(fmt.Sprintf("%v=<missing>", keysAndValues[i]))
			}
		}
		line = fmt.Sprintf("[%s] %s [%s] %s%s", timestamp, level.String(), p.service, msg, kv.String())
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, line)
}

// pairs folds key-value arguments into a map; errors become their text.
func pairs(keysAndValues []interface{}) map[string]interface{} {
	fields := make(map[string]interface{})
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		if key, ok := keysAndValues[i].(string); ok {
			fields[key] = render(keysAndValues[i+1])
		}
	}
	return fields
}

func render(v interface{}) interface{} {
	if err, ok := v.(error); ok && err != nil {
		return err.Error()
	}
	return v
}

// NoOpLogger is a logger that does nothing (for testing)
type NoOpLogger struct{}

func (n *NoOpLogger) Info(msg string, keysAndValues ...interface{})  {}
func (n *NoOpLogger) Error(msg string, keysAndValues ...interface{}) {}
func (n *NoOpLogger) Debug(msg string, keysAndValues ...interface{}) {}
func (n *NoOpLogger) Warn(msg string, keysAndValues ...interface{})  {}

// NewLogger picks the logger for env: silent under "test", JSON in
// "production", human-readable otherwise.
func NewLogger(service, env, level string) Logger {
	if env == "test" {
		return &NoOpLogger{}
	}
	return NewProductionLoggerTo(os.Stdout, service, ParseLevel(level), env == "production")
}
