package log

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/mkershaw/bookpilot/pkg/security"
	"github.com/rs/zerolog"
)

// Router is an io.Writer that decodes zerolog's JSON output and fans each
// event out to the attached sinks. When a Redactor is attached, every string
// field passes through it before reaching any sink, so transcripts never
// carry contact PII or shared secrets.
type Router struct {
	mu       sync.Mutex
	sinks    []Sink
	Redactor *security.Redactor
}

func NewRouter(sinks ...Sink) *Router {
	return &Router{sinks: sinks}
}

func (r *Router) AddSink(s Sink) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sinks = append(r.sinks, s)
}

func (r *Router) Write(p []byte) (int, error) {
	var raw map[string]any
	if err := json.Unmarshal(p, &raw); err != nil {
		fmt.Fprintf(os.Stderr, "log router: dropping malformed line: %v\n", err)
		return len(p), nil
	}

	evt := &LogEvent{Fields: make(map[string]any)}

	if lvlStr, ok := raw[zerolog.LevelFieldName].(string); ok {
		if zl, err := zerolog.ParseLevel(lvlStr); err == nil {
			evt.Level = convertZerologLevel(zl)
		}
	}
	if msg, ok := raw[zerolog.MessageFieldName].(string); ok {
		evt.Message = msg
	}
	if tsStr, ok := raw[zerolog.TimestampFieldName].(string); ok {
		evt.Timestamp, _ = time.Parse(time.RFC3339Nano, tsStr)
	}
	if evt.Timestamp.IsZero() {
		evt.Timestamp = time.Now()
	}

	reserved := map[string]struct{}{
		zerolog.LevelFieldName:     {},
		zerolog.MessageFieldName:   {},
		zerolog.TimestampFieldName: {},
	}
	for k, v := range raw {
		if _, skip := reserved[k]; !skip {
			evt.Fields[k] = v
		}
	}

	if r.Redactor != nil {
		evt.Message = r.Redactor.Redact(evt.Message)
		for k, v := range evt.Fields {
			if strVal, ok := v.(string); ok {
				evt.Fields[k] = r.Redactor.Redact(strVal)
			}
		}
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for _, sink := range r.sinks {
		if err := sink.Write(evt); err != nil {
			fmt.Fprintf(os.Stderr, "log router: sink write failed: %v\n", err)
		}
	}

	return len(p), nil
}

// Close closes every sink, keeping the first error.
func (r *Router) Close() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	var firstErr error
	for _, sink := range r.sinks {
		if err := sink.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func convertZerologLevel(l zerolog.Level) Level {
	switch l {
	case zerolog.DebugLevel:
		return DebugLevel
	case zerolog.InfoLevel:
		return InfoLevel
	case zerolog.WarnLevel:
		return WarnLevel
	case zerolog.ErrorLevel:
		return ErrorLevel
	case zerolog.FatalLevel:
		return FatalLevel
	default:
		return InfoLevel
	}
}
