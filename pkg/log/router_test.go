package log_test

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mkershaw/bookpilot/pkg/log"
	"github.com/mkershaw/bookpilot/pkg/security"
)

// captureSink records every routed event.
type captureSink struct {
	events []*log.LogEvent
	closed bool
}

func (c *captureSink) Write(event *log.LogEvent) error {
	c.events = append(c.events, event)
	return nil
}

func (c *captureSink) Close() error {
	c.closed = true
	return nil
}

func newRoutedLogger(router *log.Router) log.Logger {
	return log.NewZerologAdapter(zerolog.New(router).With().Timestamp().Logger())
}

func TestRouterFansOutDecodedEvents(t *testing.T) {
	sink := &captureSink{}
	router := log.NewRouter(sink)
	logger := newRoutedLogger(router)

	logger.Info().Str("step", "select_service").Int("index", 2).Msg("opened service detail")

	require.Len(t, sink.events, 1)
	evt := sink.events[0]
	assert.Equal(t, log.InfoLevel, evt.Level)
	assert.Equal(t, "opened service detail", evt.Message)
	assert.Equal(t, "select_service", evt.Fields["step"])
	assert.Equal(t, float64(2), evt.Fields["index"], "JSON numbers decode as float64")
	assert.False(t, evt.Timestamp.IsZero())
}

func TestRouterLevels(t *testing.T) {
	sink := &captureSink{}
	logger := newRoutedLogger(log.NewRouter(sink))

	logger.Debug().Msg("d")
	logger.Warn().Msg("w")
	logger.Error().Err(errors.New("boom")).Msg("e")

	require.Len(t, sink.events, 3)
	assert.Equal(t, log.DebugLevel, sink.events[0].Level)
	assert.Equal(t, log.WarnLevel, sink.events[1].Level)
	assert.Equal(t, log.ErrorLevel, sink.events[2].Level)
	assert.Equal(t, "boom", sink.events[2].Fields["error"])
}

func TestRouterRedactsMessageAndFields(t *testing.T) {
	sink := &captureSink{}
	router := log.NewRouter(sink)
	router.Redactor = security.NewRedactor("555-867-5309")
	logger := newRoutedLogger(router)

	logger.Info().Str("phone", "555-867-5309").Msg("filled phone 555-867-5309")

	require.Len(t, sink.events, 1)
	assert.Equal(t, "filled phone ********", sink.events[0].Message)
	assert.Equal(t, "********", sink.events[0].Fields["phone"])
}

func TestRouterDropsMalformedLines(t *testing.T) {
	sink := &captureSink{}
	router := log.NewRouter(sink)

	n, err := router.Write([]byte("not json\n"))
	require.NoError(t, err, "a malformed line must not break the zerolog writer contract")
	assert.Equal(t, len("not json\n"), n)
	assert.Empty(t, sink.events)
}

func TestRouterAddSinkAndClose(t *testing.T) {
	first := &captureSink{}
	second := &captureSink{}
	router := log.NewRouter(first)
	router.AddSink(second)
	logger := newRoutedLogger(router)

	logger.Info().Msg("fan out")
	assert.Len(t, first.events, 1)
	assert.Len(t, second.events, 1)

	require.NoError(t, router.Close())
	assert.True(t, first.closed)
	assert.True(t, second.closed)
}

func TestContextLoggerCarriesFields(t *testing.T) {
	sink := &captureSink{}
	logger := newRoutedLogger(log.NewRouter(sink))

	taskLogger := logger.With().Str("task", "carpet_cleaning").Logger()
	taskLogger.Info().Msg("processing task")

	require.Len(t, sink.events, 1)
	assert.Equal(t, "carpet_cleaning", sink.events[0].Fields["task"])
}
