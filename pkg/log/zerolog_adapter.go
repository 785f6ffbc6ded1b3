package log

import "github.com/rs/zerolog"

// ZerologAdapter implements Logger on top of a zerolog.Logger.
type ZerologAdapter struct {
	logger zerolog.Logger
}

func NewZerologAdapter(logger zerolog.Logger) *ZerologAdapter {
	return &ZerologAdapter{logger: logger}
}

// Nop returns a logger that discards everything. Handy for validation paths
// and tests that do not care about output.
func Nop() Logger {
	return NewZerologAdapter(zerolog.New(zerolog.Nop()))
}

func (z *ZerologAdapter) Debug() Event {
	return &zerologEvent{event: z.logger.Debug()}
}

func (z *ZerologAdapter) Info() Event {
	return &zerologEvent{event: z.logger.Info()}
}

func (z *ZerologAdapter) Warn() Event {
	return &zerologEvent{event: z.logger.Warn()}
}

func (z *ZerologAdapter) Error() Event {
	return &zerologEvent{event: z.logger.Error()}
}

func (z *ZerologAdapter) Fatal() Event {
	return &zerologEvent{event: z.logger.Fatal()}
}

func (z *ZerologAdapter) With() Context {
	return &zerologContext{ctx: z.logger.With()}
}

type zerologEvent struct {
	event *zerolog.Event
}

func (e *zerologEvent) Msg(msg string) {
	e.event.Msg(msg)
}

func (e *zerologEvent) Msgf(format string, v ...any) {
	e.event.Msgf(format, v...)
}

func (e *zerologEvent) Err(err error) Event {
	e.event = e.event.Err(err)
	return e
}

func (e *zerologEvent) Interface(key string, value any) Event {
	e.event = e.event.Interface(key, value)
	return e
}

func (e *zerologEvent) Str(key, value string) Event {
	e.event = e.event.Str(key, value)
	return e
}

func (e *zerologEvent) Int(key string, value int) Event {
	e.event = e.event.Int(key, value)
	return e
}

func (e *zerologEvent) Bool(key string, value bool) Event {
	e.event = e.event.Bool(key, value)
	return e
}

type zerologContext struct {
	ctx zerolog.Context
}

func (c *zerologContext) Str(key, value string) Context {
	return &zerologContext{ctx: c.ctx.Str(key, value)}
}

func (c *zerologContext) Int(key string, value int) Context {
	return &zerologContext{ctx: c.ctx.Int(key, value)}
}

func (c *zerologContext) Interface(key string, value any) Context {
	return &zerologContext{ctx: c.ctx.Interface(key, value)}
}

func (c *zerologContext) Timestamp() Context {
	return &zerologContext{ctx: c.ctx.Timestamp()}
}

func (c *zerologContext) Logger() Logger {
	return &ZerologAdapter{logger: c.ctx.Logger()}
}
