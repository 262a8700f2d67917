package main

import (
	"github.com/phuslu/log"

	"github.com/wudi/pdfview/observability"
)

// phusluLogger adapts phuslu/log to the viewer's Logger interface.
type phusluLogger struct {
	l      *log.Logger
	fields []observability.Field
}

func newLogger(verbose bool) observability.Logger {
	level := log.InfoLevel
	if verbose {
		level = log.DebugLevel
	}
	return &phusluLogger{l: &log.Logger{
		Level:  level,
		Writer: &log.ConsoleWriter{ColorOutput: true},
	}}
}

func (p *phusluLogger) emit(e *log.Entry, msg string, fields []observability.Field) {
	for _, f := range p.fields {
		e = e.Interface(f.Key(), f.Value())
	}
	for _, f := range fields {
		e = e.Interface(f.Key(), f.Value())
	}
	e.Msg(msg)
}

func (p *phusluLogger) Debug(msg string, fields ...observability.Field) {
	p.emit(p.l.Debug(), msg, fields)
}

func (p *phusluLogger) Info(msg string, fields ...observability.Field) {
	p.emit(p.l.Info(), msg, fields)
}

func (p *phusluLogger) Warn(msg string, fields ...observability.Field) {
	p.emit(p.l.Warn(), msg, fields)
}

func (p *phusluLogger) Error(msg string, fields ...observability.Field) {
	p.emit(p.l.Error(), msg, fields)
}

func (p *phusluLogger) With(fields ...observability.Field) observability.Logger {
	merged := make([]observability.Field, 0, len(p.fields)+len(fields))
	merged = append(merged, p.fields...)
	merged = append(merged, fields...)
	return &phusluLogger{l: p.l, fields: merged}
}
