package rcontext

import (
	"context"

	"github.com/sirupsen/logrus"
)

type contextKey string

const loggerKey contextKey = "em.logger"

func Initial() RequestContext {
	return Wrap(context.Background(), logrus.WithFields(logrus.Fields{"nocontext": true}))
}

// Wrap attaches a logger to ctx. A nil logger falls back to the standard logger.
func Wrap(ctx context.Context, log *logrus.Entry) RequestContext {
	if ctx == nil {
		ctx = context.Background()
	}
	if log == nil {
		log = logrus.NewEntry(logrus.StandardLogger())
	}
	return RequestContext{
		Context: ctx,
		Log:     log,
	}.populate()
}

type RequestContext struct {
	context.Context

	// Also stored on the context object itself
	Log *logrus.Entry // em.logger
}

func (c RequestContext) populate() RequestContext {
	c.Context = context.WithValue(c.Context, loggerKey, c.Log)
	return c
}

func (c RequestContext) ReplaceLogger(log *logrus.Entry) RequestContext {
	return RequestContext{
		Context: context.WithValue(c.Context, loggerKey, log),
		Log:     log,
	}
}

func (c RequestContext) LogWithFields(fields logrus.Fields) RequestContext {
	return c.ReplaceLogger(c.Log.WithFields(fields))
}

// WithContext swaps the underlying context, keeping the logger. Used to apply
// deadlines or cancellation to a single operation.
func (c RequestContext) WithContext(ctx context.Context) RequestContext {
	return Wrap(ctx, c.Log)
}

// LoggerFrom returns the logger stored on ctx, if any.
func LoggerFrom(ctx context.Context) *logrus.Entry {
	if log, ok := ctx.Value(loggerKey).(*logrus.Entry); ok {
		return log
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
