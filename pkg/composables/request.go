package composables

import (
	"context"
	"net/http"

	"github.com/sirupsen/logrus"
)

type paramsKey struct{}
type loggerKey struct{}

type Params struct {
	IP        string
	UserAgent string
	RequestID string
	Request   *http.Request
	Writer    http.ResponseWriter
}

// UseParams returns the request parameters from the context.
// If the parameters are not found, the second return value will be false.
func UseParams(ctx context.Context) (*Params, bool) {
	params, ok := ctx.Value(paramsKey{}).(*Params)
	return params, ok
}

// WithParams returns a new context with the request parameters.
func WithParams(ctx context.Context, params *Params) context.Context {
	return context.WithValue(ctx, paramsKey{}, params)
}

// UseRequestID returns the id assigned to the current request, or "" outside
// of one.
func UseRequestID(ctx context.Context) string {
	if params, ok := UseParams(ctx); ok {
		return params.RequestID
	}
	return ""
}

func WithLogger(ctx context.Context, logger *logrus.Entry) context.Context {
	return context.WithValue(ctx, loggerKey{}, logger)
}

// UseLogger returns the request-scoped logger, falling back to the standard
// logger when ctx carries none.
func UseLogger(ctx context.Context) *logrus.Entry {
	if logger, ok := ctx.Value(loggerKey{}).(*logrus.Entry); ok && logger != nil {
		return logger
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
