package logger

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/sirupsen/logrus"
)

type loggerKey struct{}

var base = newBase()

func newBase() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(os.Stderr)
	l.SetLevel(logrus.WarnLevel)
	l.SetFormatter(&logrus.TextFormatter{DisableTimestamp: true})
	return l
}

// Configure sets the level and output of the process-wide logger.
// An unknown level string leaves the current level untouched.
func Configure(level string, out io.Writer) {
	if out != nil {
		base.SetOutput(out)
	}
	if level == "" {
		return
	}
	if lvl, err := logrus.ParseLevel(strings.ToLower(level)); err == nil {
		base.SetLevel(lvl)
	}
}

// Base returns the process-wide logger.
func Base() *logrus.Logger { return base }

// NewContextWithFields returns a child context whose logger carries fields.
func NewContextWithFields(ctx context.Context, fields logrus.Fields) context.Context {
	return context.WithValue(ctx, loggerKey{}, For(ctx).WithFields(fields))
}

// NewContextWithLogger stores entry on ctx.
func NewContextWithLogger(ctx context.Context, entry *logrus.Entry) context.Context {
	return context.WithValue(ctx, loggerKey{}, entry)
}

// For returns the logger stored on ctx, or the base logger when ctx is nil
// or carries none.
func For(ctx context.Context) *logrus.Entry {
	if ctx != nil {
		if e, ok := ctx.Value(loggerKey{}).(*logrus.Entry); ok {
			return e
		}
	}
	return logrus.NewEntry(base)
}
