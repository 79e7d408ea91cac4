package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/kemeny/pkg/pipeline"
)

// newLogger returns the CLI logger. Timestamps are short ("15:04:05.00")
// because runs are interactive; score and duration keys are highlighted so
// solver lines stand out in verbose output.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
	styles := log.DefaultStyles()
	styles.Keys["score"] = StyleNumber
	styles.Values["score"] = StyleNumber
	styles.Keys["method"] = StyleHighlight
	l.SetStyles(styles)
	return l
}

// logSolved reports a finished single-method run. Cached results log the
// duration of the run that produced them.
func logSolved(l *log.Logger, e pipeline.Entry) {
	res := e.Result
	l.Info("solved",
		"method", e.Method,
		"score", res.Score,
		"exact", res.Exact,
		"cached", e.Cached,
		"duration", res.Duration.Round(time.Millisecond),
	)
}

// logFailures writes one warning per failed method of a report.
func logFailures(l *log.Logger, r *pipeline.Report) {
	for _, e := range r.Failed() {
		l.Warn("method failed", "method", e.Method, "code", e.Code, "err", e.Error)
	}
}

type ctxKey int

const loggerKey ctxKey = 0

// withLogger attaches l to ctx for helpers that only see a context.
func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// loggerFromContext returns the logger attached by withLogger, or
// log.Default when there is none.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
