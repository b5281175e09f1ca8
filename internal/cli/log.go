package cli

import (
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns the CLI logger. Lines carry a short wall-clock stamp
// such as "14:32:01.45".
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      "15:04:05.00",
		Level:           level,
	})
}

// progress times one named step of a command.
type progress struct {
	logger *log.Logger
	step   string
	start  time.Time
}

func newProgress(l *log.Logger, step string) *progress {
	return &progress{logger: l, step: step, start: time.Now()}
}

// done logs the step with its elapsed time and the given key/value pairs,
// e.g. `solve done branches=5 elapsed=1.234ms`.
func (p *progress) done(keyvals ...any) {
	keyvals = append(keyvals, "elapsed", time.Since(p.start).Round(time.Microsecond))
	p.logger.Info(p.step+" done", keyvals...)
}
